package graph

import (
	"fmt"
	"io"
	"strings"
)

// WriteMermaid writes the graph in Mermaid format to w.
// Each connected component is a subgraph.
func WriteMermaid(w io.Writer, v *View) error {
	components := FindComponents(v)
	edges := v.Edges()

	if _, err := fmt.Fprintln(w, "graph TD"); err != nil {
		return err
	}

	for i, comp := range components {
		fmt.Fprintf(w, "    subgraph component_%d\n", i+1)

		tableSet := make(map[string]bool, len(comp.Tables))
		for _, t := range comp.Tables {
			tableSet[t] = true
		}

		// Collect edges for this component
		edgesWritten := make(map[string]bool)
		for _, edge := range edges {
			if !tableSet[edge.Owner] {
				continue
			}
			label := edge.FK.LocalField
			edgeKey := fmt.Sprintf("%s-->%s:%s", mermaidID(edge.Owner), mermaidID(edge.Target()), label)
			if edgesWritten[edgeKey] {
				continue
			}
			edgesWritten[edgeKey] = true
			fmt.Fprintf(w, "        %s -->|%s| %s\n",
				mermaidID(edge.Owner), label, mermaidID(edge.Target()))
		}

		// Write self-referential edges
		for _, t := range comp.Tables {
			for _, e := range v.SelfRefs(t) {
				fmt.Fprintf(w, "        %s -->|%s| %s\n",
					mermaidID(t), e.FK.LocalField, mermaidID(t))
			}
		}

		// Write standalone nodes
		for _, t := range comp.Tables {
			if len(v.Neighbors(t)) == 0 && len(v.SelfRefs(t)) == 0 {
				fmt.Fprintf(w, "        %s\n", mermaidID(t))
			}
		}

		fmt.Fprintln(w, "    end")
		if i < len(components)-1 {
			fmt.Fprintln(w)
		}
	}

	return nil
}

// WriteText writes a text summary of the graph to w.
func WriteText(w io.Writer, v *View) error {
	components := FindComponents(v)

	selfRefCount := 0
	var selfRefTables []string
	for _, name := range v.Names() {
		if n := len(v.SelfRefs(name)); n > 0 {
			selfRefCount += n
			selfRefTables = append(selfRefTables, name)
		}
	}

	if _, err := fmt.Fprintf(w, "Resources: %d\n", v.Len()); err != nil {
		return err
	}
	fmt.Fprintf(w, "Foreign Keys: %d\n", len(v.Edges())+selfRefCount)
	fmt.Fprintf(w, "Connected Components: %d\n\n", len(components))

	topoResult := TopoSortAll(v)
	if topoResult.HasCycle {
		fmt.Fprintf(w, "WARNING: Circular dependencies detected: %v\n\n", topoResult.CycleTables)
	}

	if len(selfRefTables) > 0 {
		fmt.Fprintf(w, "Self-referencing resources: %v\n\n", selfRefTables)
	}

	fmt.Fprintf(w, "Root resources (no FK parents): %v\n\n", v.Roots())

	for i, comp := range components {
		fmt.Fprintf(w, "=== Component %d (%d resources) ===\n", i+1, len(comp.Tables))

		topoComp := TopoSortView(v, comp.Tables)
		if topoComp.HasCycle {
			fmt.Fprintf(w, "  Topological order (partial, has cycle):\n")
		} else {
			fmt.Fprintf(w, "  Topological order:\n")
		}
		for j, t := range topoComp.Order {
			r, _ := v.Resource(t)
			refs := make([]string, 0, len(r.ForeignKeys))
			for _, e := range v.Outgoing(t) {
				refs = append(refs, e.FK.LocalField+"->"+e.Target()+"."+e.FK.RefField)
			}
			fmt.Fprintf(w, "    %d. %s (%d fields, %d FKs)", j+1, t, len(r.Fields), len(refs))
			if len(refs) > 0 {
				fmt.Fprintf(w, " %s", strings.Join(refs, ", "))
			}
			fmt.Fprintln(w)
		}
		if topoComp.HasCycle {
			fmt.Fprintf(w, "  Cycle resources: %v\n", topoComp.CycleTables)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// mermaidID converts a possibly schema-qualified name to a Mermaid-safe node ID.
func mermaidID(fullName string) string {
	return strings.ReplaceAll(fullName, ".", "_")
}
