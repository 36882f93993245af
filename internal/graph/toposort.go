package graph

import "fmt"

// TopoResult holds the result of topological sorting.
type TopoResult struct {
	// Order is the topological order (parents before children).
	Order []string
	// HasCycle is true if the graph contains a cycle.
	HasCycle bool
	// CycleTables lists nodes involved in cycles (if any).
	CycleTables []string
}

// TopoSort performs Kahn's algorithm over nodes, where parents maps a node to
// the nodes it depends on. Parents outside nodes are ignored. Ties are broken
// by the order of nodes, so the result is deterministic.
func TopoSort(nodes []string, parents map[string][]string) TopoResult {
	nodeSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		nodeSet[n] = true
	}

	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n] = 0
	}

	// Build local child map (only edges within the subset)
	localChildren := make(map[string][]string)
	for _, n := range nodes {
		seen := make(map[string]bool)
		for _, p := range parents[n] {
			if nodeSet[p] && p != n && !seen[p] {
				seen[p] = true
				localChildren[p] = append(localChildren[p], n)
				inDegree[n]++
			}
		}
	}

	// Initialize queue with zero in-degree nodes (roots)
	var queue []string
	for _, n := range nodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	var order []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, child := range localChildren[node] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	result := TopoResult{Order: order}

	if len(order) < len(nodes) {
		result.HasCycle = true
		for _, n := range nodes {
			if inDegree[n] > 0 {
				result.CycleTables = append(result.CycleTables, n)
			}
		}
	}

	return result
}

// TopoSortView sorts the given resources of v so that referenced resources
// come before the resources referencing them.
func TopoSortView(v *View, tables []string) TopoResult {
	parents := make(map[string][]string, len(tables))
	for _, t := range tables {
		parents[t] = v.Parents(t)
	}
	return TopoSort(tables, parents)
}

// TopoSortAll performs topological sort across all resources of v.
func TopoSortAll(v *View) TopoResult {
	return TopoSortView(v, v.Names())
}

// ValidateCycles checks for cycles and returns a descriptive error if found.
func ValidateCycles(result TopoResult) error {
	if !result.HasCycle {
		return nil
	}
	return fmt.Errorf("circular dependency detected among tables: %v", result.CycleTables)
}
