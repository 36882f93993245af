package graph

import (
	"github.com/hurou927/db-join-path/internal/schema"
)

// Edge is a foreign key seen from the resource that declares it.
type Edge struct {
	Owner string // resource declaring the FK
	FK    schema.ForeignKeyRef
}

// Target returns the referenced resource name.
func (e Edge) Target() string {
	return e.FK.RefResource
}

// View is a read-only lookup structure over a schema. Resources can be
// hidden with Without, which returns a new View and leaves the receiver
// untouched, so a View may be shared between goroutines.
type View struct {
	// resources maps name -> resource (private copies)
	resources map[string]*schema.Resource

	// order is the schema declaration order
	order []string

	// incoming maps a referenced name -> non-self-referential edges pointing at it
	incoming map[string][]Edge

	// excluded holds hidden resource names; never mutated after construction
	excluded map[string]bool
}

// Build constructs a View from a schema. The schema is copied, later changes
// to it are not observed. On duplicate names the first resource wins.
func Build(s *schema.Schema) *View {
	v := &View{
		resources: make(map[string]*schema.Resource, len(s.Resources)),
		incoming:  make(map[string][]Edge),
	}

	for i := range s.Resources {
		name := s.Resources[i].Name
		if _, dup := v.resources[name]; dup {
			continue
		}
		v.resources[name] = s.Resources[i].Clone()
		v.order = append(v.order, name)
	}

	for _, name := range v.order {
		for _, fk := range v.resources[name].ForeignKeys {
			if fk.RefResource == name {
				continue
			}
			v.incoming[fk.RefResource] = append(v.incoming[fk.RefResource], Edge{Owner: name, FK: fk})
		}
	}

	return v
}

// Without returns a view in which name is hidden. The receiver is unchanged.
func (v *View) Without(name string) *View {
	excluded := make(map[string]bool, len(v.excluded)+1)
	for n := range v.excluded {
		excluded[n] = true
	}
	excluded[name] = true

	return &View{
		resources: v.resources,
		order:     v.order,
		incoming:  v.incoming,
		excluded:  excluded,
	}
}

// Resource looks up a visible resource by name. The returned value must not
// be modified.
func (v *View) Resource(name string) (*schema.Resource, bool) {
	if v.excluded[name] {
		return nil, false
	}
	r, ok := v.resources[name]
	return r, ok
}

// Names returns the visible resource names in declaration order.
func (v *View) Names() []string {
	names := make([]string, 0, len(v.order))
	for _, n := range v.order {
		if !v.excluded[n] {
			names = append(names, n)
		}
	}
	return names
}

// Len returns the number of visible resources.
func (v *View) Len() int {
	return len(v.Names())
}

// Outgoing returns the non-self-referential FKs declared by name.
func (v *View) Outgoing(name string) []Edge {
	r, ok := v.Resource(name)
	if !ok {
		return nil
	}
	var edges []Edge
	for _, fk := range r.ForeignKeys {
		if fk.RefResource == name {
			continue
		}
		edges = append(edges, Edge{Owner: name, FK: fk})
	}
	return edges
}

// Incoming returns the FKs of other visible resources that reference name,
// in declaration order of the declaring resources.
func (v *View) Incoming(name string) []Edge {
	if v.excluded[name] {
		return nil
	}
	var edges []Edge
	for _, e := range v.incoming[name] {
		if !v.excluded[e.Owner] {
			edges = append(edges, e)
		}
	}
	return edges
}

// SelfRefs returns the FKs of name that reference name itself.
func (v *View) SelfRefs(name string) []Edge {
	r, ok := v.Resource(name)
	if !ok {
		return nil
	}
	var edges []Edge
	for _, fk := range r.ForeignKeys {
		if fk.RefResource == name {
			edges = append(edges, Edge{Owner: name, FK: fk})
		}
	}
	return edges
}

// Edges returns every non-self-referential FK between visible resources.
// FKs pointing at resources the schema does not describe are skipped.
func (v *View) Edges() []Edge {
	var edges []Edge
	for _, name := range v.Names() {
		for _, e := range v.Outgoing(name) {
			if _, ok := v.Resource(e.Target()); !ok {
				continue // parent not in scope
			}
			edges = append(edges, e)
		}
	}
	return edges
}

// Parents returns the visible resources that name references, without
// duplicates.
func (v *View) Parents(name string) []string {
	var parents []string
	seen := make(map[string]bool)
	for _, e := range v.Outgoing(name) {
		if seen[e.Target()] {
			continue
		}
		if _, ok := v.Resource(e.Target()); !ok {
			continue
		}
		seen[e.Target()] = true
		parents = append(parents, e.Target())
	}
	return parents
}

// Neighbors returns the visible resources linked to name in either
// direction, without duplicates.
func (v *View) Neighbors(name string) []string {
	neighbors := v.Parents(name)
	seen := make(map[string]bool, len(neighbors))
	for _, n := range neighbors {
		seen[n] = true
	}
	for _, e := range v.Incoming(name) {
		if !seen[e.Owner] {
			seen[e.Owner] = true
			neighbors = append(neighbors, e.Owner)
		}
	}
	return neighbors
}

// Roots returns resources that reference no other resource.
func (v *View) Roots() []string {
	var roots []string
	for _, name := range v.Names() {
		if len(v.Parents(name)) == 0 {
			roots = append(roots, name)
		}
	}
	return roots
}
