package joins

import (
	"fmt"

	"github.com/hurou927/db-join-path/internal/graph"
)

// Clause is a single equality "on" condition between the referenced side
// and the referencing side of a foreign key.
type Clause struct {
	RefResource   string
	RefField      string
	LocalResource string
	LocalField    string
}

// String renders the clause as "<ref>.<field>=<local>.<field>".
func (c Clause) String() string {
	return c.RefResource + "." + c.RefField + "=" + c.LocalResource + "." + c.LocalField
}

// other returns the side of the clause that is not name.
func (c Clause) other(name string) string {
	if c.LocalResource == name {
		return c.RefResource
	}
	return c.LocalResource
}

func clauseOf(e graph.Edge) Clause {
	return Clause{
		RefResource:   e.FK.RefResource,
		RefField:      e.FK.RefField,
		LocalResource: e.Owner,
		LocalField:    e.FK.LocalField,
	}
}

// Join is one joined resource and the clauses linking it to the plan.
type Join struct {
	Resource string
	Clauses  []Clause
}

// On returns the clauses as strings.
func (j Join) On() []string {
	on := make([]string, len(j.Clauses))
	for i, c := range j.Clauses {
		on[i] = c.String()
	}
	return on
}

// Plan is the set of joins connecting resources to From, in discovery order.
// From itself is never an entry. A Plan returned by this package is not
// modified afterwards.
type Plan struct {
	From string

	joins []Join
	index map[string]int
}

func newPlan(from string) *Plan {
	return &Plan{From: from, index: make(map[string]int)}
}

// Len returns the number of joined resources.
func (p *Plan) Len() int {
	return len(p.joins)
}

// Has reports whether name is joined.
func (p *Plan) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Join returns a copy of the entry for name.
func (p *Plan) Join(name string) (Join, bool) {
	i, ok := p.index[name]
	if !ok {
		return Join{}, false
	}
	return copyJoin(p.joins[i]), true
}

// Joins returns a copy of all entries in discovery order.
func (p *Plan) Joins() []Join {
	out := make([]Join, len(p.joins))
	for i, j := range p.joins {
		out[i] = copyJoin(j)
	}
	return out
}

// Resources returns the joined resource names in discovery order.
func (p *Plan) Resources() []string {
	names := make([]string, len(p.joins))
	for i, j := range p.joins {
		names[i] = j.Resource
	}
	return names
}

// ExecutionOrder returns the entries ordered so that every clause only
// refers to From or to resources joined earlier.
func (p *Plan) ExecutionOrder() ([]Join, error) {
	nodes := append([]string{p.From}, p.Resources()...)
	parents := make(map[string][]string, len(p.joins))
	for _, j := range p.joins {
		for _, c := range j.Clauses {
			parents[j.Resource] = append(parents[j.Resource], c.other(j.Resource))
		}
	}

	result := graph.TopoSort(nodes, parents)
	if err := graph.ValidateCycles(result); err != nil {
		return nil, fmt.Errorf("ordering joins from %q: %w", p.From, err)
	}

	ordered := make([]Join, 0, len(p.joins))
	for _, name := range result.Order {
		if name == p.From {
			continue
		}
		ordered = append(ordered, copyJoin(p.joins[p.index[name]]))
	}
	return ordered, nil
}

func (p *Plan) clone() *Plan {
	c := &Plan{
		From:  p.From,
		joins: make([]Join, len(p.joins), len(p.joins)+1),
		index: make(map[string]int, len(p.index)+1),
	}
	for i, j := range p.joins {
		c.joins[i] = copyJoin(j)
	}
	for k, v := range p.index {
		c.index[k] = v
	}
	return c
}

// with returns a copy of p with c added under resource.
func (p *Plan) with(resource string, c Clause) *Plan {
	next := p.clone()
	next.add(resource, c)
	return next
}

// add records c under resource in place; identical clauses are kept once.
func (p *Plan) add(resource string, c Clause) {
	i, ok := p.index[resource]
	if !ok {
		p.index[resource] = len(p.joins)
		p.joins = append(p.joins, Join{Resource: resource, Clauses: []Clause{c}})
		return
	}
	for _, existing := range p.joins[i].Clauses {
		if existing == c {
			return
		}
	}
	p.joins[i].Clauses = append(p.joins[i].Clauses, c)
}

func copyJoin(j Join) Join {
	return Join{Resource: j.Resource, Clauses: append([]Clause(nil), j.Clauses...)}
}
