package joins

import (
	"fmt"

	"github.com/hurou927/db-join-path/internal/graph"
)

// BuildJoinsForFilter returns the joins needed to filter main on the given
// qualified field names ("<resource>.<field>"). Each filtered resource other
// than main must declare an FK to main; every such FK contributes one clause.
// Keys naming unknown resources or fields are ignored.
func BuildJoinsForFilter(v *graph.View, main string, filterKeys []string) (*Plan, error) {
	keys := make(map[string]bool, len(filterKeys))
	for _, k := range filterKeys {
		keys[k] = true
	}

	p := newPlan(main)
	for _, name := range v.Names() {
		if name == main || p.Has(name) {
			continue
		}
		r, _ := v.Resource(name)
		for _, field := range r.Fields {
			if !keys[name+"."+field.Name] {
				continue
			}

			linked := false
			for _, e := range v.Outgoing(name) {
				if e.Target() == main {
					p.add(name, clauseOf(e))
					linked = true
				}
			}
			if !linked {
				return nil, fmt.Errorf("%w: filter on %s.%s but %q has no foreign key to %q",
					ErrNoDirectLinkToMain, name, field.Name, name, main)
			}
			break
		}
	}

	return p, nil
}
