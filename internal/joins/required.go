package joins

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hurou927/db-join-path/internal/graph"
)

// FindPathWithRequired finds the path from one resource to another using an
// unlimited Finder, then attaches every required resource.
func FindPathWithRequired(v *graph.View, from, to string, required []string) (*Plan, error) {
	return defaultFinder.FindPathWithRequired(v, from, to, required)
}

// FindPathWithRequired extends the FindPath result with each required
// resource, linked by exactly one FK to a resource already in the plan.
// Required resources are processed in order, so a later one may hang off an
// earlier one. Errors from FindPath are returned unchanged; a required
// resource with no single-hop link fails with ErrUnreachableRequired.
func (f *Finder) FindPathWithRequired(v *graph.View, from, to string, required []string) (*Plan, error) {
	base, err := f.FindPath(v, from, to)
	if err != nil {
		return nil, err
	}
	if len(required) == 0 {
		return base, nil
	}

	p := base.clone()
	for _, name := range required {
		if name == from || p.Has(name) {
			continue
		}
		c, ok := linkToPlan(v, p, name)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no foreign key to or from any of %v", ErrUnreachableRequired, name, p.Resources())
		}
		f.logger().Debug("attached required resource",
			zap.String("resource", name),
			zap.String("on", c.String()))
		p.add(name, c)
	}

	return p, nil
}

// linkToPlan finds the first FK between a plan member and name, checking
// member -> name before name -> member for each member in plan order.
func linkToPlan(v *graph.View, p *Plan, name string) (Clause, bool) {
	for _, member := range p.Resources() {
		for _, e := range v.Outgoing(member) {
			if e.Target() == name {
				return clauseOf(e), true
			}
		}
		for _, e := range v.Outgoing(name) {
			if e.Target() == member {
				return clauseOf(e), true
			}
		}
	}
	return Clause{}, false
}
