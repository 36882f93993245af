package joins

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hurou927/db-join-path/internal/graph"
)

// Finder searches join paths over a graph.View. The zero value searches
// without a depth limit and without logging. A Finder holds no per-call
// state and may be used concurrently.
type Finder struct {
	// MaxDepth caps the number of joined resources in a plan; 0 means the
	// search is bounded only by the number of resources.
	MaxDepth int

	Logger *zap.Logger
}

// NewFinder creates a Finder. A nil logger disables logging.
func NewFinder(maxDepth int, logger *zap.Logger) *Finder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Finder{MaxDepth: maxDepth, Logger: logger}
}

var defaultFinder = &Finder{}

// FindPath returns the shortest join plan from one resource to another using
// an unlimited Finder.
func FindPath(v *graph.View, from, to string) (*Plan, error) {
	return defaultFinder.FindPath(v, from, to)
}

func (f *Finder) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

// FindPath returns the plan with the fewest joined resources connecting from
// to to, walking FKs in both directions. It fails with ErrUnknownResource
// when from is not described and ErrNoPath when nothing connects them.
func (f *Finder) FindPath(v *graph.View, from, to string) (*Plan, error) {
	if _, ok := v.Resource(from); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, from)
	}
	if from == to {
		return newPlan(from), nil
	}
	// An undescribed target can still be reached by an FK naming it.
	if _, ok := v.Resource(to); ok && !graph.Connected(v, from, to) {
		return nil, fmt.Errorf("%w: from %q to %q", ErrNoPath, from, to)
	}

	p := f.search(v, from, to, newPlan(from))
	if p == nil {
		if f.MaxDepth > 0 {
			return nil, fmt.Errorf("%w: from %q to %q within %d joins", ErrNoPath, from, to, f.MaxDepth)
		}
		return nil, fmt.Errorf("%w: from %q to %q", ErrNoPath, from, to)
	}

	f.logger().Debug("join path found",
		zap.String("from", from),
		zap.String("to", to),
		zap.Strings("joins", p.Resources()))
	return p, nil
}

// search explores every FK leaving from in v. acc is owned by the caller and
// is never modified: each branch gets its own extended copy, and v is
// narrowed with Without so a branch cannot walk back through from.
func (f *Finder) search(v *graph.View, from, to string, acc *Plan) *Plan {
	if _, ok := v.Resource(from); !ok {
		return nil
	}

	outgoing := v.Outgoing(from)
	incoming := v.Incoming(from)

	// A direct link is always the shortest.
	for _, e := range outgoing {
		if e.Target() == to {
			return acc.with(to, clauseOf(e))
		}
	}
	for _, e := range incoming {
		if e.Owner == to {
			return acc.with(to, clauseOf(e))
		}
	}

	// Any branch adds the hop to a neighbor plus at least one more.
	best := acc.Len() + 2
	if f.MaxDepth > 0 && best > f.MaxDepth {
		return nil
	}

	rest := v.Without(from)
	var kept *Plan
	try := func(next string, e graph.Edge) {
		if kept != nil && kept.Len() == best {
			return
		}
		if next == acc.From || acc.Has(next) {
			return
		}
		f.logger().Debug("exploring join",
			zap.String("from", from),
			zap.String("via", next),
			zap.Int("depth", acc.Len()+1))

		found := f.search(rest, next, to, acc.with(next, clauseOf(e)))
		if found == nil {
			return
		}
		if kept == nil || found.Len() < kept.Len() {
			kept = found
		}
	}

	for _, e := range outgoing {
		try(e.Target(), e)
	}
	for _, e := range incoming {
		try(e.Owner, e)
	}

	return kept
}
