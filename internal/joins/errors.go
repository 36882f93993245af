package joins

import (
	"errors"
	"fmt"
)

// ErrNotFound is the soft failure category: the schema does not describe a
// resource or relationship. Callers probing several schemas are expected to
// test for it with IsNotFound and move on.
var ErrNotFound = errors.New("not found")

var (
	// ErrUnknownResource means the starting resource is not described by the schema.
	ErrUnknownResource = fmt.Errorf("resource not described: %w", ErrNotFound)

	// ErrNoPath means both ends may exist but no FK chain connects them.
	ErrNoPath = fmt.Errorf("no join path: %w", ErrNotFound)

	// ErrNoFKField means the linked resource has no FK to the main field.
	ErrNoFKField = fmt.Errorf("no foreign key field: %w", ErrNotFound)
)

var (
	// ErrUnreachableRequired means a required resource has no single-hop
	// link to any resource already in the plan.
	ErrUnreachableRequired = errors.New("required resource unreachable")

	// ErrNoDirectLinkToMain means a filtered resource has no FK to the main resource.
	ErrNoDirectLinkToMain = errors.New("no direct link to main resource")

	// ErrResourceNotFound means a resource named by the caller does not exist.
	// Unlike ErrUnknownResource it is a hard failure.
	ErrResourceNotFound = errors.New("resource not found")
)

// IsNotFound reports whether err is a soft not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
