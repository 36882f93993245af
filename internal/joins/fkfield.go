package joins

import (
	"fmt"

	"github.com/hurou927/db-join-path/internal/graph"
)

// FindLocalFKField returns the field of linked that references
// main.mainField. It fails with ErrResourceNotFound when linked does not
// exist and with ErrNoFKField when no FK matches.
func FindLocalFKField(v *graph.View, main, mainField, linked string) (string, error) {
	r, ok := v.Resource(linked)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrResourceNotFound, linked)
	}

	for _, fk := range r.ForeignKeys {
		if fk.RefResource == main && fk.RefField == mainField {
			return fk.LocalField, nil
		}
	}

	return "", fmt.Errorf("%w: %q has no foreign key to %s.%s", ErrNoFKField, linked, main, mainField)
}
