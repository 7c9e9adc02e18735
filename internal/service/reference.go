package service

import (
	"context"
	"fmt"

	"github.com/sakif/whiskerbook/internal/apperror"
	"github.com/sakif/whiskerbook/internal/validation"
)

// existsFunc is an existence-only lookup, such as CatRepository.CatExists.
type existsFunc func(ctx context.Context, id string) (bool, error)

// checkReference validates a foreign key before a write: the value must be a
// well-formed id (checked without touching the store) and must name an
// existing record of target.
//
//	field  "catId"   → the JSON field reported to the caller
//	target "Cat"     → the referenced entity, used in the message
func checkReference(ctx context.Context, field, target, id string, exists existsFunc) error {
	if !validation.IsID(id) {
		return apperror.InvalidReference(field, fmt.Sprintf("Valid %s is required", field))
	}

	ok, err := exists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking %s: %w", field, err)
	}
	if !ok {
		return apperror.InvalidReference(field, fmt.Sprintf("%s must reference an existing %s", field, target))
	}

	return nil
}
