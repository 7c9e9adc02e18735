package service

import (
	"errors"

	"github.com/sakif/whiskerbook/internal/apperror"
)

// isDomain reports whether err is one of the apperror classes. Those are
// expected outcomes and are not logged as failures.
func isDomain(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
