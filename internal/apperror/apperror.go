// Package apperror defines the error taxonomy shared by every layer of the API.
//
// Services and repositories return these errors; only the HTTP handlers decide
// which status code each one becomes. Anything that is not an *AppError is
// treated as unexpected and never shown to the caller.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidReference = errors.New("invalid reference")
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
)

type AppError struct {
	Err     error             // sentinel, one of the Err* values above
	Message string            // Human-readable error message
	Field   string            // Optional: first field causing the error
	Fields  map[string]string // Optional: every offending field -> message
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidID is returned before any store access when an id is not shaped
// like a store identifier.
func InvalidID(resource string) *AppError {
	return &AppError{
		Err:     ErrInvalidID,
		Message: fmt.Sprintf("Invalid %s id", resource),
		Field:   "id",
	}
}

// InvalidReference reports a foreign key that is missing, malformed or
// points to a parent that does not exist.
func InvalidReference(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidReference,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  map[string]string{field: message},
	}
}

// ValidationFields builds one error naming every offending field:
//
//	Cat validation failed: age: Cat age cannot be negative, name: Cat name is required
//
// Fields are listed in alphabetical order so the message is stable.
func ValidationFields(entity string, fields map[string]string) *AppError {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name])
	}

	var first string
	if len(names) > 0 {
		first = names[0]
	}

	return &AppError{
		Err:     ErrValidation,
		Message: fmt.Sprintf("%s validation failed: %s", entity, strings.Join(parts, ", ")),
		Field:   first,
		Fields:  fields,
	}
}
