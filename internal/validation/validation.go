// Package validation is the application-layer schema check: field presence,
// length, range and enumeration rules run on a normalized model before any
// write is attempted. It reports every offending field at once.
//
// The rules live in `validate` struct tags on the model types and are checked
// with go-playground/validator. The store has its own, independent constraints;
// nothing here is generated from them or vice versa.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/sakif/whiskerbook/internal/apperror"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the request body.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// messages maps "<Type>.<field>.<tag>" to the message shown to callers.
var messages = map[string]string{
	"Cat.name.required": "Cat name is required",
	"Cat.age.gte":       "Cat age cannot be negative",

	"Meow.catId.required": "catId is required",
	"Meow.text.required":  "Meow text is required",
	"Meow.text.max":       "Meow text must be 280 characters or less",
	"Meow.mood.oneof":     "mood must be one of: happy, sleepy, playful, hungry, grumpy",

	"Purr.meowId.required":     "meowId is required",
	"Purr.intensity.min":       "intensity must be between 1 and 10",
	"Purr.intensity.max":       "intensity must be between 1 and 10",
	"Purr.durationSeconds.gte": "durationSeconds must be at least 1",
}

// Struct validates a model value (or pointer to one). It returns nil or an
// *apperror.AppError wrapping apperror.ErrValidation that names every field
// that failed.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: a programming mistake, not bad input.
		return fmt.Errorf("validation: %w", err)
	}

	entity := typeName(v)
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(entity, fe)
	}

	return apperror.ValidationFields(entity, fields)
}

// IsID reports whether s is a well-formed store identifier.
func IsID(s string) bool {
	_, err := xid.FromString(s)
	return err == nil
}

func message(entity string, fe validator.FieldError) string {
	if msg, ok := messages[entity+"."+fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
