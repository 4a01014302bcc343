// Package validate wraps go-playground/validator so callers get apperror
// values instead of validator.ValidationErrors.
//
// Field names in errors come from the json tag ("imageUrl", not "ImageURL"),
// so they match what the client sent.
//
// Two tags matter most here:
//   - notblank: the field is present and not just whitespace
//   - omitnil:  on pointer fields, skip every rule when the pointer is nil
//     (used by partial-update payloads)
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/ijwihub/studio-cms/internal/apperror"
)

// Validator checks struct tags. Safe for concurrent use; build one per process.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		// only fails for an empty tag name or nil func
		panic(fmt.Sprintf("validate: registering notblank: %v", err))
	}

	return &Validator{v: v}
}

// Struct validates s.
//
// Missing values (required / notblank) are collected into one
// apperror.MissingFields naming every offending field in declaration order.
// Otherwise the first other rule failure becomes apperror.ValidationFailed.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	var missing []string
	var first validator.FieldError
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "notblank":
			missing = append(missing, fe.Field())
		default:
			if first == nil {
				first = fe
			}
		}
	}

	if len(missing) > 0 {
		return apperror.MissingFields(missing...)
	}
	return apperror.ValidationFailed(first.Field(), message(first))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s entries", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be %s characters or less", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (failed on '%s')", fe.Field(), fe.Tag())
	}
}
