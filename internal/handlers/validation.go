package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	appErrors "pokedex-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Validator checks decoded request bodies against their validate tags and
// reports failures with JSON field names.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that names fields by their json tag.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns a VALIDATION AppError listing every failing field.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return formatValidationError(err, "")
	}
	return nil
}

// ValidateEach validates every element of a slice, prefixing field names with
// the element index.
func ValidateEach[T any](v *Validator, items []T) error {
	if len(items) == 0 {
		return appErrors.NewValidation("body must be a non-empty array")
	}
	for i := range items {
		if err := v.validate.Struct(items[i]); err != nil {
			return formatValidationError(err, fmt.Sprintf("[%d].", i))
		}
	}
	return nil
}

func formatValidationError(err error, prefix string) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return appErrors.NewValidation(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, getErrorMessage(prefix+e.Field(), e))
	}
	return appErrors.NewValidation(strings.Join(messages, "; "))
}

func getErrorMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must not be less than %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must not be greater than %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
