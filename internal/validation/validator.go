// Package validation provides request validation utilities using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dvtbooks/books-api/internal/dto"
	domainerrors "github.com/dvtbooks/books-api/internal/errors"
	"github.com/dvtbooks/books-api/internal/isbn"
	"github.com/dvtbooks/books-api/internal/naming"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := naming.JSONName(fld)
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("isbn13", func(fl validator.FieldLevel) bool {
		return isbn.Valid13(fl.Field().String())
	})
	_ = v.RegisterValidation("isbn10", func(fl validator.FieldLevel) bool {
		return isbn.Valid10(fl.Field().String())
	})
	_ = v.RegisterValidation("href", func(fl validator.FieldLevel) bool {
		return dto.IsHref(fl.Field().String())
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error carrying the
// field map, or nil.
func (v *Validator) Validate(s any) error {
	fe, err := v.Fields(s)
	if err != nil {
		return err
	}
	return fe.Err()
}

// Fields validates a struct and returns its failures keyed by wire path
// ("isbn13", "author.href"). The error is non-nil only when s cannot be
// validated at all.
func (v *Validator) Fields(s any) (domainerrors.FieldErrors, error) {
	err := v.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	var fe domainerrors.FieldErrors
	for _, e := range validationErrs {
		field := fieldPath(e)
		fe.Add(field, friendlyMessage(field, e))
	}
	return fe, nil
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func friendlyMessage(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "max":
		return fmt.Sprintf("The field %s must not exceed %s characters.", field, e.Param())
	case "min":
		return fmt.Sprintf("The field %s must be at least %s characters.", field, e.Param())
	case "href":
		return fmt.Sprintf("The field %s must be a valid URL.", field)
	case "uuid":
		return fmt.Sprintf("The field %s must be a valid identifier.", field)
	default:
		return fmt.Sprintf("The field %s is invalid.", field)
	}
}
