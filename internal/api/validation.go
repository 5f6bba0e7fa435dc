package api

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidator checks the structure of decoded payloads: required unit
// tags, enumerations and mutually exclusive fields. Numeric ranges are left to
// the calculator so its typed errors reach the client.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

// Struct validates obj and returns a single readable error listing every
// failing field, ordered by field path.
func (rv *requestValidator) Struct(obj any) error {
	err := rv.v.Struct(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldErrorMessage(fe))
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fieldPath(fe)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, strings.Replace(strings.ToLower(fe.Param()), " ", " is ", 1))
	case "required_without":
		return fmt.Sprintf("%s is required unless %s is provided", field, strings.ToLower(fe.Param()))
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, strings.ToLower(fe.Param()))
	case "excluded_unless":
		return fmt.Sprintf("%s is only allowed when %s", field, strings.Replace(strings.ToLower(fe.Param()), " ", " is ", 1))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
