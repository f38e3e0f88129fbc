package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

// newValidator reports fields by their json name so errors match the payload.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ReadAndValidateRequest binds the body, applies struct defaults and validates.
// It returns nil or a []ValidationError ready for BadRequestResponse.
func ReadAndValidateRequest(c echo.Context, req interface{}) interface{} {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msg, params := describe(fe)
			out = append(out, ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   fe.Field(),
				Message: msg,
				Params:  params,
			})
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

// describe covers the tags used by request models in this service.
func describe(fe validator.FieldError) (string, map[string]interface{}) {
	field, p := fe.Field(), fe.Param()
	unit := ""
	if k := fe.Kind(); k == reflect.Slice || k == reflect.Array || k == reflect.Map {
		unit = " items"
	} else if k == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return field + " is required", nil
	case "min":
		return fmt.Sprintf("%s must have at least %s%s", field, p, unit), map[string]interface{}{"min": p}
	case "max":
		return fmt.Sprintf("%s must have at most %s%s", field, p, unit), map[string]interface{}{"max": p}
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, p), map[string]interface{}{"value": p}
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, p), map[string]interface{}{"min": p}
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, p), map[string]interface{}{"max": p}
	case "oneof":
		opts := strings.Fields(p)
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(opts, ", ")), map[string]interface{}{"options": opts}
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag()), nil
	}
}
