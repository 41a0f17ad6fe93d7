// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks a request payload before it is sent. Failures are
// reported per field, keyed by the JSON name of the field.
func validateRequest(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &APIError{Message: err.Error(), Err: ErrValidation}
	}

	details := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = append(details[fe.Field()], describe(fe))
	}
	return &APIError{
		Message: "Request failed validation",
		Code:    "VALIDATION_ERROR",
		Details: details,
		Err:     ErrValidation,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return fmt.Sprintf("failed the %q rule", fe.Tag())
	}
}

// queryParams encodes the given values into a query string, skipping empty
// and zero values.
func queryParams(values map[string]any) (url.Values, error) {
	q := make(url.Values, len(values))
	for k, v := range values {
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode query parameter %s: %w", k, err)
		}
		if s == "" || s == "0" {
			continue
		}
		q.Set(k, s)
	}
	return q, nil
}

// resourcePath joins escaped path segments. An empty segment is almost always
// a missing identifier and is rejected before anything is sent.
func resourcePath(segments ...string) (string, error) {
	var b strings.Builder
	for _, s := range segments {
		if s == "" {
			return "", &APIError{Message: "Resource ID is required", Err: ErrValidation}
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String(), nil
}
