package service

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// newValidationError converts validator violations into a ValidationError
// with one message per field. Non-validator errors pass through unchanged.
func newValidationError(err error) error {
	var violations validator.ValidationErrors
	if !errors.As(err, &violations) {
		return err
	}

	fields := make(FieldErrors, len(violations))
	for _, violation := range violations {
		field := lowerCamel(violation.Field())
		if _, exists := fields[field]; exists {
			continue
		}
		fields[field] = messageForViolation(violation)
	}

	return &ValidationError{Fields: fields}
}

// singleFieldError builds a ValidationError for cross-field rules the tag
// language cannot express.
func singleFieldError(field, message string) error {
	return &ValidationError{Fields: FieldErrors{field: message}}
}

func messageForViolation(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "is required"
	case "min":
		if violation.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", violation.Param())
		}
		return fmt.Sprintf("must be at least %s", violation.Param())
	case "max":
		if violation.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", violation.Param())
		}
		return fmt.Sprintf("must be at most %s", violation.Param())
	case "url":
		return "must be a valid URL"
	case "datetime":
		return "must be a valid RFC3339 timestamp"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", violation.Param())
	default:
		return "is invalid"
	}
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}

	return string(field[0]|0x20) + field[1:]
}
