package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError reports invalid input caught before any request is made
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, e.Fields[field]))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// Validate checks struct tags and converts failures into a ValidationError
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			fields[field] = "field is required"
		case "email":
			fields[field] = "invalid email format"
		case "min":
			fields[field] = "must be at least " + e.Param()
		case "max":
			fields[field] = "must be at most " + e.Param()
		case "oneof":
			fields[field] = "must be one of " + e.Param()
		default:
			fields[field] = "validation failed on " + e.Tag()
		}
	}
	return &ValidationError{Fields: fields}
}
