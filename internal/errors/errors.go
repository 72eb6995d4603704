// Package errors provides shared error types for the wiki client.
package errors

import (
	"fmt"
)

// ValidationError indicates invalid caller input, rejected before any
// network call is made.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// EndpointError indicates that neither API dialect responded at the
// configured base URL. It is raised once, during protocol detection.
type EndpointError struct {
	URL string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("invalid endpoint: neither the resource API nor the action API responded at %s", e.URL)
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	_, ok := err.(*ValidationError)
	return ok
}

// IsEndpoint returns true if the error is an EndpointError.
func IsEndpoint(err error) bool {
	_, ok := err.(*EndpointError)
	return ok
}
