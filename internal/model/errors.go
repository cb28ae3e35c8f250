package model

import (
	"errors"
	"fmt"
)

// Domain input errors. Use errors.Is() to check them.
var (
	ErrInvalidCategory   = errors.New("invalid inventory category")
	ErrInvalidLogType    = errors.New("invalid battle log type")
	ErrInvalidRoomType   = errors.New("invalid chat room type")
	ErrInvalidDifficulty = errors.New("invalid mission difficulty")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field error found on an input
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationError wraps field errors; it returns nil for an empty list
func NewValidationError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}
	detail := fmt.Sprintf("%s: %s", v.Errors[0].Field, v.Errors[0].Message)
	if len(v.Errors) > 1 {
		detail = fmt.Sprintf("%s (and %d more errors)", detail, len(v.Errors)-1)
	}
	return "validation failed: " + detail
}

// Has reports whether field failed validation
func (v *ValidationError) Has(field string) bool {
	for _, e := range v.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}
