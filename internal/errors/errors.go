// Package errors defines the engine's sentinel and typed errors. Search
// itself is total and degrades instead of failing; these errors cover the
// boundaries around it (record fetch, snapshot lifecycle, configuration).
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned when a record id cannot be resolved.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNoSnapshot is returned when a search is attempted before any
	// index snapshot has been published.
	ErrNoSnapshot = errors.New("no index snapshot published")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

// RecordNotFoundError carries the id that failed to resolve.
type RecordNotFoundError struct {
	ID uint32
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("record with id %d not found", e.ID)
}

func (e *RecordNotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// NewRecordNotFoundError creates a new RecordNotFoundError.
func NewRecordNotFoundError(id uint32) *RecordNotFoundError {
	return &RecordNotFoundError{ID: id}
}

// ValidationError represents an input validation error with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
