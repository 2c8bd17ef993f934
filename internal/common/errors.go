package common

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation error")

	// ErrUnconfigured is returned by a store whose connection settings are absent.
	ErrUnconfigured = errors.New("store not configured")

	// ErrStore matches every *StoreError via errors.Is.
	ErrStore = errors.New("store error")

	// ErrForbidden is returned when the caller may not invoke a procedure.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports malformed input. It is raised before any store access.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps a query or network failure from a backing store.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err as a StoreError for op. A nil err yields nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	// Keep the more specific kind when the store was never configured.
	if errors.Is(err, ErrUnconfigured) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// PublicError carries a message that is safe to show to the caller while
// keeping the underlying cause for logs.
type PublicError struct {
	Message string
	Err     error
}

// NewPublicError wraps cause with a caller-facing message.
func NewPublicError(message string, cause error) *PublicError {
	return &PublicError{Message: message, Err: cause}
}

func (e *PublicError) Error() string {
	return e.Message
}

func (e *PublicError) Unwrap() error {
	return e.Err
}
