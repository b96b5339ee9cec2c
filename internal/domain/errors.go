package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks every rejected command. Callers test with errors.Is.
	ErrValidation = errors.New("validation error")

	ErrNotFound       = errors.New("not found")
	ErrIllegalMove    = errors.New("illegal move")
	ErrReadOnlyField  = errors.New("field is derived from sub-tasks")
	ErrWeightExceeded = errors.New("total department weight cannot exceed 100")
	ErrDuplicateName  = errors.New("name already exists")
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrConflict       = errors.New("conflict")
)

// ValidationError is a rejected command. It unwraps to both ErrValidation
// and the specific cause so handlers can branch on either.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Cause}
}

// Invalid builds a ValidationError for field with a formatted message.
func Invalid(cause error, field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NotFound reports an unknown entity reference as a validation failure.
func NotFound(kind, id string) *ValidationError {
	return &ValidationError{Field: kind, Message: fmt.Sprintf("%s %q not found", kind, id), Cause: ErrNotFound}
}

// Warning is a non-fatal data integrity observation made while reading or
// recomputing a project. The data is still accepted.
type Warning struct {
	Kind   WarningKind `json:"kind" yaml:"kind"`
	Ref    string      `json:"ref,omitempty" yaml:"ref,omitempty"`
	Detail string      `json:"detail" yaml:"detail"`
}

func (w Warning) String() string {
	if w.Ref == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Ref, w.Detail)
}
