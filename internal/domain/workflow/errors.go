package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the actor's role cannot edit the requested stage
	ErrForbidden = errors.New("role is not allowed to edit this stage")

	// ErrPrerequisiteMissing is returned when a non-reception stage is submitted
	// for a bill that does not exist yet
	ErrPrerequisiteMissing = errors.New("bill must complete reception first")

	// ErrNotFound is returned when a bill lookup finds no record
	ErrNotFound = errors.New("bill not found")

	// ErrDuplicateClaimNumber is returned when another active bill already
	// carries the submitted claim number
	ErrDuplicateClaimNumber = errors.New("claim number already registered on another bill")

	// ErrDuplicateInvoiceForProvider is returned when another active bill for
	// the same provider already carries the submitted invoice number
	ErrDuplicateInvoiceForProvider = errors.New("invoice number already registered for this provider")
)

// ValidationError reports a stage payload that fails a required-field or
// numeric-positivity rule. Not retried; the caller corrects the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InfrastructureError wraps a gateway lookup or write failure. The engine
// performs no automatic retry and no partial commit; the caller may retry.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// NewInfrastructureError wraps err with the failed operation name
func NewInfrastructureError(op string, err error) *InfrastructureError {
	return &InfrastructureError{Op: op, Err: err}
}
