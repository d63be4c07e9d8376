package invoice

import (
	"errors"
	"fmt"
)

// Common invoice errors
var (
	// ErrMissingSequence is returned when no Sequence was provided for stamping.
	ErrMissingSequence = errors.New("missing invoice number sequence")

	// ErrInvalidTermDays is returned when the payment term is negative.
	ErrInvalidTermDays = errors.New("payment term must not be negative")

	// ErrTotalsFailed is returned when item totals cannot be summed.
	ErrTotalsFailed = errors.New("invoice totals computation failed")
)

// InvoiceError wraps errors with additional context about the failing operation.
type InvoiceError struct {
	// Op is the operation that failed (e.g., "NewStamper", "ComputeTotals").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *InvoiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("invoice: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *InvoiceError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *InvoiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewInvoiceError creates a new InvoiceError.
func NewInvoiceError(op string, err error, details string) *InvoiceError {
	return &InvoiceError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
