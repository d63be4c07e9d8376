package render

import (
	"errors"
	"fmt"
)

// Common rendering errors
var (
	// ErrNotStamped is returned when a document that needs an invoice number
	// and dates is rendered from an unstamped record.
	ErrNotStamped = errors.New("invoice record has no number or dates")

	// ErrDocumentFailed is returned when the PDF or XLSX engine reports a failure.
	ErrDocumentFailed = errors.New("document generation failed")

	// ErrWriteFailed is returned when the rendered output cannot be written.
	ErrWriteFailed = errors.New("writing rendered output failed")
)

// RenderError wraps errors with additional context about rendering failures.
type RenderError struct {
	// Op is the operation that failed (e.g., "PDF", "XLSX", "Preview").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string

	// InvoiceNumber is the number of the invoice being rendered (if stamped).
	InvoiceNumber string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("render: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	if e.InvoiceNumber != "" {
		return fmt.Sprintf("render: %s failed (invoice: %s): %v", e.Op, e.InvoiceNumber, e.Err)
	}
	return fmt.Sprintf("render: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *RenderError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRenderError creates a new RenderError.
func NewRenderError(op string, err error, details string) *RenderError {
	return &RenderError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}
