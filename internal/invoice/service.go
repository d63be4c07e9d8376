// Package invoice prepares a parsed invoice record for issuing.
//
// The parser leaves the invoice number and dates empty. This package owns the
// numbering sequence and the dates derived from it, computes the HT/TVA/TTC
// totals and flags items whose figures do not add up.
//
// Numbering:
//   - A Sequence hands out invoice numbers; Counter is the in-memory implementation.
//   - The sequence is passed in explicitly, there is no package-level counter.
//
// Totals:
//   - HT is the sum of item totals, computed in EUR cents.
//   - TVA is always 0 %, so TTC equals HT.
package invoice

import (
	"sync"
	"time"
)

// Sequence defines the source of invoice numbers.
type Sequence interface {
	// Next returns the next invoice number. Numbers are strictly increasing.
	Next() int
}

// Counter is a Sequence backed by an in-memory counter.
type Counter struct {
	mu   sync.Mutex
	last int
}

// NewCounter creates a Counter whose first number is start+1.
func NewCounter(start int) *Counter {
	return &Counter{last: start}
}

// Next increments the counter and returns the new value.
func (c *Counter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last++
	return c.last
}

// Last returns the most recently issued number.
func (c *Counter) Last() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// StampConfig holds configuration for stamping invoices.
type StampConfig struct {
	// TermDays is the payment term; the due date is the invoice date plus TermDays.
	// Default: 30.
	TermDays int

	// Clock returns the invoice date. Default: time.Now.
	Clock func() time.Time
}

// DefaultStampConfig returns a StampConfig with sensible defaults.
func DefaultStampConfig() StampConfig {
	return StampConfig{
		TermDays: 30,
		Clock:    time.Now,
	}
}
