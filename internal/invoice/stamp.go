package invoice

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"facturier/internal/logger"
	"facturier/pkg/models"
)

// DateLayout is the DD/MM/YYYY layout used on invoices.
const DateLayout = "02/01/2006"

// Stamper assigns invoice numbers and dates to parsed records.
type Stamper struct {
	seq    Sequence
	config StampConfig
	log    zerolog.Logger
}

// NewStamper creates a Stamper drawing numbers from seq.
func NewStamper(seq Sequence, config StampConfig) (*Stamper, error) {
	const op = "NewStamper"

	if seq == nil {
		return nil, NewInvoiceError(op, ErrMissingSequence, "")
	}
	if config.TermDays < 0 {
		return nil, NewInvoiceError(op, ErrInvalidTermDays, fmt.Sprintf("got %d days", config.TermDays))
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &Stamper{
		seq:    seq,
		config: config,
		log:    logger.WithComponent("stamper"),
	}, nil
}

// Stamp returns a copy of rec with the next invoice number, today's date and
// the due date set. rec itself is not modified.
func (s *Stamper) Stamp(rec models.InvoiceRecord) models.InvoiceRecord {
	now := s.config.Clock()
	due := now.AddDate(0, 0, s.config.TermDays)

	stamped := rec
	stamped.InvoiceNumber = strconv.Itoa(s.seq.Next())
	stamped.InvoiceDate = now.Format(DateLayout)
	stamped.DueDate = due.Format(DateLayout)

	s.log.Info().
		Str("invoice_number", stamped.InvoiceNumber).
		Str("invoice_date", stamped.InvoiceDate).
		Str("due_date", stamped.DueDate).
		Str("client", rec.Client.Name).
		Msg("Invoice stamped")

	return stamped
}

// IsStamped reports whether rec carries an invoice number and dates.
func IsStamped(rec models.InvoiceRecord) bool {
	return rec.InvoiceNumber != "" && rec.InvoiceDate != "" && rec.DueDate != ""
}
