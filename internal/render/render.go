// Package render lays out an invoice record as a terminal preview, a PDF
// document or an XLSX workbook.
//
// The preview accepts any record; unstamped fields print as "N/A". PDF and
// XLSX output are issued documents and require a stamped record.
//
// Labels follow the French invoice conventions: "FACTURE", "Total HT",
// "TVA", "Total TTC", "Moyens de paiement".
package render

import (
	"fmt"
	"io"
	"strings"

	"facturier/internal/invoice"
	"facturier/pkg/models"
)

const notAvailable = "N/A"

// Format is an output document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat reads "pdf" or "xlsx".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want pdf or xlsx)", s)
	}
}

// Renderer writes an issued invoice document.
type Renderer interface {
	Render(w io.Writer, rec models.InvoiceRecord) error
}

// New returns the renderer for format.
func New(format Format, opts PDFOptions) (Renderer, error) {
	switch format {
	case FormatPDF:
		return NewPDFRenderer(opts), nil
	case FormatXLSX:
		return NewXLSXRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// FileName returns "Facture-<number>.<format>".
func FileName(rec models.InvoiceRecord, format Format) string {
	number := rec.InvoiceNumber
	if number == "" {
		number = "brouillon"
	}
	return fmt.Sprintf("Facture-%s.%s", number, format)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func requireStamped(op string, rec models.InvoiceRecord) error {
	if invoice.IsStamped(rec) {
		return nil
	}
	return NewRenderError(op, ErrNotStamped, "stamp the record before rendering")
}

func totalsFor(op string, rec models.InvoiceRecord) (invoice.Totals, error) {
	totals, err := invoice.ComputeTotals(rec.Items)
	if err != nil {
		return invoice.Totals{}, &RenderError{Op: op, Err: err, InvoiceNumber: rec.InvoiceNumber}
	}
	return totals, nil
}

// senderLines returns the address, phone and email of the sender, one per line.
func senderLines(s models.Sender) []string {
	lines := strings.Split(s.Address, "\n")
	if s.Phone != "" {
		lines = append(lines, s.Phone)
	}
	if s.Email != "" {
		lines = append(lines, s.Email)
	}
	return lines
}

// footerLines returns the legal mentions printed at the bottom of each page.
func footerLines(f models.Footer) []string {
	return []string{
		f.Enterprise,
		f.FullAddress,
		fmt.Sprintf("Numéro de SIRET: %s - APE %s", f.SIRET, f.APE),
	}
}

// itemRow returns the table cells of an item. Currency signs typed in the
// description are dropped since the amount columns already carry one.
func itemRow(item models.LineItem) []string {
	date := item.Date
	if date == "" {
		date = "-"
	}
	return []string{
		strings.TrimSpace(strings.ReplaceAll(item.Description, "€", "")),
		date,
		item.Quantity,
		item.Unit,
		item.UnitPrice,
		item.Total,
	}
}

var itemHeader = []string{"Description", "Date", "Qté", "Unité", "Prix unitaire", "Montant"}
