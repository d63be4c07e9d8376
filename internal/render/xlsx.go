package render

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"facturier/internal/amount"
	"facturier/internal/logger"
	"facturier/pkg/models"
)

// SheetName is the worksheet holding the invoice.
const SheetName = "Facture"

// First row of the items table; the rows above hold the invoice header.
const itemsHeaderRow = 8

// XLSXRenderer writes stamped records as single-sheet workbooks. Quantities,
// amounts and totals are stored as numbers so the sheet can be summed.
type XLSXRenderer struct {
	log zerolog.Logger
}

// NewXLSXRenderer creates an XLSX renderer.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{log: logger.WithComponent("xlsx")}
}

// Render writes rec as an XLSX workbook to w. rec must be stamped.
func (r *XLSXRenderer) Render(w io.Writer, rec models.InvoiceRecord) error {
	const op = "XLSX"

	if err := requireStamped(op, rec); err != nil {
		return err
	}
	totals, err := totalsFor(op, rec)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return &RenderError{Op: op, Err: fmt.Errorf("%w: %v", ErrDocumentFailed, err), InvoiceNumber: rec.InvoiceNumber}
	}

	set := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(SheetName, cell, v)
	}

	set(1, 1, "FACTURE - "+rec.InvoiceNumber)
	set(1, 2, "Date de facturation")
	set(2, 2, rec.InvoiceDate)
	set(1, 3, "Échéance")
	set(2, 3, rec.DueDate)
	set(1, 4, "Type d'opération")
	set(2, 4, rec.OperationType)
	set(1, 5, "Client")
	set(2, 5, rec.Client.Name)
	set(2, 6, rec.Client.Address)
	set(4, 5, "Intervention")
	set(5, 5, rec.Intervention.Header)

	for i, h := range itemHeader {
		set(i+1, itemsHeaderRow, h)
	}
	if style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C8C8C8"}, Pattern: 1},
	}); err == nil {
		_ = f.SetCellStyle(SheetName, "A8", "F8", style)
	}

	row := itemsHeaderRow + 1
	for _, item := range rec.Items {
		cells := itemRow(item)
		set(1, row, cells[0])
		set(2, row, cells[1])
		set(3, row, amount.Parse(item.Quantity).InexactFloat64())
		set(4, row, cells[3])
		set(5, row, amount.Parse(item.UnitPrice).InexactFloat64())
		set(6, row, amount.Parse(item.Total).InexactFloat64())
		row++
	}

	row++
	set(5, row, "Total HT")
	set(6, row, float64(totals.HTCents)/100)
	row++
	set(5, row, "TVA "+totals.TVARate)
	set(6, row, amount.Parse(totals.TVA).InexactFloat64())
	row++
	set(5, row, "Total TTC")
	set(6, row, amount.Parse(totals.TTC).InexactFloat64())

	if len(rec.Combustion.Lines) > 0 {
		row += 2
		set(1, row, "Combustion")
		for _, line := range rec.Combustion.Lines {
			row++
			set(1, row, line)
		}
	}

	row += 2
	set(1, row, "IBAN")
	set(2, row, rec.Payment.IBAN)
	row++
	set(1, row, rec.Payment.TVANote)
	row++
	set(1, row, "Conditions de paiement")
	set(2, row, rec.Payment.Conditions)

	_ = f.SetColWidth(SheetName, "A", "A", 40) // description
	_ = f.SetColWidth(SheetName, "B", "B", 14) // date
	_ = f.SetColWidth(SheetName, "C", "D", 8)  // quantity, unit
	_ = f.SetColWidth(SheetName, "E", "F", 16) // amounts

	buf, err := f.WriteToBuffer()
	if err != nil {
		return &RenderError{Op: op, Err: fmt.Errorf("%w: %v", ErrDocumentFailed, err), InvoiceNumber: rec.InvoiceNumber}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return &RenderError{Op: op, Err: fmt.Errorf("%w: %v", ErrWriteFailed, err), InvoiceNumber: rec.InvoiceNumber}
	}

	r.log.Info().
		Str("invoice_number", rec.InvoiceNumber).
		Int("items", len(rec.Items)).
		Int("bytes", buf.Len()).
		Msg("XLSX invoice rendered")

	return nil
}

// XLSX renders rec with a one-off XLSXRenderer.
func XLSX(w io.Writer, rec models.InvoiceRecord) error {
	return NewXLSXRenderer().Render(w, rec)
}
