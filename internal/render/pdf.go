package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"facturier/internal/invoice"
	"facturier/internal/logger"
	"facturier/pkg/models"
)

// Page geometry in points (A4 portrait).
const (
	marginLeft   = 40.0
	marginTop    = 30.0
	footerHeight = 70.0
	lineHeight   = 13.0
	cellPadding  = 4.0
	rightColumn  = 330.0
)

type column struct {
	width float64
	align string
}

var itemColumns = []column{
	{width: 185, align: "L"},
	{width: 65, align: "C"},
	{width: 45, align: "R"},
	{width: 45, align: "L"},
	{width: 85, align: "R"},
	{width: 90, align: "R"},
}

// PDFOptions tune the PDF layout.
type PDFOptions struct {
	// LogoPath is an optional PNG or JPEG drawn in the top left corner.
	LogoPath string
}

// PDFRenderer lays out stamped records as A4 PDF invoices.
type PDFRenderer struct {
	opts PDFOptions
	log  zerolog.Logger
}

// NewPDFRenderer creates a PDF renderer.
func NewPDFRenderer(opts PDFOptions) *PDFRenderer {
	return &PDFRenderer{
		opts: opts,
		log:  logger.WithComponent("pdf"),
	}
}

// Render writes rec as a PDF document to w. rec must be stamped.
func (r *PDFRenderer) Render(w io.Writer, rec models.InvoiceRecord) error {
	const op = "PDF"

	if err := requireStamped(op, rec); err != nil {
		return err
	}
	totals, err := totalsFor(op, rec)
	if err != nil {
		return err
	}

	doc := newPDFDoc(rec.Footer)
	doc.pdf.SetTitle("Facture "+rec.InvoiceNumber, true)
	doc.pdf.SetAuthor(rec.Sender.Name, true)
	doc.pdf.AddPage()

	doc.header(rec, r.opts.LogoPath)
	doc.parties(rec)
	doc.intervention(rec.Intervention)
	doc.items(rec.Items)
	doc.summary(rec.Combustion, totals)
	doc.payment(rec.Payment)

	if doc.pdf.Err() {
		return &RenderError{Op: op, Err: fmt.Errorf("%w: %v", ErrDocumentFailed, doc.pdf.Error()), InvoiceNumber: rec.InvoiceNumber}
	}
	if err := doc.pdf.Output(w); err != nil {
		return &RenderError{Op: op, Err: fmt.Errorf("%w: %v", ErrWriteFailed, err), InvoiceNumber: rec.InvoiceNumber}
	}

	r.log.Info().
		Str("invoice_number", rec.InvoiceNumber).
		Int("items", len(rec.Items)).
		Int("pages", doc.pdf.PageCount()).
		Msg("PDF invoice rendered")

	return nil
}

// pdfDoc tracks the vertical cursor while drawing with absolute positions.
type pdfDoc struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	y      float64
	width  float64
	height float64
}

func newPDFDoc(footer models.Footer) *pdfDoc {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("facturier", true)

	width, height := pdf.GetPageSize()
	d := &pdfDoc{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		y:      marginTop,
		width:  width,
		height: height,
	}

	lines := footerLines(footer)
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Helvetica", "", 8)
		y := height - footerHeight + 20
		for _, line := range lines {
			lineWidth := pdf.GetStringWidth(d.tr(line))
			pdf.Text((width-lineWidth)/2, y, d.tr(line))
			y += 11
		}
	})
	return d
}

func (d *pdfDoc) bottom() float64 {
	return d.height - footerHeight
}

// ensure starts a new page when h points do not fit above the footer.
func (d *pdfDoc) ensure(h float64) bool {
	if d.y+h <= d.bottom() {
		return false
	}
	d.pdf.AddPage()
	d.y = marginTop
	return true
}

func (d *pdfDoc) text(x float64, s string) {
	d.pdf.Text(x, d.y, d.tr(s))
}

// wrap splits s into lines no wider than w in the current font. Widths are
// measured on the translated text since core fonts are single-byte. A word
// wider than w gets a line of its own.
func (d *pdfDoc) wrap(s string, w float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(s, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if d.pdf.GetStringWidth(d.tr(candidate)) > w {
				lines = append(lines, current)
				current = word
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}

func (d *pdfDoc) header(rec models.InvoiceRecord, logoPath string) {
	if logoPath != "" {
		d.pdf.ImageOptions(logoPath, marginLeft, marginTop-10, 0, 50, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}

	d.y = marginTop + 10
	d.pdf.SetFont("Helvetica", "B", 16)
	d.text(rightColumn, "FACTURE - "+rec.InvoiceNumber)

	d.pdf.SetFont("Helvetica", "", 10)
	d.y += 20
	d.text(rightColumn, "Date de facturation: "+rec.InvoiceDate)
	d.y += lineHeight
	d.text(rightColumn, "Échéance: "+rec.DueDate)
	d.y += lineHeight
	d.text(rightColumn, "Type d'opération: "+rec.OperationType)
	d.y += 30
}

func (d *pdfDoc) parties(rec models.InvoiceRecord) {
	top := d.y

	d.pdf.SetFont("Helvetica", "B", 11)
	d.text(marginLeft, rec.Sender.Name)
	d.pdf.SetFont("Helvetica", "", 10)
	for _, line := range senderLines(rec.Sender) {
		d.y += lineHeight
		d.text(marginLeft, line)
	}
	senderBottom := d.y

	d.y = top
	d.pdf.SetFont("Helvetica", "B", 11)
	d.text(rightColumn, "Client")
	d.y += lineHeight + 2
	d.text(rightColumn, rec.Client.Name)
	d.pdf.SetFont("Helvetica", "", 10)
	for _, line := range strings.Split(rec.Client.Address, "\n") {
		d.y += lineHeight
		d.text(rightColumn, line)
	}

	d.y = max(d.y, senderBottom) + 35
}

func (d *pdfDoc) intervention(in models.Intervention) {
	textWidth := d.width - 2*marginLeft

	d.pdf.SetFont("Helvetica", "B", 11)
	for _, line := range d.wrap(in.Header, textWidth) {
		d.ensure(lineHeight)
		d.text(marginLeft, line)
		d.y += lineHeight + 2
	}

	for _, detail := range in.Details {
		d.ensure(2 * lineHeight)
		d.pdf.SetFont("Helvetica", "B", 10)
		d.y += 4
		d.text(marginLeft+10, detail.Date)
		d.y += lineHeight

		d.pdf.SetFont("Helvetica", "", 10)
		for _, line := range d.wrap(detail.Text, textWidth-25) {
			d.ensure(lineHeight)
			d.text(marginLeft+25, line)
			d.y += lineHeight
		}
	}
	d.y += 15
}

func (d *pdfDoc) items(items []models.LineItem) {
	d.ensure(4 * lineHeight)
	d.row(itemHeader, true)
	for _, item := range items {
		d.row(itemRow(item), false)
	}
	d.y += 25
}

// row draws one table row and reports whether it had to move to a new page.
// The header row is repeated on top of every continuation page.
func (d *pdfDoc) row(cells []string, header bool) bool {
	if header {
		d.pdf.SetFont("Helvetica", "B", 10)
	} else {
		d.pdf.SetFont("Helvetica", "", 10)
	}

	wrapped := make([][]string, len(cells))
	lines := 1
	for i, cell := range cells {
		wrapped[i] = d.wrap(cell, itemColumns[i].width-2*cellPadding)
		lines = max(lines, len(wrapped[i]))
	}
	h := float64(lines)*lineHeight + 2*cellPadding

	broke := d.ensure(h)
	if broke && !header {
		d.row(itemHeader, true)
		d.pdf.SetFont("Helvetica", "", 10)
	}

	style := "D"
	if header {
		d.pdf.SetFillColor(200, 200, 200)
		style = "FD"
	}

	x := marginLeft
	for i, col := range itemColumns {
		d.pdf.Rect(x, d.y, col.width, h, style)
		for j, line := range wrapped[i] {
			s := d.tr(line)
			tx := x + cellPadding
			switch col.align {
			case "R":
				tx = x + col.width - cellPadding - d.pdf.GetStringWidth(s)
			case "C":
				tx = x + (col.width-d.pdf.GetStringWidth(s))/2
			}
			d.pdf.Text(tx, d.y+cellPadding+float64(j+1)*lineHeight-3, s)
		}
		x += col.width
	}
	d.y += h
	return broke
}

func (d *pdfDoc) summary(c models.Combustion, totals invoice.Totals) {
	d.ensure(3*lineHeight + 10)
	top := d.y
	page := d.pdf.PageNo()

	d.pdf.SetFont("Helvetica", "", 11)
	d.text(rightColumn+50, "Total HT: "+totals.HT)
	d.y += lineHeight + 2
	d.text(rightColumn+50, fmt.Sprintf("TVA %s: %s", totals.TVARate, totals.TVA))
	d.y += lineHeight + 2
	d.pdf.SetFont("Helvetica", "B", 12)
	d.text(rightColumn+50, "Total TTC: "+totals.TTC)
	totalsBottom := d.y

	d.y = top
	if len(c.Lines) > 0 {
		d.pdf.SetFont("Helvetica", "B", 11)
		d.text(marginLeft, "Combustion")
		for _, line := range c.Lines {
			d.ensure(2 * lineHeight)
			d.pdf.SetFont("Helvetica", "", 10)
			d.y += lineHeight
			d.text(marginLeft+10, line)
		}
	}

	// Readings may run onto later pages, below which the totals no longer sit.
	if d.pdf.PageNo() == page {
		d.y = max(d.y, totalsBottom)
	}
	d.y += 35
}

func (d *pdfDoc) payment(p models.Payment) {
	d.ensure(5 * lineHeight)

	d.pdf.SetFont("Helvetica", "B", 11)
	d.text(marginLeft, "Moyens de paiement:")
	d.pdf.SetFont("Helvetica", "", 10)
	d.y += lineHeight + 2
	d.text(marginLeft, "IBAN: "+p.IBAN)
	d.y += lineHeight
	d.text(marginLeft, p.TVANote)
	d.y += lineHeight
	d.text(marginLeft, "Conditions de paiement: "+p.Conditions)
	d.y += lineHeight
}

// PDF renders rec with a one-off PDFRenderer.
func PDF(w io.Writer, rec models.InvoiceRecord, opts PDFOptions) error {
	return NewPDFRenderer(opts).Render(w, rec)
}
