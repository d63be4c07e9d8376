package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"facturier/pkg/models"
)

// Preview writes a plain-text rendition of rec to w. The record does not
// need to be stamped.
func Preview(w io.Writer, rec models.InvoiceRecord) error {
	const op = "Preview"

	totals, err := totalsFor(op, rec)
	if err != nil {
		return err
	}

	var b strings.Builder

	fmt.Fprintf(&b, "FACTURE - %s\n", orNA(rec.InvoiceNumber))
	fmt.Fprintf(&b, "Date de facturation: %s\n", orNA(rec.InvoiceDate))
	fmt.Fprintf(&b, "Échéance: %s\n", orNA(rec.DueDate))
	fmt.Fprintf(&b, "Type d'opération: %s\n\n", rec.OperationType)

	b.WriteString(rec.Sender.Name + "\n")
	for _, line := range senderLines(rec.Sender) {
		b.WriteString(line + "\n")
	}

	b.WriteString("\nClient:\n")
	b.WriteString(rec.Client.Name + "\n")
	b.WriteString(rec.Client.Address + "\n\n")

	b.WriteString(rec.Intervention.Header + "\n")
	if len(rec.Intervention.Details) == 0 {
		b.WriteString("  Aucune description.\n")
	}
	for _, detail := range rec.Intervention.Details {
		fmt.Fprintf(&b, "  %s\n", detail.Date)
		for _, line := range strings.Split(detail.Text, "\n") {
			fmt.Fprintf(&b, "    %s\n", line)
		}
	}
	b.WriteString("\n")

	table := tablewriter.NewWriter(&b)
	table.SetHeader(itemHeader)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})
	for _, item := range rec.Items {
		table.Append(itemRow(item))
	}
	table.Render()

	if len(rec.Combustion.Lines) > 0 {
		b.WriteString("\nCombustion\n")
		for _, line := range rec.Combustion.Lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	fmt.Fprintf(&b, "\nTotal HT: %s\n", totals.HT)
	fmt.Fprintf(&b, "TVA %s: %s\n", totals.TVARate, totals.TVA)
	fmt.Fprintf(&b, "Total TTC: %s\n", totals.TTC)

	b.WriteString("\nMoyens de paiement:\n")
	fmt.Fprintf(&b, "IBAN: %s\n", rec.Payment.IBAN)
	b.WriteString(rec.Payment.TVANote + "\n")
	fmt.Fprintf(&b, "Conditions de paiement: %s\n\n", rec.Payment.Conditions)

	for _, line := range footerLines(rec.Footer) {
		b.WriteString(line + "\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return &RenderError{Op: op, Err: fmt.Errorf("%w: %v", ErrWriteFailed, err), InvoiceNumber: rec.InvoiceNumber}
	}
	return nil
}
