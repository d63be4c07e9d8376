package parser_test

import (
	"fmt"

	"facturier/internal/parser"
)

// Example parses a short job email and prints the extracted items.
func Example() {
	email := `M. Martin
12 rue Pasteur 62000 Arras
03/04/2024
Entretien chaudière
Main d'oeuvre 1h30*40€ 60€
Kit joints 8/716 12,50€`

	rec := parser.Parse(email)

	fmt.Println(rec.Intervention.Header)
	for _, item := range rec.Items {
		fmt.Printf("%s | %s %s x %s = %s\n", item.Description, item.Quantity, item.Unit, item.UnitPrice, item.Total)
	}
	// Output:
	// Intervention 12 rue Pasteur
	// 62000 Arras 03/04/2024
	// Main d'oeuvre | 1,50 h x 40,00 € = 60,00 €
	// Kit joints 8/716 | 1,00 pce x 12,50 € = 12,50 €
}

// ExampleNew shows the per-line note policy and a custom unit for bare multipliers.
func ExampleNew() {
	p := parser.New(
		parser.WithDetailGrouping(parser.GroupPerLine),
		parser.WithBareMultiplierUnit("pce"),
	)

	rec := p.Parse("Client\nAdresse\n05/06/2024\nPurge\nDétartrage\nJoint 3*2€ 6")

	for _, d := range rec.Intervention.Details {
		fmt.Println(d.Date, d.Text)
	}
	fmt.Println(rec.Items[0].Unit)
	// Output:
	// 05/06/2024 Purge
	// 05/06/2024 Détartrage
	// pce
}
