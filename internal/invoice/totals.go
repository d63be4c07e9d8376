package invoice

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"facturier/internal/amount"
	"facturier/pkg/models"
)

// Totals are the formatted amounts printed under the items table.
type Totals struct {
	HT      string `json:"total_ht"`
	TVARate string `json:"tva_rate"`
	TVA     string `json:"tva"`
	TTC     string `json:"total_ttc"`

	// HTCents is HT in euro cents.
	HTCents int64 `json:"total_ht_cents"`
}

// ComputeTotals sums the item totals. Totals that cannot be read count as zero.
func ComputeTotals(items []models.LineItem) (Totals, error) {
	const op = "ComputeTotals"

	sum := money.New(0, amount.Currency)
	for _, item := range items {
		line := money.New(toCents(amount.Parse(item.Total)), amount.Currency)

		var err error
		sum, err = sum.Add(line)
		if err != nil {
			return Totals{}, NewInvoiceError(op, ErrTotalsFailed, err.Error())
		}
	}

	ht := decimal.New(sum.Amount(), -2)
	tva := decimal.Zero

	return Totals{
		HT:      amount.FormatEuro(ht),
		TVARate: amount.FormatPercent(decimal.Zero),
		TVA:     amount.FormatEuro(tva),
		TTC:     amount.FormatEuro(ht.Add(tva)),
		HTCents: sum.Amount(),
	}, nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
