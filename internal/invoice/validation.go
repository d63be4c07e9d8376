package invoice

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"facturier/internal/amount"
	"facturier/internal/logger"
	"facturier/pkg/models"
)

// ItemValidation cross-checks quantity × unit price against the total of each item.
// The parser copies figures as written, so a mismatch usually means a typo in the email.
type ItemValidation struct {
	log       zerolog.Logger
	tolerance decimal.Decimal
}

// NewItemValidation creates a new item validation service with a one cent tolerance.
func NewItemValidation() *ItemValidation {
	return &ItemValidation{
		log:       logger.WithComponent("item-validation"),
		tolerance: decimal.New(1, -2),
	}
}

// ItemWarning describes an item whose figures do not add up.
type ItemWarning struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Expected    string `json:"expected"`
	Actual      string `json:"actual"`
	Message     string `json:"message"`
}

// allowance is the tolerance widened by the rounding of two-decimal quantities
// ("1h20" is printed as 1,33).
func (v *ItemValidation) allowance(unitPrice decimal.Decimal) decimal.Decimal {
	rounding := unitPrice.Abs().Mul(decimal.New(5, -3))
	return decimal.Max(v.tolerance, rounding)
}

// Check returns one warning per item whose total differs from quantity × unit price
// by more than the allowance.
func (v *ItemValidation) Check(items []models.LineItem) []ItemWarning {
	var warnings []ItemWarning

	for i, item := range items {
		quantity := amount.Parse(item.Quantity)
		unitPrice := amount.Parse(item.UnitPrice)
		total := amount.Parse(item.Total)

		expected := quantity.Mul(unitPrice).Round(2)
		difference := expected.Sub(total).Abs()
		if difference.LessThanOrEqual(v.allowance(unitPrice)) {
			continue
		}

		warning := ItemWarning{
			Index:       i,
			Description: item.Description,
			Expected:    amount.FormatEuro(expected),
			Actual:      item.Total,
			Message: fmt.Sprintf("%s: %s × %s = %s, but total is %s (difference: %s)",
				item.Description,
				item.Quantity,
				item.UnitPrice,
				amount.FormatEuro(expected),
				item.Total,
				amount.FormatEuro(difference)),
		}
		warnings = append(warnings, warning)

		v.log.Warn().
			Int("index", i).
			Str("description", item.Description).
			Str("expected", warning.Expected).
			Str("actual", warning.Actual).
			Msg("Item total discrepancy detected")
	}

	v.log.Debug().
		Int("items", len(items)).
		Int("warnings", len(warnings)).
		Msg("Item validation completed")

	return warnings
}
