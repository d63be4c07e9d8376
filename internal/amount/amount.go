// Package amount parses the numeric tokens found in job emails and formats
// amounts the way they are printed on French invoices ("39,50 €").
//
// Parsing is lenient: both "." and "," are accepted as decimal separators and
// a malformed token yields zero instead of an error.
package amount

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the only currency invoices are issued in.
const Currency = "EUR"

var hourRegex = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)h(\d+)?$`)

// Parse converts a token such as "12,50", "12.5" or "12,50 €" to a decimal.
// Unparseable input returns decimal.Zero.
func Parse(token string) decimal.Decimal {
	s := strings.TrimSpace(token)
	s = strings.TrimSuffix(s, "€")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Hours converts an hour shorthand ("1h30", "3h", "1,5h") to decimal hours.
// Minutes are divided by 60. Unrecognized input returns zero.
func Hours(token string) decimal.Decimal {
	m := hourRegex.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return decimal.Zero
	}

	hours := Parse(m[1])
	if m[2] == "" {
		return hours
	}
	minutes := Parse(m[2])
	return hours.Add(minutes.Div(decimal.NewFromInt(60)))
}

// Fixed renders d with two decimals and a comma separator ("1,00").
func Fixed(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatQuantity renders a quantity ("2,50").
func FormatQuantity(d decimal.Decimal) string {
	return Fixed(d)
}

// FormatEuro renders a monetary amount ("39,50 €").
func FormatEuro(d decimal.Decimal) string {
	return Fixed(d) + " €"
}

// FormatPercent renders a rate given in percent ("0,00 %").
func FormatPercent(d decimal.Decimal) string {
	return Fixed(d) + " %"
}
