package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"facturier/internal/amount"
	"facturier/pkg/models"
)

const num = `\d+(?:[.,]\d+)?`

const (
	unitPiece = "pce"
	unitHour  = "h"
)

var (
	// Description 2 h * 40€ 80€
	multiplierUnitRegex = regexp.MustCompile(`^(.+?)\s+(` + num + `)\s*(\p{L}+[²³]?)?\s*[*x×]\s*(` + num + `)\s*€\s+(` + num + `)\s*€$`)

	// Tube cuivre 2,5*12€ 30
	bareMultiplierRegex = regexp.MustCompile(`^(.+?)\s+(` + num + `)\s*[*x×]\s*(` + num + `)\s*€\s+(` + num + `)\s*€?$`)

	// Description 12,50€
	trailingPriceRegex = regexp.MustCompile(`^(.+?)\s+(` + num + `)\s*€$`)

	// Chaudière 1 234,50€
	groupedPriceRegex = regexp.MustCompile(`^(.+?)\s+(\d{1,3}(?:[ \x{a0}]\d{3})+(?:[.,]\d+)?)\s*€$`)

	// Filtre 87168 45€, Raccord 3/4 12€
	codedPriceRegex = regexp.MustCompile(`^(.+?)\s+(\d+(?:[/.\-]\d+)*)\s+(` + num + `)\s*€$`)

	// *35, x 35, 3hx35
	factorRegex = regexp.MustCompile(`(?i)(\*|×|\bx|[\dh]x)\s*(` + num + `)\s*€?`)

	hourTokenRegex = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?h\d*)\b`)

	spaceRegex = regexp.MustCompile(`\s+`)
)

// itemPattern turns a line into a line item. Date tagging is left to the caller.
type itemPattern struct {
	name  string
	match func(p *Parser, line string) (models.LineItem, bool)
}

// itemPatterns are tried in order; the first match wins.
var itemPatterns = []itemPattern{
	{"multiplier-unit", matchMultiplierUnit},
	{"bare-multiplier", matchBareMultiplier},
	{"hour-shorthand", matchHourShorthand},
	{"grouped-price", matchGroupedPrice},
	{"coded-price", matchCodedPrice},
	{"trailing-price", matchTrailingPrice},
}

// matchItem runs the item patterns against line.
func (p *Parser) matchItem(line string) (models.LineItem, string, bool) {
	for _, pattern := range itemPatterns {
		if item, ok := pattern.match(p, line); ok {
			return item, pattern.name, true
		}
	}
	return models.LineItem{}, "", false
}

func matchMultiplierUnit(_ *Parser, line string) (models.LineItem, bool) {
	m := multiplierUnitRegex.FindStringSubmatch(line)
	if m == nil {
		return models.LineItem{}, false
	}

	unit := m[3]
	if unit == "" {
		unit = unitPiece
	}
	return newItem(m[1], amount.Parse(m[2]), unit, amount.Parse(m[4]), amount.Parse(m[5])), true
}

func matchBareMultiplier(p *Parser, line string) (models.LineItem, bool) {
	m := bareMultiplierRegex.FindStringSubmatch(line)
	if m == nil {
		return models.LineItem{}, false
	}
	return newItem(m[1], amount.Parse(m[2]), p.bareUnit, amount.Parse(m[3]), amount.Parse(m[4])), true
}

func matchHourShorthand(_ *Parser, line string) (models.LineItem, bool) {
	m := trailingPriceRegex.FindStringSubmatch(line)
	if m == nil {
		return models.LineItem{}, false
	}
	rest, total := m[1], amount.Parse(m[2])

	f := factorRegex.FindStringSubmatchIndex(rest)
	if f == nil {
		return models.LineItem{}, false
	}
	unitPrice := amount.Parse(rest[f[4]:f[5]])

	// Keep the digit or "h" that a glued "x" consumed ("3hx35").
	keep := ""
	if op := rest[f[2]:f[3]]; strings.ContainsAny(op[:1], "0123456789hH") {
		keep = op[:1]
	}
	withoutFactor := rest[:f[0]] + keep + " " + rest[f[1]:]

	h := hourTokenRegex.FindStringSubmatchIndex(withoutFactor)
	if h == nil {
		return models.LineItem{}, false
	}
	quantity := amount.Hours(withoutFactor[h[2]:h[3]])

	description := cleanDescription(withoutFactor[:h[2]] + " " + withoutFactor[h[3]:])
	if description == "" {
		description = cleanDescription(rest)
	}
	return newItem(description, quantity, unitHour, unitPrice, total), true
}

// matchGroupedPrice reads a price written with thousands groups. A short code
// followed by a three-digit price ("Vanne 3 250€") reads the same way.
func matchGroupedPrice(_ *Parser, line string) (models.LineItem, bool) {
	m := groupedPriceRegex.FindStringSubmatch(line)
	if m == nil {
		return models.LineItem{}, false
	}
	total := amount.Parse(m[2])
	return newItem(m[1], decimal.NewFromInt(1), unitPiece, total, total), true
}

func matchCodedPrice(_ *Parser, line string) (models.LineItem, bool) {
	m := codedPriceRegex.FindStringSubmatch(line)
	if m == nil {
		return models.LineItem{}, false
	}
	total := amount.Parse(m[3])
	return newItem(m[1]+" "+m[2], decimal.NewFromInt(1), unitPiece, total, total), true
}

func matchTrailingPrice(_ *Parser, line string) (models.LineItem, bool) {
	m := trailingPriceRegex.FindStringSubmatch(line)
	if m == nil {
		return models.LineItem{}, false
	}
	total := amount.Parse(m[2])
	return newItem(m[1], decimal.NewFromInt(1), unitPiece, total, total), true
}

func newItem(description string, quantity decimal.Decimal, unit string, unitPrice, total decimal.Decimal) models.LineItem {
	return models.LineItem{
		Description: cleanDescription(description),
		Quantity:    amount.FormatQuantity(quantity),
		Unit:        unit,
		UnitPrice:   amount.FormatEuro(unitPrice),
		Total:       amount.FormatEuro(total),
	}
}

// cleanDescription drops stray currency signs left by token removal and
// collapses whitespace.
func cleanDescription(s string) string {
	s = strings.ReplaceAll(s, "€", " ")
	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}
