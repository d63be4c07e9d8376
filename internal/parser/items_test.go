package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturier/pkg/models"
)

func TestMatchItem(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		pattern string
		want    models.LineItem
	}{
		{
			name:    "bare trailing price",
			line:    "Desc 12,50€",
			pattern: "trailing-price",
			want:    models.LineItem{Description: "Desc", Quantity: "1,00", Unit: "pce", UnitPrice: "12,50 €", Total: "12,50 €"},
		},
		{
			name:    "trailing price with space before euro",
			line:    "Déplacement 25 €",
			pattern: "trailing-price",
			want:    models.LineItem{Description: "Déplacement", Quantity: "1,00", Unit: "pce", UnitPrice: "25,00 €", Total: "25,00 €"},
		},
		{
			name:    "hour shorthand with minutes",
			line:    "Main d'oeuvre 2h30*40€ 100€",
			pattern: "hour-shorthand",
			want:    models.LineItem{Description: "Main d'oeuvre", Quantity: "2,50", Unit: "h", UnitPrice: "40,00 €", Total: "100,00 €"},
		},
		{
			name:    "hour shorthand without euro on factor",
			line:    "Déplacement 3h*35 105€",
			pattern: "hour-shorthand",
			want:    models.LineItem{Description: "Déplacement", Quantity: "3,00", Unit: "h", UnitPrice: "35,00 €", Total: "105,00 €"},
		},
		{
			name:    "hour shorthand with x factor",
			line:    "Main d'oeuvre 3h x 35 105€",
			pattern: "hour-shorthand",
			want:    models.LineItem{Description: "Main d'oeuvre", Quantity: "3,00", Unit: "h", UnitPrice: "35,00 €", Total: "105,00 €"},
		},
		{
			name:    "hour shorthand with glued x",
			line:    "Main d'oeuvre 1h15x40 50€",
			pattern: "hour-shorthand",
			want:    models.LineItem{Description: "Main d'oeuvre", Quantity: "1,25", Unit: "h", UnitPrice: "40,00 €", Total: "50,00 €"},
		},
		{
			name:    "x inside a word is not a factor",
			line:    "Flexible inox 1h*40 40€",
			pattern: "hour-shorthand",
			want:    models.LineItem{Description: "Flexible inox", Quantity: "1,00", Unit: "h", UnitPrice: "40,00 €", Total: "40,00 €"},
		},
		{
			name:    "hour shorthand glued to a label",
			line:    "MO:1h30*40€ 60€",
			pattern: "hour-shorthand",
			want:    models.LineItem{Description: "MO:", Quantity: "1,50", Unit: "h", UnitPrice: "40,00 €", Total: "60,00 €"},
		},
		{
			name:    "hours without factor fall back to flat price",
			line:    "Ramonage 1h 30€",
			pattern: "trailing-price",
			want:    models.LineItem{Description: "Ramonage 1h", Quantity: "1,00", Unit: "pce", UnitPrice: "30,00 €", Total: "30,00 €"},
		},
		{
			name:    "multiplier with explicit unit",
			line:    "Radiateur 2 pce * 80€ 160€",
			pattern: "multiplier-unit",
			want:    models.LineItem{Description: "Radiateur", Quantity: "2,00", Unit: "pce", UnitPrice: "80,00 €", Total: "160,00 €"},
		},
		{
			name:    "multiplier with hour unit",
			line:    "Main d'oeuvre 2h*40€ 80€",
			pattern: "multiplier-unit",
			want:    models.LineItem{Description: "Main d'oeuvre", Quantity: "2,00", Unit: "h", UnitPrice: "40,00 €", Total: "80,00 €"},
		},
		{
			name:    "multiplier with accented unit",
			line:    "Radiateur 3 pièces * 5€ 15€",
			pattern: "multiplier-unit",
			want:    models.LineItem{Description: "Radiateur", Quantity: "3,00", Unit: "pièces", UnitPrice: "5,00 €", Total: "15,00 €"},
		},
		{
			name:    "multiplier with square metre unit",
			line:    "Carrelage 3 m² * 20€ 60€",
			pattern: "multiplier-unit",
			want:    models.LineItem{Description: "Carrelage", Quantity: "3,00", Unit: "m²", UnitPrice: "20,00 €", Total: "60,00 €"},
		},
		{
			name:    "multiplier with x separator after unit",
			line:    "Tube 2 ml x 4€ 8€",
			pattern: "multiplier-unit",
			want:    models.LineItem{Description: "Tube", Quantity: "2,00", Unit: "ml", UnitPrice: "4,00 €", Total: "8,00 €"},
		},
		{
			name:    "multiplier without unit defaults to piece",
			line:    "Joint fibre 4*1,5€ 6€",
			pattern: "multiplier-unit",
			want:    models.LineItem{Description: "Joint fibre", Quantity: "4,00", Unit: "pce", UnitPrice: "1,50 €", Total: "6,00 €"},
		},
		{
			name:    "multiplier totals are taken literally",
			line:    "Vanne 2*10€ 25€",
			pattern: "multiplier-unit",
			want:    models.LineItem{Description: "Vanne", Quantity: "2,00", Unit: "pce", UnitPrice: "10,00 €", Total: "25,00 €"},
		},
		{
			name:    "bare multiplier",
			line:    "Tube cuivre 2,5*12€ 30",
			pattern: "bare-multiplier",
			want:    models.LineItem{Description: "Tube cuivre", Quantity: "2,50", Unit: "m", UnitPrice: "12,00 €", Total: "30,00 €"},
		},
		{
			name:    "price with thousands group",
			line:    "Chaudière 1 234,50€",
			pattern: "grouped-price",
			want:    models.LineItem{Description: "Chaudière", Quantity: "1,00", Unit: "pce", UnitPrice: "1234,50 €", Total: "1234,50 €"},
		},
		{
			name:    "coded price",
			line:    "Filtre 87168 45€",
			pattern: "coded-price",
			want:    models.LineItem{Description: "Filtre 87168", Quantity: "1,00", Unit: "pce", UnitPrice: "45,00 €", Total: "45,00 €"},
		},
		{
			name:    "coded price with slash",
			line:    "Raccord laiton 3/4 8.90€",
			pattern: "coded-price",
			want:    models.LineItem{Description: "Raccord laiton 3/4", Quantity: "1,00", Unit: "pce", UnitPrice: "8,90 €", Total: "8,90 €"},
		},
	}

	p := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, pattern, ok := p.matchItem(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.pattern, pattern)
			assert.Equal(t, tt.want, item)
		})
	}
}

func TestMatchItem_NoMatch(t *testing.T) {
	lines := []string{
		"Remplacement vanne 3 voies",
		"CO 12 ppm",
		"Rendement 98,5 %",
		"12€",
		"Total 12€ à régler",
		"Prix: 12€ environ",
	}

	p := New()
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, _, ok := p.matchItem(line)
			assert.False(t, ok)
		})
	}
}
