package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturier/pkg/models"
)

const sampleEmail = `Mme Dupont
2 bis rue des dominicains 62000 Arras
12/03/2024
Intervention chaufferie sous-sol
Entretien annuel chaudière
Nettoyage brûleur
Main d'oeuvre 1h30*40€ 60€
Kit joints 8/716 12,50€

Combustion
CO 12 ppm
O2 5,2 %
Rendement 98,5 %
13/03/2024
Remplacement vanne 3 voies
Tube cuivre 2,5*12€ 30
Déplacement 25€
`

func TestParse_SampleEmail(t *testing.T) {
	rec := Parse(sampleEmail)

	assert.Equal(t, "Mme Dupont", rec.Client.Name)
	assert.Equal(t, "2 bis rue des dominicains\n62000 Arras", rec.Client.Address)

	assert.Equal(t, "chaufferie sous-sol", rec.Intervention.Place)
	assert.Equal(t, "Intervention chaufferie sous-sol 12/03/2024, 13/03/2024", rec.Intervention.Header)
	assert.Equal(t, []string{"12/03/2024", "13/03/2024"}, rec.Intervention.Dates)
	assert.Equal(t, "13/03/2024", rec.Intervention.Date)

	assert.Equal(t, []models.DetailEntry{
		{Date: "12/03/2024", Text: "Entretien annuel chaudière\nNettoyage brûleur"},
		{Date: "13/03/2024", Text: "Remplacement vanne 3 voies"},
	}, rec.Intervention.Details)

	assert.Equal(t, []models.LineItem{
		{Description: "Main d'oeuvre", Date: "12/03/2024", Quantity: "1,50", Unit: "h", UnitPrice: "40,00 €", Total: "60,00 €"},
		{Description: "Kit joints 8/716", Date: "12/03/2024", Quantity: "1,00", Unit: "pce", UnitPrice: "12,50 €", Total: "12,50 €"},
		{Description: "Tube cuivre", Date: "13/03/2024", Quantity: "2,50", Unit: "m", UnitPrice: "12,00 €", Total: "30,00 €"},
		{Description: "Déplacement", Date: "13/03/2024", Quantity: "1,00", Unit: "pce", UnitPrice: "25,00 €", Total: "25,00 €"},
	}, rec.Items)

	assert.Equal(t, []string{"CO 12 ppm", "O2 5,2 %", "Rendement 98,5 %"}, rec.Combustion.Lines)

	org := models.DefaultOrganization()
	assert.Equal(t, org.Sender, rec.Sender)
	assert.Equal(t, org.Payment, rec.Payment)
	assert.Equal(t, org.Footer, rec.Footer)
	assert.Equal(t, org.OperationType, rec.OperationType)
	assert.Empty(t, rec.InvoiceNumber)
	assert.Empty(t, rec.InvoiceDate)
	assert.Empty(t, rec.DueDate)
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse(sampleEmail)
	second := Parse(sampleEmail)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.ID)

	other := Parse(sampleEmail + "Purge radiateurs\n")
	assert.NotEqual(t, first.ID, other.ID)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n \t\n"} {
		rec := Parse(raw)
		assert.Equal(t, "Client inconnu", rec.Client.Name)
		assert.Equal(t, "Adresse inconnue", rec.Client.Address)
		assert.Equal(t, "Intervention Adresse inconnue", rec.Intervention.Header)
		assert.Equal(t, "-", rec.Intervention.Date)
		assert.Empty(t, rec.Intervention.Dates)
		assert.Empty(t, rec.Items)
		assert.Empty(t, rec.Intervention.Details)
		assert.Empty(t, rec.Combustion.Lines)
	}
}

func TestParse_PostalCodeSplit(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"street and city", "2 bis rue des dominicains 62000 Arras", "2 bis rue des dominicains\n62000 Arras"},
		{"no postal code", "Lieu-dit les Prés", "Lieu-dit les Prés"},
		{"six digits", "Zone 620001 Arras", "Zone 620001 Arras"},
		{"postal code at end", "4 rue bourbon 62690", "4 rue bourbon\n62690"},
		{"first code only", "Rés. 12345 bât B 62000 Arras", "Rés.\n12345 bât B 62000 Arras"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse("Client\n" + tt.address)
			assert.Equal(t, tt.want, rec.Client.Address)
		})
	}
}

func TestParse_ThirdLineSeed(t *testing.T) {
	t.Run("date", func(t *testing.T) {
		rec := Parse("Client\nAdresse\n1/3/2024\nVanne 20€")
		assert.Equal(t, []string{"01/03/2024"}, rec.Intervention.Dates)
		require.Len(t, rec.Items, 1)
		assert.Equal(t, "01/03/2024", rec.Items[0].Date)
	})

	t.Run("intervention marker", func(t *testing.T) {
		rec := Parse("Client\nAdresse\nIntervention cave\nVanne 20€\nPurge")
		assert.Equal(t, "Intervention cave", rec.Intervention.Header)
		assert.Empty(t, rec.Intervention.Dates)
		require.Len(t, rec.Items, 1)
		assert.Equal(t, "-", rec.Items[0].Date)
		assert.Equal(t, []models.DetailEntry{{Date: "-", Text: "Purge"}}, rec.Intervention.Details)
	})

	t.Run("free text", func(t *testing.T) {
		rec := Parse("Client\nAdresse\nsemaine 12\nPurge")
		assert.Equal(t, "semaine 12", rec.Intervention.Date)
		assert.Equal(t, []string{"semaine 12"}, rec.Intervention.Dates)
		assert.Equal(t, []models.DetailEntry{{Date: "semaine 12", Text: "Purge"}}, rec.Intervention.Details)
	})

	t.Run("overridden by later date", func(t *testing.T) {
		rec := Parse("Client\nAdresse\n02/05/2024\n03/05/2024\nVanne 20€")
		require.Len(t, rec.Items, 1)
		assert.Equal(t, "03/05/2024", rec.Items[0].Date)
	})
}

func TestParse_PlaceFallsBackToClientAddress(t *testing.T) {
	rec := Parse("Client\n5 rue Haute 62000 Arras\n10/10/2024")
	assert.Equal(t, "5 rue Haute\n62000 Arras", rec.Intervention.Place)
	assert.Equal(t, "Intervention 5 rue Haute\n62000 Arras 10/10/2024", rec.Intervention.Header)
}

func TestParse_Dates(t *testing.T) {
	rec := Parse("Client\nAdresse\n01/02/2024\nNote A\n2/2/2024\nNote B\n01/02/2024\nNote C\n02/02/2024\nNote D")

	assert.Equal(t, []string{"01/02/2024", "02/02/2024"}, rec.Intervention.Dates)
	assert.Equal(t, []models.DetailEntry{
		{Date: "01/02/2024", Text: "Note A"},
		{Date: "02/02/2024", Text: "Note B"},
		{Date: "01/02/2024", Text: "Note C"},
		{Date: "02/02/2024", Text: "Note D"},
	}, rec.Intervention.Details)
	assert.Equal(t, "Intervention Adresse 01/02/2024, 02/02/2024", rec.Intervention.Header)
}

func TestParse_DetailGrouping(t *testing.T) {
	raw := "Client\nAdresse\n05/06/2024\nDétartrage\nVanne 20€\nPurge\n06/06/2024\nEssais"

	t.Run("by date", func(t *testing.T) {
		rec := New(WithDetailGrouping(GroupByDate)).Parse(raw)
		assert.Equal(t, []models.DetailEntry{
			{Date: "05/06/2024", Text: "Détartrage\nPurge"},
			{Date: "06/06/2024", Text: "Essais"},
		}, rec.Intervention.Details)
	})

	t.Run("per line", func(t *testing.T) {
		rec := New(WithDetailGrouping(GroupPerLine)).Parse(raw)
		assert.Equal(t, []models.DetailEntry{
			{Date: "05/06/2024", Text: "Détartrage"},
			{Date: "05/06/2024", Text: "Purge"},
			{Date: "06/06/2024", Text: "Essais"},
		}, rec.Intervention.Details)
	})
}

func TestParse_BareMultiplierUnit(t *testing.T) {
	raw := "Client\nAdresse\n05/06/2024\nTube cuivre 2,5*12€ 30"

	rec := New().Parse(raw)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, "m", rec.Items[0].Unit)

	rec = New(WithBareMultiplierUnit("pce")).Parse(raw)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, "pce", rec.Items[0].Unit)

	rec = New(WithBareMultiplierUnit("  ")).Parse(raw)
	assert.Equal(t, "m", rec.Items[0].Unit)
}

func TestParse_Combustion(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		lines     []string
		items     int
		details   []string
		dates     []string
		placeWant string
	}{
		{
			name:    "ended by date",
			body:    "Combustion\nCO 10 ppm\nO2 4 %\n14/03/2024\nRéglage brûleur",
			lines:   []string{"CO 10 ppm", "O2 4 %"},
			details: []string{"Réglage brûleur"},
			dates:   []string{"14/03/2024"},
		},
		{
			name:    "ended by item",
			body:    "combustion\nCO 10 ppm\nVanne 20€\nNote",
			lines:   []string{"CO 10 ppm"},
			items:   1,
			details: []string{"Note"},
		},
		{
			name:      "ended by intervention marker",
			body:      "COMBUSTION\nCO 10 ppm\nIntervention garage\nNote",
			lines:     []string{"CO 10 ppm"},
			details:   []string{"Note"},
			placeWant: "garage",
		},
		{
			name:  "restarted block",
			body:  "Combustion\nCO 10 ppm\nCombustion\nCO 8 ppm",
			lines: []string{"CO 10 ppm", "CO 8 ppm"},
		},
		{
			name:    "until end of input",
			body:    "Note\nCombustion\nT fumées 110 °C\nRendement 97 %",
			lines:   []string{"T fumées 110 °C", "Rendement 97 %"},
			details: []string{"Note"},
		},
		{
			name:    "word inside a sentence is a note",
			body:    "Analyse combustion OK",
			details: []string{"Analyse combustion OK"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse("Client\nAdresse\nIntervention atelier\n" + tt.body)

			if tt.lines == nil {
				assert.Empty(t, rec.Combustion.Lines)
			} else {
				assert.Equal(t, tt.lines, rec.Combustion.Lines)
			}
			assert.Len(t, rec.Items, tt.items)

			var texts []string
			for _, d := range rec.Intervention.Details {
				texts = append(texts, strings.Split(d.Text, "\n")...)
			}
			assert.Equal(t, tt.details, texts)

			if tt.dates == nil {
				assert.Empty(t, rec.Intervention.Dates)
			} else {
				assert.Equal(t, tt.dates, rec.Intervention.Dates)
			}
			if tt.placeWant != "" {
				assert.Equal(t, tt.placeWant, rec.Intervention.Place)
			}
		})
	}
}

func TestParse_PreservesOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("Client\nAdresse\n01/01/2024\n")
	for i := 1; i <= 9; i++ {
		b.WriteString("Pièce ")
		b.WriteByte(byte('A' + i - 1))
		b.WriteString(" 1")
		b.WriteByte(byte('0' + i))
		b.WriteString("€\n")
	}
	rec := New(WithDetailGrouping(GroupPerLine)).Parse(b.String() + "Note 1\nNote 2\nNote 3")

	require.Len(t, rec.Items, 9)
	for i, item := range rec.Items {
		assert.Equal(t, "Pièce "+string(rune('A'+i)), item.Description)
	}
	require.Len(t, rec.Intervention.Details, 3)
	assert.Equal(t, "Note 1", rec.Intervention.Details[0].Text)
	assert.Equal(t, "Note 3", rec.Intervention.Details[2].Text)
}

func TestParse_WindowsLineEndings(t *testing.T) {
	rec := Parse("Client\r\nAdresse 62000 Arras\r\n01/01/2024\r\nVanne 20€\r\n")
	assert.Equal(t, "Adresse\n62000 Arras", rec.Client.Address)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, "20,00 €", rec.Items[0].Total)
}

func TestParseDetailGrouping(t *testing.T) {
	g, err := ParseDetailGrouping("line")
	require.NoError(t, err)
	assert.Equal(t, GroupPerLine, g)

	g, err = ParseDetailGrouping("DATE")
	require.NoError(t, err)
	assert.Equal(t, GroupByDate, g)

	g, err = ParseDetailGrouping("")
	require.NoError(t, err)
	assert.Equal(t, GroupByDate, g)

	_, err = ParseDetailGrouping("paragraph")
	assert.Error(t, err)
}
