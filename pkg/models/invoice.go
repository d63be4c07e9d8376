package models

// InvoiceRecord is the structured form of a field-service job email.
// It is produced by the parser; only the stamping stage fills InvoiceNumber,
// InvoiceDate and DueDate.
type InvoiceRecord struct {
	// Core identifiers
	ID            string `json:"id"`             // Fingerprint of the source text
	InvoiceNumber string `json:"invoice_number"` // Sequence number, empty until stamped
	InvoiceDate   string `json:"invoice_date"`   // DD/MM/YYYY, empty until stamped
	DueDate       string `json:"due_date"`       // DD/MM/YYYY, empty until stamped

	OperationType string `json:"operation_type"`

	// Parties
	Sender Sender `json:"sender"`
	Client Client `json:"client"`

	// Job
	Intervention Intervention `json:"intervention"`
	Items        []LineItem   `json:"items"`
	Combustion   Combustion   `json:"combustion"`

	// Organizational constants
	Payment Payment `json:"payment"`
	Footer  Footer  `json:"footer"`
}

// Sender is the issuing business.
type Sender struct {
	Name    string `json:"name"`
	Address string `json:"address"` // Newline separated
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Client is the invoiced customer.
type Client struct {
	Name    string `json:"name"`
	Address string `json:"address"` // Newline inserted before the postal code
}

// Intervention describes the on-site visit.
type Intervention struct {
	Place   string        `json:"place"`
	Header  string        `json:"header"` // "Intervention <place> <dates>"
	Date    string        `json:"date"`   // Last date context, "-" when none
	Dates   []string      `json:"dates"`  // Distinct dates in encounter order
	Details []DetailEntry `json:"details"`
}

// DetailEntry is a free-text note written under a date.
type DetailEntry struct {
	Date string `json:"date"` // DD/MM/YYYY or "-"
	Text string `json:"text"`
}

// LineItem is a billable line. Numeric fields are already formatted
// with a comma decimal separator.
type LineItem struct {
	Description string `json:"description"`
	Date        string `json:"date"`       // DD/MM/YYYY or "-"
	Quantity    string `json:"quantity"`   // e.g. "1,50"
	Unit        string `json:"unit"`       // h, pce, m, ...
	UnitPrice   string `json:"unit_price"` // e.g. "35,00 €"
	Total       string `json:"total"`      // e.g. "52,50 €"
}

// Combustion holds boiler combustion test readings, verbatim.
type Combustion struct {
	Lines []string `json:"lines"`
}

// Payment holds payment instructions printed on the invoice.
type Payment struct {
	IBAN       string `json:"iban"`
	TVANote    string `json:"tva_note"`
	Conditions string `json:"conditions"`
}

// Footer holds the legal mentions of the issuing business.
type Footer struct {
	Enterprise  string `json:"enterprise"`
	FullAddress string `json:"full_address"`
	SIRET       string `json:"siret"`
	APE         string `json:"ape"`
}

// Organization groups the constants that are not derived from the input text.
type Organization struct {
	OperationType string
	Sender        Sender
	Payment       Payment
	Footer        Footer
}

// DefaultOrganization returns placeholder organizational constants.
func DefaultOrganization() Organization {
	return Organization{
		OperationType: "Entretien chaudière gaz",
		Sender: Sender{
			Name:    "Votre entreprise",
			Address: "1 rue de l'exemple\n62000 Arras",
		},
		Payment: Payment{
			TVANote:    "TVA non applicable, art. 293 B du CGI",
			Conditions: "30 jours",
		},
		Footer: Footer{
			Enterprise:  "Votre entreprise - micro entreprise",
			FullAddress: "1 rue de l'exemple 62000 Arras",
		},
	}
}
