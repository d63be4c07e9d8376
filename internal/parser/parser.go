// Package parser turns the free-form text of a job email into an invoice record.
//
// Expected layout of the email:
//   - line 1: client name
//   - line 2: client address, street and "postal code + city" possibly on one line
//   - line 3: starting context, usually the intervention date
//   - remaining lines, in any order: dates (DD/MM/YYYY), "Intervention <place>",
//     priced lines ("Remplacement vanne 45€", "Main d'oeuvre 1h30*40€ 60€"),
//     a "Combustion" block of readings, and free-text notes.
//
// Parsing never fails. Lines that match no rule end up as notes, missing
// fields get placeholders, and malformed numbers read as zero.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"facturier/pkg/models"
)

const (
	unknownClient  = "Client inconnu"
	unknownAddress = "Adresse inconnue"
)

var postalCodeRegex = regexp.MustCompile(`\s(\d{5})\b`)

// DetailGrouping decides how consecutive notes written under one date are stored.
type DetailGrouping int

const (
	// GroupByDate appends a note to the previous entry when both share a date.
	GroupByDate DetailGrouping = iota
	// GroupPerLine stores every note line as its own entry.
	GroupPerLine
)

func (g DetailGrouping) String() string {
	switch g {
	case GroupByDate:
		return "date"
	case GroupPerLine:
		return "line"
	default:
		return "unknown"
	}
}

// ParseDetailGrouping reads "date" or "line".
func ParseDetailGrouping(s string) (DetailGrouping, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date", "":
		return GroupByDate, nil
	case "line":
		return GroupPerLine, nil
	default:
		return GroupByDate, fmt.Errorf("unknown detail grouping %q (want date or line)", s)
	}
}

// Option configures a Parser.
type Option func(*Parser)

// WithOrganization sets the sender, payment and footer constants copied into every record.
func WithOrganization(org models.Organization) Option {
	return func(p *Parser) { p.org = org }
}

// WithDetailGrouping sets the note grouping policy. Default: GroupByDate.
func WithDetailGrouping(g DetailGrouping) Option {
	return func(p *Parser) { p.grouping = g }
}

// WithBareMultiplierUnit sets the unit of "qty*price€ total" lines. Default: "m".
func WithBareMultiplierUnit(unit string) Option {
	return func(p *Parser) {
		if unit = strings.TrimSpace(unit); unit != "" {
			p.bareUnit = unit
		}
	}
}

// WithLogger sets the logger used for per-line debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// Parser classifies email lines. It holds configuration only and is safe for
// concurrent use.
type Parser struct {
	org      models.Organization
	grouping DetailGrouping
	bareUnit string
	log      zerolog.Logger
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		org:      models.DefaultOrganization(),
		grouping: GroupByDate,
		bareUnit: "m",
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses raw with the default configuration.
func Parse(raw string) models.InvoiceRecord {
	return New().Parse(raw)
}

// Parse builds an invoice record from raw. Identical input yields an identical record.
func (p *Parser) Parse(raw string) models.InvoiceRecord {
	lines := splitLines(raw)
	s := newState()

	clientName := lineAt(lines, 0, unknownClient)
	clientAddress := splitPostalCode(lineAt(lines, 1, unknownAddress))

	if len(lines) > 2 {
		p.seed(s, lines[2])
	}
	for i := 3; i < len(lines); i++ {
		p.classify(s, lines[i])
	}

	place := s.place
	if place == "" {
		place = clientAddress
	}
	header := "Intervention " + place
	if len(s.dates) > 0 {
		header += " " + strings.Join(s.dates, ", ")
	}

	combustion := s.capture.lines
	if combustion == nil {
		combustion = []string{}
	}
	dates := s.dates
	if dates == nil {
		dates = []string{}
	}

	p.log.Debug().
		Int("lines", len(lines)).
		Int("items", len(s.items)).
		Int("details", len(s.details)).
		Int("combustion_lines", len(combustion)).
		Msg("Email parsed")

	return models.InvoiceRecord{
		ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte(raw)).String(),
		OperationType: p.org.OperationType,
		Sender:        p.org.Sender,
		Client: models.Client{
			Name:    clientName,
			Address: clientAddress,
		},
		Intervention: models.Intervention{
			Place:   place,
			Header:  header,
			Date:    s.date,
			Dates:   dates,
			Details: s.details,
		},
		Items:      s.items,
		Combustion: models.Combustion{Lines: combustion},
		Payment:    p.org.Payment,
		Footer:     p.org.Footer,
	}
}

// seed applies the third line. A date or intervention marker is honoured;
// anything else is kept verbatim as the starting date context.
func (p *Parser) seed(s *state, line string) {
	if p.markDate(s, line) || p.markPlace(s, line) {
		return
	}
	s.setDate(line)
}

func (p *Parser) classify(s *state, line string) {
	if s.capture.consume(line, p.endsCombustion) {
		p.log.Debug().Str("rule", "combustion-reading").Str("line", line).Msg("Line classified")
		return
	}
	for _, r := range rules {
		if r.apply(p, s, line) {
			p.log.Debug().
				Str("rule", r.name).
				Str("mode", s.capture.mode.String()).
				Str("line", line).
				Msg("Line classified")
			return
		}
	}
}

// splitLines returns the trimmed, non-blank lines of raw.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func lineAt(lines []string, i int, fallback string) string {
	if i < len(lines) {
		return lines[i]
	}
	return fallback
}

// splitPostalCode puts the first 5-digit postal code on its own line:
// "2 bis rue des dominicains 62000 Arras" -> "2 bis rue des dominicains\n62000 Arras".
func splitPostalCode(address string) string {
	loc := postalCodeRegex.FindStringSubmatchIndex(address)
	if loc == nil {
		return address
	}
	return address[:loc[0]] + "\n" + address[loc[2]:]
}
