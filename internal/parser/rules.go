package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"facturier/pkg/models"
)

// noDate tags items and details written before any date.
const noDate = "-"

var (
	dateRegex         = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	interventionRegex = regexp.MustCompile(`(?i)^intervention\s+(.*)$`)
	combustionRegex   = regexp.MustCompile(`(?i)^combustion$`)
)

// state is the context accumulated while walking the lines of one email.
type state struct {
	date    string
	place   string
	dates   []string
	seen    map[string]bool
	details []models.DetailEntry
	items   []models.LineItem
	capture combustionCapture
}

func newState() *state {
	return &state{
		date:    noDate,
		seen:    make(map[string]bool),
		details: []models.DetailEntry{},
		items:   []models.LineItem{},
	}
}

func (s *state) setDate(date string) {
	s.date = date
	if !s.seen[date] {
		s.seen[date] = true
		s.dates = append(s.dates, date)
	}
}

// rule handles a line and reports whether it did.
type rule struct {
	name  string
	apply func(p *Parser, s *state, line string) bool
}

// rules are evaluated top to bottom; the first one to apply wins. The detail
// rule always applies, so every line lands somewhere.
var rules = []rule{
	{"combustion", (*Parser).startCombustion},
	{"date", (*Parser).markDate},
	{"intervention", (*Parser).markPlace},
	{"item", (*Parser).addItem},
	{"detail", (*Parser).addDetail},
}

func (p *Parser) startCombustion(s *state, line string) bool {
	if !combustionRegex.MatchString(line) {
		return false
	}
	s.capture.start()
	return true
}

func (p *Parser) markDate(s *state, line string) bool {
	date, ok := normalizeDate(line)
	if !ok {
		return false
	}
	s.setDate(date)
	return true
}

func (p *Parser) markPlace(s *state, line string) bool {
	place, ok := interventionPlace(line)
	if !ok {
		return false
	}
	s.place = place
	return true
}

func (p *Parser) addItem(s *state, line string) bool {
	item, pattern, ok := p.matchItem(line)
	if !ok {
		return false
	}
	item.Date = s.date
	s.items = append(s.items, item)

	p.log.Debug().
		Str("pattern", pattern).
		Str("description", item.Description).
		Str("total", item.Total).
		Msg("Item line matched")
	return true
}

func (p *Parser) addDetail(s *state, line string) bool {
	if p.grouping == GroupByDate && len(s.details) > 0 {
		last := &s.details[len(s.details)-1]
		if last.Date == s.date {
			last.Text += "\n" + line
			return true
		}
	}
	s.details = append(s.details, models.DetailEntry{Date: s.date, Text: line})
	return true
}

// endsCombustion reports whether line opens something a combustion reading
// cannot be: a date, an intervention marker, an item or a new block.
func (p *Parser) endsCombustion(line string) bool {
	if combustionRegex.MatchString(line) || dateRegex.MatchString(line) {
		return true
	}
	if _, ok := interventionPlace(line); ok {
		return true
	}
	_, _, ok := p.matchItem(line)
	return ok
}

// normalizeDate validates a D/M/YYYY marker and zero-pads it to DD/MM/YYYY.
func normalizeDate(line string) (string, bool) {
	m := dateRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d/%02d/%s", day, month, m[3]), true
}

func interventionPlace(line string) (string, bool) {
	m := interventionRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
