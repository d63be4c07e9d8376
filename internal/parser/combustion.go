package parser

// captureMode is the state of the combustion block reader.
type captureMode int

const (
	modeNormal captureMode = iota
	modeCombustion
)

func (m captureMode) String() string {
	switch m {
	case modeNormal:
		return "normal"
	case modeCombustion:
		return "combustion"
	default:
		return "unknown"
	}
}

// combustionCapture collects the readings that follow a "Combustion" line.
//
// Transitions:
//
//	normal     --"Combustion"--------------------------> combustion
//	combustion --date | item | Intervention | "Combustion"--> normal (line is reclassified)
//	combustion --anything else-------------------------> combustion (line is a reading)
type combustionCapture struct {
	mode  captureMode
	lines []string
}

func (c *combustionCapture) start() {
	c.mode = modeCombustion
}

// consume reports whether line was recorded as a reading. When ends reports
// that line opens something else, capture stops and the line is left to the
// normal rules.
func (c *combustionCapture) consume(line string, ends func(string) bool) bool {
	if c.mode != modeCombustion {
		return false
	}
	if ends(line) {
		c.mode = modeNormal
		return false
	}
	c.lines = append(c.lines, line)
	return true
}
