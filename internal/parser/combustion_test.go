package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombustionCapture(t *testing.T) {
	ends := func(line string) bool { return line == "stop" }

	var c combustionCapture
	assert.Equal(t, modeNormal, c.mode)
	assert.False(t, c.consume("CO 10 ppm", ends), "normal mode never consumes")

	c.start()
	assert.Equal(t, modeCombustion, c.mode)
	assert.True(t, c.consume("CO 10 ppm", ends))
	assert.True(t, c.consume("O2 4 %", ends))

	assert.False(t, c.consume("stop", ends), "a breaking line is left for the rules")
	assert.Equal(t, modeNormal, c.mode)
	assert.False(t, c.consume("CO2 9 %", ends))

	assert.Equal(t, []string{"CO 10 ppm", "O2 4 %"}, c.lines)
}

func TestEndsCombustion(t *testing.T) {
	p := New()
	tests := []struct {
		line string
		want bool
	}{
		{"Combustion", true},
		{"combustion", true},
		{"14/03/2024", true},
		{"1/3/2024", true},
		{"Intervention chaufferie", true},
		{"Vanne 20€", true},
		{"Tube 2*3€ 6", true},
		{"CO 12 ppm", false},
		{"O2 5,2 %", false},
		{"T fumées 110 °C", false},
		{"Tirage -12 Pa", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, p.endsCombustion(tt.line))
		})
	}
}

func TestCaptureModeString(t *testing.T) {
	assert.Equal(t, "normal", modeNormal.String())
	assert.Equal(t, "combustion", modeCombustion.String())
	assert.Equal(t, "unknown", captureMode(9).String())
}
