package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type (
	// Theme holds the colors and symbols of the grid.
	Theme struct {
		Background colorful.Color
		Foreground colorful.Color
		Muted      colorful.Color
		Flash      colorful.Color
		Rows       []colorful.Color
		Symbols    Symbols
	}

	Symbols struct {
		StepEmpty    string
		StepActive   string
		CursorEmpty  string
		CursorActive string
		Playhead     string
	}
)

// NewTheme spreads the hues of rows evenly around the HCL color wheel, so
// neighbouring rows are easy to tell apart.
func NewTheme(rows int) *Theme {
	t := &Theme{
		Background: colorful.Hcl(280, 0.2, 0.1).Clamped(),
		Foreground: colorful.Hcl(280, 0.1, 0.85).Clamped(),
		Muted:      colorful.Hcl(280, 0.15, 0.35).Clamped(),
		Flash:      colorful.Color{R: 1, G: 1, B: 1},
		Rows:       make([]colorful.Color, rows),
		Symbols: Symbols{
			StepEmpty:    "·",
			StepActive:   "●",
			CursorEmpty:  "○",
			CursorActive: "◉",
			Playhead:     "▼",
		},
	}
	for i := range t.Rows {
		hue := 360 * float64(i) / float64(max(rows, 1))
		t.Rows[i] = colorful.Hcl(hue, 0.7, 0.65).Clamped()
	}
	return t
}

// RowColor returns the color of an active cell of row, blended towards the
// flash color by flash, which runs from 0 (no flash) to 1.
func (t *Theme) RowColor(row int, flash float64) colorful.Color {
	if len(t.Rows) == 0 {
		return t.Foreground
	}
	c := t.Rows[row%len(t.Rows)]
	if flash <= 0 {
		return c
	}
	return c.BlendHcl(t.Flash, min(flash, 1)).Clamped()
}

func color(c colorful.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
