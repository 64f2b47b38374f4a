package gridseq

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Grid is the pattern: a fixed set of rows, each with the same number of
	// on/off steps. The step count is fixed when the grid is created. Grid has
	// no knowledge of timing or audio; it is not safe for concurrent use and
	// is meant to be owned by the logic goroutine.
	Grid struct {
		rows  []Row
		steps int
	}

	// Row is one instrument track of the grid: the identifier of the sound it
	// triggers and its on/off steps.
	Row struct {
		Sound string
		Steps []bool
	}
)

// MaxSteps bounds the pattern length to keep the grid drawable.
const MaxSteps = 256

// NewGrid creates a grid with one row per sound and all steps off.
func NewGrid(sounds []string, steps int) (*Grid, error) {
	if steps < 1 || steps > MaxSteps {
		return nil, fmt.Errorf("step count should be in [1, %d], got %d", MaxSteps, steps)
	}
	if len(sounds) == 0 {
		return nil, errors.New("grid needs at least one row")
	}
	g := &Grid{rows: make([]Row, len(sounds)), steps: steps}
	for i, s := range sounds {
		g.rows[i] = Row{Sound: s, Steps: make([]bool, steps)}
	}
	return g, nil
}

// RowCount returns the number of rows in the grid.
func (g *Grid) RowCount() int {
	return len(g.rows)
}

// StepCount returns the number of steps in every row.
func (g *Grid) StepCount() int {
	return g.steps
}

func (g *Grid) check(row, step int) error {
	if row < 0 || row >= len(g.rows) {
		return fmt.Errorf("row %d of %d: %w", row, len(g.rows), ErrOutOfRange)
	}
	if step < 0 || step >= g.steps {
		return fmt.Errorf("step %d of %d: %w", step, g.steps, ErrOutOfRange)
	}
	return nil
}

// Toggle flips the cell at (row, step).
func (g *Grid) Toggle(row, step int) error {
	if err := g.check(row, step); err != nil {
		return err
	}
	g.rows[row].Steps[step] = !g.rows[row].Steps[step]
	return nil
}

// Set turns the cell at (row, step) on or off.
func (g *Grid) Set(row, step int, on bool) error {
	if err := g.check(row, step); err != nil {
		return err
	}
	g.rows[row].Steps[step] = on
	return nil
}

// IsActive reports whether the cell at (row, step) is on.
func (g *Grid) IsActive(row, step int) (bool, error) {
	if err := g.check(row, step); err != nil {
		return false, err
	}
	return g.rows[row].Steps[step], nil
}

// Row returns a copy of a row; mutating the copy does not affect the grid.
func (g *Grid) Row(row int) (Row, error) {
	if row < 0 || row >= len(g.rows) {
		return Row{}, fmt.Errorf("row %d of %d: %w", row, len(g.rows), ErrOutOfRange)
	}
	r := g.rows[row]
	steps := make([]bool, len(r.Steps))
	copy(steps, r.Steps)
	return Row{Sound: r.Sound, Steps: steps}, nil
}

// Clear turns every cell off.
func (g *Grid) Clear() {
	for i := range g.rows {
		clear(g.rows[i].Steps)
	}
}

// SetSteps overwrites a row with steps; steps beyond the length of the grid
// are ignored and missing steps are turned off.
func (g *Grid) SetSteps(row int, steps []bool) error {
	if row < 0 || row >= len(g.rows) {
		return fmt.Errorf("row %d of %d: %w", row, len(g.rows), ErrOutOfRange)
	}
	dst := g.rows[row].Steps
	clear(dst)
	copy(dst, steps)
	return nil
}

// StepString renders a row in the notation accepted by ParseSteps, e.g.
// "x...x...".
func (g *Grid) StepString(row int) string {
	if row < 0 || row >= len(g.rows) {
		return ""
	}
	var b strings.Builder
	for _, on := range g.rows[row].Steps {
		if on {
			b.WriteByte('x')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// ParseSteps parses step notation: x, X, 1 and * are on; ., -, 0, _ and
// space are off. Vertical bars can be used to group beats and are skipped.
func ParseSteps(s string) ([]bool, error) {
	ret := make([]bool, 0, len(s))
	for i, c := range s {
		switch c {
		case 'x', 'X', '1', '*':
			ret = append(ret, true)
		case '.', '-', '0', '_', ' ':
			ret = append(ret, false)
		case '|':
		default:
			return nil, fmt.Errorf("invalid step character %q at %d", c, i)
		}
	}
	return ret, nil
}
