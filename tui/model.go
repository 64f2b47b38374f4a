// Package tui is the terminal front end of gridseq. The bubbletea update loop
// is the logic goroutine of the engine: it runs the sequencer ticks, so the
// model may read and edit the grid directly.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fogleman/ease"
	"github.com/vsariola/gridseq/engine"
	"k8s.io/utils/clock"
)

const (
	flashDuration = 150 * time.Millisecond
	// maxCatchUp bounds the ticks run for one message; if the loop falls
	// further behind, the missed time is skipped.
	maxCatchUp = 64
)

type (
	Model struct {
		seq      *engine.Sequencer
		theme    *Theme
		clock    clock.PassiveClock
		interval time.Duration

		last    time.Time
		row     int
		step    int
		flashes []time.Time
		view    engine.View
		status  string
	}

	// TickMsg asks the model to run the logic ticks due by now.
	TickMsg time.Time
)

// NewModel creates a model driving seq, one logic tick per interval as
// measured by clk.
func NewModel(seq *engine.Sequencer, th *Theme, clk clock.PassiveClock, interval time.Duration) Model {
	m := Model{
		seq:      seq,
		theme:    th,
		clock:    clk,
		interval: interval,
		last:     clk.Now(),
		flashes:  make([]time.Time, seq.Grid().RowCount()),
	}
	m.flashReport(seq.Start(), m.last)
	m.view = seq.View()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.step = (m.step + m.view.StepCount - 1) % m.view.StepCount
		case "right", "l":
			m.step = (m.step + 1) % m.view.StepCount
		case "up", "k":
			m.row = (m.row + m.view.RowCount() - 1) % m.view.RowCount()
		case "down", "j":
			m.row = (m.row + 1) % m.view.RowCount()
		case " ", "space", "enter":
			if err := m.seq.Toggle(m.row, m.step); err != nil {
				m.status = err.Error()
			}
		case "s":
			m.seq.StopAll()
			m.status = "stopped all sounds"
		case "c":
			m.seq.Grid().Clear()
			m.status = "cleared"
		}
		m.view = m.seq.View()
	case TickMsg:
		m.advance()
		m.view = m.seq.View()
		return m, m.tick()
	}
	return m, nil
}

// advance runs the ticks that have become due since the last call.
func (m *Model) advance() {
	now := m.clock.Now()
	n := int(now.Sub(m.last) / m.interval)
	if n > maxCatchUp {
		m.last = now
		n = maxCatchUp
	} else {
		m.last = m.last.Add(time.Duration(n) * m.interval)
	}
	for i := 0; i < n; i++ {
		if _, fired := m.seq.Tick(); fired {
			m.flashReport(m.seq.LastReport(), now)
		}
	}
}

func (m *Model) flashReport(r engine.Report, at time.Time) {
	for _, row := range r.Submitted {
		if row >= 0 && row < len(m.flashes) {
			m.flashes[row] = at
		}
	}
}

// flash returns how bright the trigger flash of row is now, from 1 right after
// the trigger down to 0.
func (m Model) flash(row int) float64 {
	if row < 0 || row >= len(m.flashes) || m.flashes[row].IsZero() {
		return 0
	}
	t := float64(m.clock.Since(m.flashes[row])) / float64(flashDuration)
	if t < 0 || t >= 1 {
		return 0
	}
	return 1 - ease.OutQuad(t)
}

// Cursor returns the edit cursor position.
func (m Model) Cursor() (row, step int) {
	return m.row, m.step
}

func (m Model) View() string {
	v := m.view
	base := lipgloss.NewStyle().Background(color(m.theme.Background))
	muted := base.Foreground(color(m.theme.Muted))
	fg := base.Foreground(color(m.theme.Foreground))
	nameWidth := 0
	for _, r := range v.Rows {
		nameWidth = max(nameWidth, len(r.Sound))
	}
	var b strings.Builder
	b.WriteString(fg.Render(strings.Repeat(" ", nameWidth+1)))
	for s := 0; s < v.StepCount; s++ {
		if s == v.Step {
			b.WriteString(fg.Render(m.theme.Symbols.Playhead))
		} else {
			b.WriteString(fg.Render(" "))
		}
	}
	b.WriteString("\n")
	for r, row := range v.Rows {
		b.WriteString(fg.Render(fmt.Sprintf("%-*s ", nameWidth, row.Sound)))
		active := base.Foreground(color(m.theme.RowColor(r, m.flash(r))))
		for s, on := range row.Steps {
			cursor := r == m.row && s == m.step
			switch {
			case on && cursor:
				b.WriteString(active.Render(m.theme.Symbols.CursorActive))
			case on:
				b.WriteString(active.Render(m.theme.Symbols.StepActive))
			case cursor:
				b.WriteString(fg.Render(m.theme.Symbols.CursorEmpty))
			case s%4 == 0:
				b.WriteString(fg.Render(m.theme.Symbols.StepEmpty))
			default:
				b.WriteString(muted.Render(m.theme.Symbols.StepEmpty))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("voices %d  level %.2f  submitted %d  missed %d  unavailable %d",
		v.Mixer.Live, v.Mixer.Level, v.Stats.Submitted, v.Stats.Missed, v.Stats.Unavailable)))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(fg.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(muted.Render("←↓↑→/hjkl move  space toggle  c clear  s stop  q quit"))
	b.WriteString("\n")
	return b.String()
}
