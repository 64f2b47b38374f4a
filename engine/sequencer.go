package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vsariola/gridseq"
	"github.com/vsariola/gridseq/logger"
	"k8s.io/utils/clock"
)

type (
	// Sequencer is the logic side of the engine: it owns the grid, the clock
	// and the scheduler, and advances them one tick at a time. Everything but
	// Ticks, Stats and the broker channels must be used from the goroutine
	// that calls Tick; the grid and the clock are never shared with the audio
	// goroutine, so they need no locking.
	Sequencer struct {
		grid      *gridseq.Grid
		clock     *gridseq.Clock
		scheduler *Scheduler
		broker    *Broker
		log       *logrus.Logger

		triggerFirstStep bool
		started          bool
		ticks            atomic.Uint64
		status           MixerStatus
		lastReport       Report
	}

	// SequencerOptions tune the behaviour of a Sequencer.
	SequencerOptions struct {
		// TriggerFirstStep makes the sequencer fire step 0 when it starts.
		// By default the sounds of step 0 are first heard when the clock
		// wraps around to it.
		TriggerFirstStep bool
	}

	// View is a read-only copy of the sequencer state, for drawing.
	View struct {
		Step      int
		StepCount int
		Rows      []gridseq.Row
		Mixer     MixerStatus
		Stats     SchedulerStats
		// LastReport is the report of the most recently fired step.
		LastReport Report
	}
)

// NewSequencer wires a sequencer around grid. The clock must have the same
// step count as the grid.
func NewSequencer(grid *gridseq.Grid, clk *gridseq.Clock, sounds gridseq.Registry, broker *Broker, opts SequencerOptions) (*Sequencer, error) {
	if grid == nil || clk == nil || broker == nil {
		return nil, errors.New("sequencer needs a grid, a clock and a broker")
	}
	if grid.StepCount() != clk.StepCount() {
		return nil, fmt.Errorf("grid has %d steps but clock has %d", grid.StepCount(), clk.StepCount())
	}
	return &Sequencer{
		grid:             grid,
		clock:            clk,
		scheduler:        NewScheduler(grid, sounds, broker),
		broker:           broker,
		log:              logger.GetProjectLogger(),
		triggerFirstStep: opts.TriggerFirstStep,
	}, nil
}

// Start marks the sequencer as running and, if TriggerFirstStep is set, fires
// step 0. It is called by the first Tick if it has not been called
// explicitly; calling it again does nothing.
func (s *Sequencer) Start() Report {
	if s.started {
		return Report{Step: s.clock.Step()}
	}
	s.started = true
	if !s.triggerFirstStep {
		return Report{Step: s.clock.Step()}
	}
	s.lastReport = s.scheduler.OnStepFired(s.clock.Step())
	return s.lastReport
}

// Tick runs one update cycle: apply pending commands, advance the clock and
// trigger the sounds of the step if one fired.
func (s *Sequencer) Tick() (step int, fired bool) {
	s.Start()
	s.processMessages()
	s.ticks.Add(1)
	step, fired = s.clock.Advance()
	if fired {
		s.lastReport = s.scheduler.OnStepFired(step)
	}
	s.receiveStatus()
	return step, fired
}

// Run calls Tick every interval, as measured by clk, until ctx is done.
func (s *Sequencer) Run(ctx context.Context, clk clock.Clock, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval should be > 0, got %v", interval)
	}
	s.log.WithFields(logrus.Fields{"interval": interval, "ticks_per_step": s.clock.TicksPerStep()}).Info("Sequencer started")
	t := clk.NewTimer(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Sequencer shutdown")
			return ctx.Err()
		case <-t.C():
			s.Tick()
			t.Reset(interval)
		}
	}
}

// Toggle flips a cell of the grid.
func (s *Sequencer) Toggle(row, step int) error {
	return s.grid.Toggle(row, step)
}

// SetSteps replaces the steps of a row.
func (s *Sequencer) SetSteps(row int, steps []bool) error {
	return s.grid.SetSteps(row, steps)
}

// TrySubmit queues a command (ToggleMsg, SetMsg, ClearMsg or StopAllMsg) to be
// applied at the next tick. It can be called from any goroutine and returns
// false if the command queue is full.
func (s *Sequencer) TrySubmit(msg any) bool {
	return TrySend(s.broker.ToSequencer, msg)
}

// StopAll silences every sound triggered so far, playing or still queued, from
// the next buffer of the mixer on. Sounds triggered afterwards play normally.
func (s *Sequencer) StopAll() {
	s.broker.RequestStop()
}

func (s *Sequencer) processMessages() {
	for {
		select {
		case msg := <-s.broker.ToSequencer:
			var err error
			switch m := msg.(type) {
			case ToggleMsg:
				err = s.grid.Toggle(m.Row, m.Step)
			case SetMsg:
				err = s.grid.Set(m.Row, m.Step, m.On)
			case ClearMsg:
				s.grid.Clear()
			case StopAllMsg:
				s.StopAll()
			default:
				err = fmt.Errorf("unknown command %T", msg)
			}
			if err != nil {
				s.log.Warnf("command rejected: %v", err)
			}
		default:
			return
		}
	}
}

// receiveStatus keeps only the latest status sent by the mixer.
func (s *Sequencer) receiveStatus() {
	for {
		select {
		case st := <-s.broker.ToModel:
			s.status = st
		default:
			return
		}
	}
}

// Step returns the current step of the clock.
func (s *Sequencer) Step() int {
	return s.clock.Step()
}

// LastReport returns the report of the most recently fired step.
func (s *Sequencer) LastReport() Report {
	return s.lastReport
}

// Grid returns the grid owned by the sequencer.
func (s *Sequencer) Grid() *gridseq.Grid {
	return s.grid
}

// Ticks returns the number of ticks run so far; it is safe to call from any
// goroutine.
func (s *Sequencer) Ticks() uint64 {
	return s.ticks.Load()
}

// Stats returns the scheduler counters; it is safe to call from any goroutine.
func (s *Sequencer) Stats() SchedulerStats {
	return s.scheduler.Stats()
}

// View copies the state needed to draw the sequencer.
func (s *Sequencer) View() View {
	v := View{
		Step:       s.clock.Step(),
		StepCount:  s.grid.StepCount(),
		Rows:       make([]gridseq.Row, s.grid.RowCount()),
		Mixer:      s.status,
		Stats:      s.scheduler.Stats(),
		LastReport: s.lastReport,
	}
	for i := range v.Rows {
		v.Rows[i], _ = s.grid.Row(i)
	}
	return v
}

// IsActive reports if the cell is on; out of range cells are off.
func (v View) IsActive(row, step int) bool {
	if row < 0 || row >= len(v.Rows) || step < 0 || step >= len(v.Rows[row].Steps) {
		return false
	}
	return v.Rows[row].Steps[step]
}

// RowCount returns the number of rows in the view.
func (v View) RowCount() int {
	return len(v.Rows)
}
