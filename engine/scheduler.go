package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/vsariola/gridseq"
	"github.com/vsariola/gridseq/logger"
)

type (
	// Scheduler turns fired steps into cursors for the mixer. It runs on the
	// logic goroutine together with the clock, so it never blocks: a trigger
	// that does not fit into the intake is dropped and counted as missed.
	Scheduler struct {
		grid   *gridseq.Grid
		sounds gridseq.Registry
		broker *Broker
		log    *logrus.Logger

		submitted   atomic.Uint64
		missed      atomic.Uint64
		unavailable atomic.Uint64
	}

	// Report tells what happened to every active row of a fired step. The
	// slices list row indices in grid order.
	Report struct {
		Step        int
		Submitted   []int
		Missed      []int
		Unavailable []int
	}

	// SchedulerStats are the cumulative counters of a Scheduler.
	SchedulerStats struct {
		Submitted   uint64
		Missed      uint64
		Unavailable uint64
	}
)

// NewScheduler creates a scheduler reading the grid, opening sounds from the
// registry and sending cursors to the intake of the broker.
func NewScheduler(grid *gridseq.Grid, sounds gridseq.Registry, broker *Broker) *Scheduler {
	return &Scheduler{
		grid:   grid,
		sounds: sounds,
		broker: broker,
		log:    logger.GetProjectLogger(),
	}
}

// OnStepFired opens a new cursor for every row active at step and submits
// them in row order. All of them belong to the same logical tick.
func (s *Scheduler) OnStepFired(step int) Report {
	report := Report{Step: step}
	for row := 0; row < s.grid.RowCount(); row++ {
		active, err := s.grid.IsActive(row, step)
		if err != nil || !active {
			continue
		}
		cursor, err := s.open(row, step)
		if err != nil {
			s.unavailable.Add(1)
			report.Unavailable = append(report.Unavailable, row)
			s.log.WithFields(logrus.Fields{"row": row, "step": step}).Warnf("skipping trigger: %v", err)
			continue
		}
		if !TrySend(s.broker.ToMixer, cursor) {
			s.missed.Add(1)
			report.Missed = append(report.Missed, row)
			s.log.WithFields(logrus.Fields{"row": row, "step": step}).Debug("mixer intake full, trigger missed")
			continue
		}
		s.submitted.Add(1)
		report.Submitted = append(report.Submitted, row)
	}
	return report
}

func (s *Scheduler) open(row, step int) (*Cursor, error) {
	if s.sounds == nil {
		return nil, fmt.Errorf("row %d: no registry: %w", row, gridseq.ErrSourceUnavailable)
	}
	factory, err := s.sounds.Sound(row)
	if err != nil {
		if errors.Is(err, gridseq.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("row %d: %w: %w", row, gridseq.ErrSourceUnavailable, err)
	}
	if factory == nil {
		return nil, fmt.Errorf("row %d: no sound: %w", row, gridseq.ErrSourceUnavailable)
	}
	source, err := factory.Open()
	if err != nil {
		return nil, fmt.Errorf("row %d: %w: %w", row, gridseq.ErrSourceUnavailable, err)
	}
	if source == nil {
		return nil, fmt.Errorf("row %d: sound opened no stream: %w", row, gridseq.ErrSourceUnavailable)
	}
	c := NewCursor(row, step, source)
	c.epoch = s.broker.StopEpoch()
	return c, nil
}

// Stats returns the cumulative counters. It is safe to call from any
// goroutine.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Submitted:   s.submitted.Load(),
		Missed:      s.missed.Load(),
		Unavailable: s.unavailable.Load(),
	}
}
