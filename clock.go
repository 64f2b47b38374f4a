package gridseq

import "fmt"

// Clock is the step cursor of the sequencer. It is advanced once per logic
// tick and moves to the next step every TicksPerStep ticks, wrapping around
// at the end of the pattern. The tempo is governed by the tick count only;
// there is no wall clock drift correction.
type Clock struct {
	step           int
	ticksSinceStep int
	ticksPerStep   int
	stepCount      int
}

// NewClock returns a clock positioned at step 0.
func NewClock(stepCount, ticksPerStep int) (*Clock, error) {
	if stepCount < 1 {
		return nil, fmt.Errorf("step count should be > 0, got %d", stepCount)
	}
	if ticksPerStep < 1 {
		return nil, fmt.Errorf("ticks per step should be > 0, got %d", ticksPerStep)
	}
	return &Clock{stepCount: stepCount, ticksPerStep: ticksPerStep}, nil
}

// Advance counts one tick. When the tick completes a step, the clock moves to
// the next step and returns it with fired = true.
func (c *Clock) Advance() (step int, fired bool) {
	c.ticksSinceStep++
	if c.ticksSinceStep < c.ticksPerStep {
		return c.step, false
	}
	c.ticksSinceStep = 0
	c.step = (c.step + 1) % c.stepCount
	return c.step, true
}

// Step returns the current step index, always in [0, StepCount()).
func (c *Clock) Step() int {
	return c.step
}

// StepCount returns the pattern length the clock wraps at.
func (c *Clock) StepCount() int {
	return c.stepCount
}

// TicksPerStep returns the number of ticks between two fired steps.
func (c *Clock) TicksPerStep() int {
	return c.ticksPerStep
}

// TicksSinceStep returns the ticks counted since the last fired step.
func (c *Clock) TicksSinceStep() int {
	return c.ticksSinceStep
}
