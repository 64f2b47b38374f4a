package engine

import (
	"github.com/vsariola/gridseq"
)

// Cursor is one playing instance of a sound. Every trigger creates a new
// cursor over a freshly opened source, so many cursors may play the same
// sound at once without sharing a read position. A cursor is owned by the
// scheduler until it is sent to the mixer, and by the mixer from then on.
type Cursor struct {
	Row  int // row of the grid that triggered the cursor
	Step int // step at which it was triggered

	source    gridseq.AudioSource
	epoch     uint64 // stop epoch the cursor was opened in
	frames    int
	exhausted bool
}

// NewCursor wraps a source positioned at its start. The cursor belongs to
// stop epoch 0; a cursor opened by the scheduler belongs to the epoch current
// at the time of the trigger.
func NewCursor(row, step int, source gridseq.AudioSource) *Cursor {
	return &Cursor{Row: row, Step: step, source: source}
}

// FramesEmitted returns how many frames the cursor has produced so far.
func (c *Cursor) FramesEmitted() int {
	return c.frames
}

// Exhausted reports if the source has ended. An exhausted cursor is never
// read again.
func (c *Cursor) Exhausted() bool {
	return c.exhausted
}

// read fills buffer with at most wanted frames. It marks the cursor exhausted
// on a short read or any error; the returned frame count is clamped to what
// was asked for.
func (c *Cursor) read(buffer []float32, wanted int) (int, error) {
	if c.exhausted || c.source == nil {
		c.exhausted = true
		return 0, nil
	}
	n, err := c.source.ReadAudio(buffer)
	if n < 0 {
		n = 0
	} else if n > wanted {
		n = wanted
	}
	c.frames += n
	if n < wanted || err != nil {
		c.exhausted = true
	}
	return n, err
}
