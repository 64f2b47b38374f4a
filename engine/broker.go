package engine

import (
	"sync/atomic"
	"time"
)

type (
	// Broker holds every channel between the goroutines of the engine: the
	// logic goroutine running the Sequencer and the audio goroutine running
	// the Mixer. All channels are bounded and both ends use non-blocking
	// operations, so neither side can stall the other.
	//
	// ToMixer is the intake of the mixer: freshly opened cursors, produced by
	// the Scheduler and consumed by the Mixer. Ownership of a cursor moves
	// with the send; the sender must not touch it afterwards.
	//
	// ToSequencer carries commands (ToggleMsg, SetMsg, ClearMsg, StopAllMsg)
	// from other goroutines, e.g. an input handler, to the Sequencer. They are
	// applied at the start of the next tick.
	//
	// A stop request bumps the stop epoch. Every cursor carries the epoch it
	// was opened in, and the mixer drops the cursors opened before the
	// latest stop, whether they are playing or still queued. Sounds
	// triggered after the request play normally.
	Broker struct {
		ToMixer     chan *Cursor
		ToModel     chan MixerStatus
		ToSequencer chan any

		stopEpoch atomic.Uint64
	}

	// MixerStatus is sent by the mixer after every rendered buffer. It is a
	// plain value so sending it does not allocate.
	MixerStatus struct {
		Frames  int     // frames rendered in the last buffer
		Live    int     // cursors playing after the last buffer
		Retired uint64  // cursors retired since the mixer was created
		Faulted uint64  // cursors retired because of a read error
		Stopped uint64  // cursors dropped by stop requests
		Level   float32 // RMS level of the last buffer
	}

	// ToggleMsg flips a cell of the grid.
	ToggleMsg struct{ Row, Step int }
	// SetMsg turns a cell on or off.
	SetMsg struct {
		Row, Step int
		On        bool
	}
	// ClearMsg turns every cell off.
	ClearMsg struct{}
	// StopAllMsg silences every playing sound.
	StopAllMsg struct{}
)

const (
	DefaultIntakeCapacity = 64
	statusCapacity        = 64
	commandCapacity       = 256
)

// NewBroker creates a broker whose intake holds up to intakeCapacity cursors.
// A non-positive capacity selects DefaultIntakeCapacity.
func NewBroker(intakeCapacity int) *Broker {
	if intakeCapacity <= 0 {
		intakeCapacity = DefaultIntakeCapacity
	}
	return &Broker{
		ToMixer:     make(chan *Cursor, intakeCapacity),
		ToModel:     make(chan MixerStatus, statusCapacity),
		ToSequencer: make(chan any, commandCapacity),
	}
}

// RequestStop asks the mixer to drop every cursor opened so far and returns
// the new stop epoch. It can be called from any goroutine.
func (b *Broker) RequestStop() uint64 {
	return b.stopEpoch.Add(1)
}

// StopEpoch returns the number of stop requests made so far.
func (b *Broker) StopEpoch() uint64 {
	return b.stopEpoch.Load()
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive waits at most t for a value from c. ok is false on timeout
// and when c is closed; output drivers use it to wait for their render
// goroutine on shutdown.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
