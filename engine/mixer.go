package engine

import (
	"errors"
	"io"
	"math"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/gridseq"
)

type (
	// Mixer is the render path of the engine. It is run by the audio output
	// driver in its own goroutine: every call to Render pulls the cursors the
	// scheduler has sent, sums their samples into the output buffer and drops
	// the cursors that have ended.
	//
	// Render never blocks, never allocates and never fails: the live set, the
	// scratch buffer and the list of retired cursors are sized when the mixer
	// is created, and a source that errors is simply retired.
	Mixer struct {
		format  gridseq.Format
		broker  *Broker
		live    []*Cursor
		retired []int
		scratch []float32
		epoch   uint64

		retiredTotal uint64
		faultedTotal uint64
		stoppedTotal uint64
	}

	// MixerOptions sizes the preallocated state of a Mixer.
	MixerOptions struct {
		// MaxVoices bounds the number of cursors playing at once. Cursors
		// arriving when the mixer is full wait in the intake.
		MaxVoices int
		// ChunkFrames is the size of the scratch buffer, in frames. Output
		// buffers larger than this are mixed in several chunks.
		ChunkFrames int
	}
)

const (
	DefaultMaxVoices   = 64
	DefaultChunkFrames = 1024
)

// NewMixer creates a mixer for buffers of the given format, receiving cursors
// from the broker.
func NewMixer(broker *Broker, format gridseq.Format, opts MixerOptions) *Mixer {
	if opts.MaxVoices <= 0 {
		opts.MaxVoices = DefaultMaxVoices
	}
	if opts.ChunkFrames <= 0 {
		opts.ChunkFrames = DefaultChunkFrames
	}
	if format.Channels <= 0 {
		format.Channels = gridseq.DefaultFormat.Channels
	}
	return &Mixer{
		format:  format,
		broker:  broker,
		live:    make([]*Cursor, 0, opts.MaxVoices),
		retired: make([]int, 0, opts.MaxVoices),
		scratch: make([]float32, format.Samples(opts.ChunkFrames)),
	}
}

// Format returns the buffer format the mixer renders.
func (m *Mixer) Format() gridseq.Format {
	return m.format
}

// Live returns the number of cursors currently playing. Like Render, it
// should only be called from the audio goroutine.
func (m *Mixer) Live() int {
	return len(m.live)
}

// pending reports if any cursor is playing or waiting in the intake.
func (m *Mixer) pending() bool {
	return len(m.live) > 0 || len(m.broker.ToMixer) > 0
}

// Render clears buffer and mixes every playing sound into it. The length of
// buffer should be a multiple of the channel count; a trailing partial frame
// is left silent.
func (m *Mixer) Render(buffer []float32) {
	clear(buffer)
	m.Mix(buffer)
}

// Mix works like Render but adds the sounds on top of what buffer already
// contains.
func (m *Mixer) Mix(buffer []float32) {
	if e := m.broker.StopEpoch(); e != m.epoch {
		m.epoch = e
		m.dropStopped()
	}
	m.receive()
	frames := m.format.Frames(buffer)
	out := buffer[:m.format.Samples(frames)]
	m.retired = m.retired[:0]
	for i, c := range m.live {
		if !m.mixCursor(c, out) {
			m.retired = append(m.retired, i)
		}
	}
	m.retire()
	TrySend(m.broker.ToModel, MixerStatus{
		Frames:  frames,
		Live:    len(m.live),
		Retired: m.retiredTotal,
		Faulted: m.faultedTotal,
		Stopped: m.stoppedTotal,
		Level:   rms(out),
	})
}

// receive moves cursors from the intake into the live set, as long as the
// live set has room. Cursors opened before the latest stop are dropped.
func (m *Mixer) receive() {
	for len(m.live) < cap(m.live) {
		select {
		case c := <-m.broker.ToMixer:
			switch {
			case c == nil:
			case c.epoch < m.epoch:
				m.stoppedTotal++
			default:
				m.live = append(m.live, c)
			}
		default:
			return
		}
	}
}

// mixCursor adds the next len(out) samples of c into out. It returns false
// once the cursor has ended.
func (m *Mixer) mixCursor(c *Cursor, out []float32) bool {
	ch := m.format.Channels
	for len(out) > 0 {
		chunk := min(len(out), len(m.scratch))
		wanted := chunk / ch
		n, err := c.read(m.scratch[:chunk], wanted)
		if n > 0 {
			vek32.Add_Inplace(out[:n*ch], m.scratch[:n*ch])
		}
		if err != nil && !errors.Is(err, io.EOF) {
			m.faultedTotal++
		}
		if c.Exhausted() {
			return false
		}
		out = out[chunk:]
	}
	return true
}

// retire removes the cursors listed in m.retired, keeping the order of the
// survivors.
func (m *Mixer) retire() {
	if len(m.retired) == 0 {
		return
	}
	j, r := 0, 0
	for i, c := range m.live {
		if r < len(m.retired) && m.retired[r] == i {
			r++
			continue
		}
		m.live[j] = c
		j++
	}
	for k := j; k < len(m.live); k++ {
		m.live[k] = nil
	}
	m.live = m.live[:j]
	m.retiredTotal += uint64(len(m.retired))
	m.retired = m.retired[:0]
}

// dropStopped removes the live cursors opened before the latest stop,
// keeping the order of the others.
func (m *Mixer) dropStopped() {
	j := 0
	for _, c := range m.live {
		if c.epoch < m.epoch {
			continue
		}
		m.live[j] = c
		j++
	}
	for k := j; k < len(m.live); k++ {
		m.live[k] = nil
	}
	m.stoppedTotal += uint64(len(m.live) - j)
	m.live = m.live[:j]
}

func rms(buffer []float32) float32 {
	if len(buffer) == 0 {
		return 0
	}
	return float32(math.Sqrt(float64(vek32.Dot(buffer, buffer)) / float64(len(buffer))))
}
