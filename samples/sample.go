// Package samples is the sound bank of gridseq: it decodes sample files once,
// converts them to the output format and hands out independent readers over
// the decoded data, one per trigger.
package samples

import (
	"fmt"
	"io"
	"math"

	"github.com/vsariola/gridseq"
)

type (
	// Sample is a decoded sound held in memory, in the output format. It is
	// read-only after creation, so any number of Readers can play it at the
	// same time from different goroutines.
	Sample struct {
		Name   string
		format gridseq.Format
		data   []float32
	}

	// Reader plays a Sample from the start. It implements gridseq.AudioSource.
	Reader struct {
		sample *Sample
		pos    int
	}
)

// NewSample wraps interleaved data; a trailing partial frame is dropped.
func NewSample(name string, format gridseq.Format, data []float32) (*Sample, error) {
	if format.Channels < 1 || format.SampleRate < 1 {
		return nil, fmt.Errorf("invalid format %+v for sample %q", format, name)
	}
	n := len(data) / format.Channels * format.Channels
	return &Sample{Name: name, format: format, data: data[:n]}, nil
}

// Open returns a new Reader positioned at the first frame.
func (s *Sample) Open() (gridseq.AudioSource, error) {
	return &Reader{sample: s}, nil
}

// Frames returns the length of the sample in frames.
func (s *Sample) Frames() int {
	return len(s.data) / s.format.Channels
}

// Format returns the format the sample was converted to.
func (s *Sample) Format() gridseq.Format {
	return s.format
}

// ReadAudio copies the next frames into buffer. Together with the last frames
// it returns io.EOF, so the caller knows the sound has ended without another
// read.
func (r *Reader) ReadAudio(buffer []float32) (int, error) {
	ch := r.sample.format.Channels
	data := r.sample.data
	if r.pos >= len(data) {
		return 0, io.EOF
	}
	n := copy(buffer[:len(buffer)/ch*ch], data[r.pos:])
	r.pos += n
	if r.pos >= len(data) {
		return n / ch, io.EOF
	}
	return n / ch, nil
}

// Constant returns a sample holding value in every channel of every frame.
func Constant(name string, format gridseq.Format, value float32, frames int) *Sample {
	data := make([]float32, format.Samples(frames))
	for i := range data {
		data[i] = value
	}
	return &Sample{Name: name, format: format, data: data}
}

// Tone returns a short sine click at freq Hz with an exponential decay,
// usable as a placeholder sound when a kit row has no sample file.
func Tone(name string, format gridseq.Format, freq float64, duration float64) *Sample {
	frames := int(duration * float64(format.SampleRate))
	data := make([]float32, format.Samples(frames))
	decay := 5 / duration
	for i := 0; i < frames; i++ {
		t := float64(i) / float64(format.SampleRate)
		v := float32(0.5 * math.Sin(2*math.Pi*freq*t) * math.Exp(-decay*t))
		for c := 0; c < format.Channels; c++ {
			data[i*format.Channels+c] = v
		}
	}
	return &Sample{Name: name, format: format, data: data}
}
