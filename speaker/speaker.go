// Package speaker plays a gridseq.Renderer through the beep speaker, as an
// alternative to the oto driver on platforms where beep is preferred.
package speaker

import (
	"fmt"

	"github.com/faiface/beep"
	beepspeaker "github.com/faiface/beep/speaker"
	"github.com/vsariola/gridseq"
)

// Streamer adapts a gridseq.Renderer to a beep.Streamer. Mono output is
// copied to both beep channels. It never ends.
type Streamer struct {
	renderer gridseq.Renderer
	channels int
	floats   []float32
}

// NewStreamer creates a streamer rendering at most bufferFrames frames at a
// time.
func NewStreamer(r gridseq.Renderer, format gridseq.Format, bufferFrames int) *Streamer {
	return &Streamer{renderer: r, channels: format.Channels, floats: make([]float32, bufferFrames*format.Channels)}
}

// Stream implements beep.Streamer; it always fills samples.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	chunkFrames := len(s.floats) / s.channels
	for n < len(samples) {
		frames := min(len(samples)-n, chunkFrames)
		chunk := s.floats[:frames*s.channels]
		s.renderer.Render(chunk)
		for i := 0; i < frames; i++ {
			if s.channels == 1 {
				v := float64(chunk[i])
				samples[n+i] = [2]float64{v, v}
			} else {
				samples[n+i] = [2]float64{float64(chunk[2*i]), float64(chunk[2*i+1])}
			}
		}
		n += frames
	}
	return n, true
}

// Err implements beep.Streamer; rendering cannot fail.
func (s *Streamer) Err() error {
	return nil
}

// Output is the playing beep speaker.
type Output struct{}

// Play initializes the beep speaker for format and starts playing r.
func Play(r gridseq.Renderer, format gridseq.Format, bufferFrames int) (*Output, error) {
	if format.Channels != 1 && format.Channels != 2 {
		return nil, fmt.Errorf("beep speaker plays mono or stereo, got %d channels", format.Channels)
	}
	if err := beepspeaker.Init(beep.SampleRate(format.SampleRate), bufferFrames); err != nil {
		return nil, fmt.Errorf("cannot initialize beep speaker: %w", err)
	}
	beepspeaker.Play(NewStreamer(r, format, bufferFrames))
	return &Output{}, nil
}

// Close stops the speaker.
func (o *Output) Close() error {
	beepspeaker.Clear()
	beepspeaker.Close()
	return nil
}
