// Package oto plays a gridseq.Renderer through github.com/ebitengine/oto/v3.
// The device pulls audio: oto reads from an io.Reader, which renders float32
// frames into a preallocated buffer and encodes them in place.
package oto

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/gridseq"
)

type (
	OtoContext struct {
		context      *oto.Context
		format       gridseq.Format
		bufferFrames int
	}

	OtoOutput struct {
		player *oto.Player
	}

	// otoReader is the io.Reader polled by the oto player.
	otoReader struct {
		renderer gridseq.Renderer
		channels int
		floats   []float32
	}
)

const bytesPerSample = 4

// NewContext opens the audio device. bufferFrames sets both the device
// buffer and the size of the chunks rendered at a time.
func NewContext(format gridseq.Format, bufferFrames int) (*OtoContext, error) {
	if bufferFrames < 1 {
		return nil, fmt.Errorf("buffer frames should be > 0, got %d", bufferFrames)
	}
	op := oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferFrames) * time.Second / time.Duration(format.SampleRate),
	}
	context, readyChan, err := oto.NewContext(&op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-readyChan
	return &OtoContext{context: context, format: format, bufferFrames: bufferFrames}, nil
}

// Play starts pulling audio from r until the output is closed.
func (c *OtoContext) Play(r gridseq.Renderer) *OtoOutput {
	reader := newOtoReader(r, c.format.Channels, c.bufferFrames)
	player := c.context.NewPlayer(reader)
	player.SetBufferSize(c.bufferFrames * c.format.Channels * bytesPerSample)
	player.Play()
	return &OtoOutput{player: player}
}

// Close suspends the device.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Close stops the player; the renderer is not called after Close returns.
func (o *OtoOutput) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func newOtoReader(r gridseq.Renderer, channels, bufferFrames int) *otoReader {
	return &otoReader{renderer: r, channels: channels, floats: make([]float32, bufferFrames*channels)}
}

// Read renders as many whole frames as fit into p, in chunks of the float
// buffer, and writes them as little-endian float32.
func (o *otoReader) Read(p []byte) (int, error) {
	frameBytes := o.channels * bytesPerSample
	total := len(p) / frameBytes * frameBytes
	written := 0
	for written < total {
		n := min((total-written)/bytesPerSample, len(o.floats))
		chunk := o.floats[:n]
		o.renderer.Render(chunk)
		for i, v := range chunk {
			binary.LittleEndian.PutUint32(p[written+i*bytesPerSample:], math.Float32bits(v))
		}
		written += n * bytesPerSample
	}
	return written, nil
}
