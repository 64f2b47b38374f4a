package gridseq

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWav writes the interleaved buffer as a 16-bit PCM .wav file. Samples
// outside [-1, 1] are clamped.
func WriteWav(w io.WriteSeeker, buffer []float32, format Format) error {
	if format.Channels < 1 || format.SampleRate < 1 {
		return fmt.Errorf("invalid format %+v", format)
	}
	enc := wav.NewEncoder(w, format.SampleRate, 16, format.Channels, 1)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           make([]int, len(buffer)),
		SourceBitDepth: 16,
	}
	for i, v := range buffer {
		intBuf.Data[i] = clamp(int(v*math.MaxInt16), math.MinInt16, math.MaxInt16)
	}
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("could not write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not finalize wav file: %w", err)
	}
	return nil
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
