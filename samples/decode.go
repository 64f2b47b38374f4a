package samples

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/vsariola/gridseq"
)

// resampleQuality is the beep resampler quality; 4 is good for drum hits and
// still quick to load.
const resampleQuality = 4

// LoadFile decodes a .wav or .mp3 file into a Sample in the given format.
func LoadFile(path string, format gridseq.Format) (*Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := Decode(f, filepath.Ext(path), name, format)
	if err != nil {
		return nil, errors.WithStackTrace(fmt.Errorf("could not decode %v: %w", path, err))
	}
	return s, nil
}

// Decode decodes r according to the file extension ext (".wav" or ".mp3").
// r is closed when Decode returns.
func Decode(r io.ReadCloser, ext, name string, format gridseq.Format) (*Sample, error) {
	var (
		streamer beep.StreamSeekCloser
		from     beep.Format
		err      error
	)
	switch strings.ToLower(ext) {
	case ".wav", ".wave":
		streamer, from, err = wav.Decode(r)
	case ".mp3":
		streamer, from, err = mp3.Decode(r)
	default:
		r.Close()
		return nil, fmt.Errorf("unsupported sample format %q", ext)
	}
	if err != nil {
		r.Close()
		return nil, err
	}
	defer streamer.Close()
	return FromStreamer(name, streamer, from, format)
}

// FromStreamer reads s until it ends and converts it to format, resampling
// when the rates differ. Mono output averages the two beep channels.
func FromStreamer(name string, s beep.Streamer, from beep.Format, to gridseq.Format) (*Sample, error) {
	if to.Channels < 1 || to.Channels > 2 {
		return nil, fmt.Errorf("only mono and stereo output is supported, got %d channels", to.Channels)
	}
	if int(from.SampleRate) != to.SampleRate {
		s = beep.Resample(resampleQuality, from.SampleRate, beep.SampleRate(to.SampleRate), s)
	}
	var data []float32
	chunk := make([][2]float64, 512)
	for {
		n, ok := s.Stream(chunk)
		for _, frame := range chunk[:n] {
			if to.Channels == 1 {
				data = append(data, float32((frame[0]+frame[1])/2))
			} else {
				data = append(data, float32(frame[0]), float32(frame[1]))
			}
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("stream error: %w", err)
	}
	return NewSample(name, to, data)
}
