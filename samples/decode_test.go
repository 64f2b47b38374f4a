package samples_test

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/gridseq"
	"github.com/vsariola/gridseq/samples"
)

// frames returns a streamer of n frames of (left, right).
func frames(n int, left, right float64) beep.Streamer {
	return beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if n <= 0 {
			return 0, false
		}
		k := min(n, len(buf))
		for i := range buf[:k] {
			buf[i] = [2]float64{left, right}
		}
		n -= k
		return k, true
	})
}

func TestFromStreamerStereo(t *testing.T) {
	t.Parallel()
	s, err := samples.FromStreamer("s", frames(1000, 0.25, -0.25), beep.Format{SampleRate: 1000, NumChannels: 2, Precision: 2}, stereo)
	require.NoError(t, err)
	require.Equal(t, 1000, s.Frames())
	src, err := s.Open()
	require.NoError(t, err)
	buf := make([]float32, 4)
	_, err = src.ReadAudio(buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.25, 0.25, -0.25}, buf)
}

func TestFromStreamerMono(t *testing.T) {
	t.Parallel()
	mono := gridseq.Format{SampleRate: 1000, Channels: 1}
	s, err := samples.FromStreamer("s", frames(700, 0.2, 0.4), beep.Format{SampleRate: 1000, NumChannels: 2, Precision: 2}, mono)
	require.NoError(t, err)
	require.Equal(t, 700, s.Frames())
	src, err := s.Open()
	require.NoError(t, err)
	buf := make([]float32, 2)
	_, err = src.ReadAudio(buf)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, buf[0], 1e-6)
}

func TestFromStreamerResamples(t *testing.T) {
	t.Parallel()
	s, err := samples.FromStreamer("s", frames(1000, 0.5, 0.5), beep.Format{SampleRate: 500, NumChannels: 2, Precision: 2}, stereo)
	require.NoError(t, err)
	assert.InDelta(t, 2000, s.Frames(), 20)
}

func TestFromStreamerRejectsSurround(t *testing.T) {
	t.Parallel()
	_, err := samples.FromStreamer("s", frames(10, 0, 0), beep.Format{SampleRate: 1000, NumChannels: 2, Precision: 2}, gridseq.Format{SampleRate: 1000, Channels: 6})
	assert.Error(t, err)
}

func TestLoadFileResamplesToDeviceRate(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "hit.wav")
	writeWav(t, path, gridseq.Format{SampleRate: 8000, Channels: 1}, 800)
	s, err := samples.LoadFile(path, gridseq.Format{SampleRate: 8000, Channels: 2})
	require.NoError(t, err)
	assert.Equal(t, "hit", s.Name)
	assert.Equal(t, 800, s.Frames())
	src, err := s.Open()
	require.NoError(t, err)
	buf := make([]float32, 2)
	_, err = src.ReadAudio(buf)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, buf[0], 1e-3)
	assert.InDelta(t, 0.5, buf[1], 1e-3)
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()
	_, err := samples.LoadFile(filepath.Join(t.TempDir(), "nope.wav"), stereo)
	assert.Error(t, err)
	_, err = samples.Decode(io.NopCloser(strings.NewReader("")), ".flac", "x", stereo)
	assert.Error(t, err)
	_, err = samples.Decode(io.NopCloser(strings.NewReader("not a wav")), ".wav", "x", stereo)
	assert.Error(t, err)
}
