package gridseq_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/gridseq"
)

func TestWriteWav(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := gridseq.Format{SampleRate: 8000, Channels: 2}
	buffer := []float32{0, 0, 0.5, -0.5, 2, -2}
	require.NoError(t, gridseq.WriteWav(f, buffer, format))
	require.NoError(t, f.Close())

	f, err = os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	pcm, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, 2, pcm.Format.NumChannels)
	assert.Equal(t, 8000, pcm.Format.SampleRate)
	assert.Equal(t, []int{0, 0, 16383, -16383, 32767, -32768}, pcm.Data)
}

func TestWriteWavRejectsInvalidFormat(t *testing.T) {
	t.Parallel()
	f, err := os.Create(filepath.Join(t.TempDir(), "out.wav"))
	require.NoError(t, err)
	defer f.Close()
	assert.Error(t, gridseq.WriteWav(f, nil, gridseq.Format{SampleRate: 8000}))
}
