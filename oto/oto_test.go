package oto

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constRenderer struct {
	value float32
	calls int
}

func (r *constRenderer) Render(buffer []float32) {
	r.calls++
	for i := range buffer {
		buffer[i] = r.value
	}
}

func TestReaderEncodesWholeFrames(t *testing.T) {
	t.Parallel()
	r := &constRenderer{value: 0.5}
	reader := newOtoReader(r, 2, 2)
	p := make([]byte, 3*2*bytesPerSample+3)
	n, err := reader.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	assert.Equal(t, 2, r.calls)
	for i := 0; i < n; i += bytesPerSample {
		assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(p[i:])))
	}
	assert.Equal(t, []byte{0, 0, 0}, p[24:])
}

func TestReaderWithTinyBuffer(t *testing.T) {
	t.Parallel()
	r := &constRenderer{value: 1}
	reader := newOtoReader(r, 2, 4)
	n, err := reader.Read(make([]byte, 5))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, r.calls)
}
