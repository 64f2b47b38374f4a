package cmd

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/gridseq/config"
	"github.com/vsariola/gridseq/engine"
)

func TestApplyPatterns(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	require.NoError(t, ApplyPatterns(cfg, []string{"blip=x.x.x.x.x.x.x.x.", "kick="}))
	assert.Equal(t, "x.x.x.x.x.x.x.x.", cfg.Rows[3].Steps)
	assert.Equal(t, "", cfg.Rows[0].Steps)

	assert.Error(t, ApplyPatterns(cfg, []string{"blip"}))
	assert.Error(t, ApplyPatterns(cfg, []string{"cowbell=x..."}))
	assert.Error(t, ApplyPatterns(cfg, []string{"blip=x?"}))
}

func TestNewEngineBouncesDefaultKit(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, e.Bank.Len())

	ticks := cfg.Pattern.Steps * cfg.TicksPerStep()
	buffer, err := engine.Bounce(e.Sequencer, e.Mixer, cfg.Tempo.TickRate, ticks, 0)
	require.NoError(t, err)
	frames := cfg.Format().Frames(buffer)
	// 183.75 frames per tick at the default rates
	assert.Equal(t, ticks*cfg.Audio.SampleRate/cfg.Tempo.TickRate, frames)
	assert.Equal(t, 88200, frames)
	stats := e.Sequencer.Stats()
	// kick 4, snare 2, hat 4; step 0 is first heard when the pattern wraps
	assert.Equal(t, uint64(10), stats.Submitted)
	assert.Zero(t, stats.Missed)
}

func TestNullOutputRendersUntilClosed(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Audio.Driver = config.DriverNone
	cfg.Audio.BufferFrames = 44
	r := &countingRenderer{calls: make(chan struct{}, 1)}
	out, err := OpenOutput(cfg, r)
	require.NoError(t, err)
	<-r.calls
	require.NoError(t, out.Close())
	n := r.count.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, r.count.Load())
}

func TestOpenOutputRejectsUnknownDriver(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Audio.Driver = "alsa"
	_, err := OpenOutput(cfg, &countingRenderer{})
	assert.Error(t, err)
}

type countingRenderer struct {
	calls chan struct{}
	count atomic.Int64
}

func (r *countingRenderer) Render(buffer []float32) {
	r.count.Add(1)
	select {
	case r.calls <- struct{}{}:
	default:
	}
}
