package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsariola/gridseq"
	"github.com/vsariola/gridseq/config"
)

func TestParseEmptyGivesDefault(t *testing.T) {
	t.Parallel()
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 30, cfg.TicksPerStep())
	assert.Equal(t, time.Second/240, cfg.TickInterval())
	assert.Equal(t, gridseq.DefaultFormat, cfg.Format())
}

func TestParseOverridesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Parse([]byte(`
tempo:
  bpm: 90
pattern:
  steps: 8
rows:
  - name: kick
    sample: kick.wav
    steps: "x...|x..."
  - name: hat
    tone: 3000
audio:
  driver: none
  channels: 1
`))
	require.NoError(t, err)
	assert.Equal(t, 90.0, cfg.Tempo.BPM)
	assert.Equal(t, 4, cfg.Tempo.StepsPerBeat)
	assert.Equal(t, 40, cfg.TicksPerStep())
	assert.Equal(t, []string{"kick", "hat"}, cfg.Sounds())
	assert.Equal(t, gridseq.Format{SampleRate: 44100, Channels: 1}, cfg.Format())
	i, ok := cfg.RowIndex("hat")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = cfg.RowIndex("snare")
	assert.False(t, ok)

	g, err := cfg.NewGrid()
	require.NoError(t, err)
	assert.Equal(t, 8, g.StepCount())
	assert.Equal(t, "x...x...", g.StepString(0))
	assert.Equal(t, "........", g.StepString(1))
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	_, err := config.Parse([]byte("tempo:\n  bmp: 120\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := map[string]func(c *config.Config){
		"zero bpm":         func(c *config.Config) { c.Tempo.BPM = 0 },
		"zero steps/beat":  func(c *config.Config) { c.Tempo.StepsPerBeat = 0 },
		"zero tick rate":   func(c *config.Config) { c.Tempo.TickRate = 0 },
		"too many steps":   func(c *config.Config) { c.Pattern.Steps = gridseq.MaxSteps + 1 },
		"no rows":          func(c *config.Config) { c.Rows = nil },
		"unnamed row":      func(c *config.Config) { c.Rows[0].Name = "" },
		"duplicate row":    func(c *config.Config) { c.Rows[1].Name = c.Rows[0].Name },
		"negative tone":    func(c *config.Config) { c.Rows[0].Tone = -1 },
		"bad steps":        func(c *config.Config) { c.Rows[0].Steps = "x?" },
		"unknown driver":   func(c *config.Config) { c.Audio.Driver = "alsa" },
		"surround":         func(c *config.Config) { c.Audio.Channels = 6 },
		"no buffer":        func(c *config.Config) { c.Audio.BufferFrames = 0 },
		"no voices":        func(c *config.Config) { c.Audio.MaxVoices = 0 },
		"no intake":        func(c *config.Config) { c.Audio.IntakeCapacity = 0 },
		"zero sample rate": func(c *config.Config) { c.Audio.SampleRate = 0 },
	}
	for name, modify := range tests {
		cfg := config.Default()
		modify(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
	assert.NoError(t, config.Default().Validate())
}

func TestTicksPerStepIsAtLeastOne(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Tempo.BPM = 6000
	cfg.Tempo.TickRate = 10
	assert.Equal(t, 1, cfg.TicksPerStep())
}

func TestLoadResolvesSamplePaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "kit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows:\n  - name: kick\n    sample: drums/kick.wav\n  - name: abs\n    sample: /tmp/abs.wav\n"), 0644))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, filepath.Join(dir, "drums", "kick.wav"), cfg.SamplePath(cfg.Rows[0]))
	assert.Equal(t, "/tmp/abs.wav", cfg.SamplePath(cfg.Rows[1]))

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
