// Package config reads the kit file of gridseq: the tempo, the pattern
// length, the rows and their sounds, and the audio and logging settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	commonerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/vsariola/gridseq"
	"gopkg.in/yaml.v3"
)

type (
	// Config is the root of the kit file.
	Config struct {
		Tempo   Tempo   `yaml:"tempo"`
		Pattern Pattern `yaml:"pattern"`
		Rows    []Row   `yaml:"rows"`
		Audio   Audio   `yaml:"audio"`
		Log     Log     `yaml:"log"`

		// Dir is the directory relative sample paths are resolved against;
		// Load sets it to the directory of the kit file.
		Dir string `yaml:"-"`
	}

	Tempo struct {
		BPM          float64 `yaml:"bpm"`
		StepsPerBeat int     `yaml:"steps_per_beat"`
		// TickRate is the number of logic ticks per second.
		TickRate         int  `yaml:"tick_rate"`
		TriggerFirstStep bool `yaml:"trigger_first_step,omitempty"`
	}

	Pattern struct {
		Steps int `yaml:"steps"`
	}

	// Row is one track of the kit. If Sample is empty and Tone is set, the
	// row plays a synthetic click at Tone Hz.
	Row struct {
		Name   string  `yaml:"name"`
		Sample string  `yaml:"sample,omitempty"`
		Tone   float64 `yaml:"tone,omitempty"`
		Steps  string  `yaml:"steps,omitempty"`
	}

	Audio struct {
		Driver         string `yaml:"driver"`
		SampleRate     int    `yaml:"sample_rate"`
		Channels       int    `yaml:"channels"`
		BufferFrames   int    `yaml:"buffer_frames"`
		MaxVoices      int    `yaml:"max_voices"`
		IntakeCapacity int    `yaml:"intake_capacity"`
	}

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}
)

const (
	DriverOto     = "oto"
	DriverSpeaker = "speaker"
	DriverNone    = "none"
)

// Default returns a config with four tone rows, so gridseq makes sound even
// without a kit file.
func Default() *Config {
	return &Config{
		Tempo:   Tempo{BPM: 120, StepsPerBeat: 4, TickRate: 240},
		Pattern: Pattern{Steps: 16},
		Rows: []Row{
			{Name: "kick", Tone: 60, Steps: "x...x...x...x..."},
			{Name: "snare", Tone: 220, Steps: "....x.......x..."},
			{Name: "hat", Tone: 4000, Steps: "..x...x...x...x."},
			{Name: "blip", Tone: 880},
		},
		Audio: Audio{
			Driver:         DriverOto,
			SampleRate:     gridseq.DefaultFormat.SampleRate,
			Channels:       gridseq.DefaultFormat.Channels,
			BufferFrames:   1024,
			MaxVoices:      64,
			IntakeCapacity: 64,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads and validates a kit file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, commonerrors.WithStackTrace(err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, commonerrors.WithStackTrace(fmt.Errorf("%v: %w", path, err))
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes a kit file on top of Default and validates the result. A
// rows list in the file replaces the default rows. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse kit: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the config describes a playable kit.
func (c *Config) Validate() error {
	if c.Tempo.BPM <= 0 {
		return fmt.Errorf("tempo.bpm should be > 0, got %v", c.Tempo.BPM)
	}
	if c.Tempo.StepsPerBeat < 1 {
		return fmt.Errorf("tempo.steps_per_beat should be > 0, got %d", c.Tempo.StepsPerBeat)
	}
	if c.Tempo.TickRate < 1 || c.Tempo.TickRate > c.Audio.SampleRate {
		return fmt.Errorf("tempo.tick_rate should be in [1, sample_rate], got %d", c.Tempo.TickRate)
	}
	if c.Pattern.Steps < 1 || c.Pattern.Steps > gridseq.MaxSteps {
		return fmt.Errorf("pattern.steps should be in [1, %d], got %d", gridseq.MaxSteps, c.Pattern.Steps)
	}
	if len(c.Rows) == 0 {
		return errors.New("kit has no rows")
	}
	names := make(map[string]bool, len(c.Rows))
	for i, r := range c.Rows {
		if r.Name == "" {
			return fmt.Errorf("row %d has no name", i)
		}
		if names[r.Name] {
			return fmt.Errorf("row name %q is used twice", r.Name)
		}
		names[r.Name] = true
		if r.Tone < 0 {
			return fmt.Errorf("row %q: tone should not be negative", r.Name)
		}
		if _, err := gridseq.ParseSteps(r.Steps); err != nil {
			return fmt.Errorf("row %q: %w", r.Name, err)
		}
	}
	switch c.Audio.Driver {
	case DriverOto, DriverSpeaker, DriverNone:
	default:
		return fmt.Errorf("audio.driver should be %s, %s or %s, got %q", DriverOto, DriverSpeaker, DriverNone, c.Audio.Driver)
	}
	if c.Audio.SampleRate < 1 {
		return fmt.Errorf("audio.sample_rate should be > 0, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("audio.channels should be 1 or 2, got %d", c.Audio.Channels)
	}
	if c.Audio.BufferFrames < 1 {
		return fmt.Errorf("audio.buffer_frames should be > 0, got %d", c.Audio.BufferFrames)
	}
	if c.Audio.MaxVoices < 1 {
		return fmt.Errorf("audio.max_voices should be > 0, got %d", c.Audio.MaxVoices)
	}
	if c.Audio.IntakeCapacity < 1 {
		return fmt.Errorf("audio.intake_capacity should be > 0, got %d", c.Audio.IntakeCapacity)
	}
	return nil
}

// TicksPerStep is the number of logic ticks in one step at the configured
// tempo, rounded to the nearest integer and at least 1.
func (c *Config) TicksPerStep() int {
	stepsPerSecond := c.Tempo.BPM * float64(c.Tempo.StepsPerBeat) / 60
	ticks := int(math.Round(float64(c.Tempo.TickRate) / stepsPerSecond))
	return max(ticks, 1)
}

// TickInterval is the wall clock time between two logic ticks.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Tempo.TickRate)
}

// Format returns the audio format of the output device.
func (c *Config) Format() gridseq.Format {
	return gridseq.Format{SampleRate: c.Audio.SampleRate, Channels: c.Audio.Channels}
}

// Sounds returns the row names in order.
func (c *Config) Sounds() []string {
	ret := make([]string, len(c.Rows))
	for i, r := range c.Rows {
		ret[i] = r.Name
	}
	return ret
}

// RowIndex returns the index of the row with the given name.
func (c *Config) RowIndex(name string) (int, bool) {
	for i, r := range c.Rows {
		if r.Name == name {
			return i, true
		}
	}
	return -1, false
}

// SamplePath resolves the sample path of a row against Dir.
func (c *Config) SamplePath(row Row) string {
	if row.Sample == "" || filepath.IsAbs(row.Sample) || c.Dir == "" {
		return row.Sample
	}
	return filepath.Join(c.Dir, row.Sample)
}

// NewGrid creates the grid of the kit with the initial steps of every row.
func (c *Config) NewGrid() (*gridseq.Grid, error) {
	g, err := gridseq.NewGrid(c.Sounds(), c.Pattern.Steps)
	if err != nil {
		return nil, err
	}
	for i, r := range c.Rows {
		steps, err := gridseq.ParseSteps(r.Steps)
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", r.Name, err)
		}
		if err := g.SetSteps(i, steps); err != nil {
			return nil, err
		}
	}
	return g, nil
}
