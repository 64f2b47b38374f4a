// Package cmd holds the wiring shared by the gridseq binaries.
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vsariola/gridseq"
	"github.com/vsariola/gridseq/config"
	"github.com/vsariola/gridseq/engine"
	"github.com/vsariola/gridseq/logger"
	"github.com/vsariola/gridseq/oto"
	"github.com/vsariola/gridseq/samples"
	"github.com/vsariola/gridseq/speaker"
	"k8s.io/utils/clock"
)

// Engine is a fully wired sequencer: the kit, the logic side and the render
// path.
type Engine struct {
	Config    *config.Config
	Bank      *samples.Bank
	Broker    *engine.Broker
	Mixer     *engine.Mixer
	Sequencer *engine.Sequencer
}

// LoadConfig loads the kit file at path, or the default kit if path is empty.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// ApplyPatterns sets the initial steps of rows from "name=x...x..." strings.
func ApplyPatterns(cfg *config.Config, patterns []string) error {
	for _, p := range patterns {
		name, steps, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("pattern %q should look like name=x...x...", p)
		}
		i, ok := cfg.RowIndex(name)
		if !ok {
			return fmt.Errorf("pattern %q: no row named %q", p, name)
		}
		if _, err := gridseq.ParseSteps(steps); err != nil {
			return fmt.Errorf("pattern %q: %w", p, err)
		}
		cfg.Rows[i].Steps = steps
	}
	return nil
}

// NewEngine loads the sounds of the kit and wires the engine together.
func NewEngine(cfg *config.Config) (*Engine, error) {
	grid, err := cfg.NewGrid()
	if err != nil {
		return nil, err
	}
	clk, err := gridseq.NewClock(cfg.Pattern.Steps, cfg.TicksPerStep())
	if err != nil {
		return nil, err
	}
	bank := samples.LoadBank(cfg)
	broker := engine.NewBroker(cfg.Audio.IntakeCapacity)
	mixer := engine.NewMixer(broker, cfg.Format(), engine.MixerOptions{
		MaxVoices:   cfg.Audio.MaxVoices,
		ChunkFrames: cfg.Audio.BufferFrames,
	})
	seq, err := engine.NewSequencer(grid, clk, bank, broker, engine.SequencerOptions{
		TriggerFirstStep: cfg.Tempo.TriggerFirstStep,
	})
	if err != nil {
		return nil, err
	}
	return &Engine{Config: cfg, Bank: bank, Broker: broker, Mixer: mixer, Sequencer: seq}, nil
}

// OpenOutput starts the audio driver selected in the config, pulling audio
// from r. The "none" driver renders into a discarded buffer at the device
// rate, so the engine behaves the same without a sound card.
func OpenOutput(cfg *config.Config, r gridseq.Renderer) (io.Closer, error) {
	log := logger.GetProjectLogger()
	log.WithField("driver", cfg.Audio.Driver).Info("Opening audio output...")
	switch cfg.Audio.Driver {
	case config.DriverOto:
		c, err := oto.NewContext(cfg.Format(), cfg.Audio.BufferFrames)
		if err != nil {
			return nil, err
		}
		return &otoCloser{context: c, output: c.Play(r)}, nil
	case config.DriverSpeaker:
		out, err := speaker.Play(r, cfg.Format(), cfg.Audio.BufferFrames)
		if err != nil {
			return nil, err
		}
		return out, nil
	case config.DriverNone:
		return startNullOutput(cfg, r), nil
	}
	return nil, fmt.Errorf("unknown audio driver %q", cfg.Audio.Driver)
}

type otoCloser struct {
	context *oto.OtoContext
	output  *oto.OtoOutput
}

func (o *otoCloser) Close() error {
	if err := o.output.Close(); err != nil {
		return err
	}
	return o.context.Close()
}

// closeTimeout bounds how long closing the null output waits for its render
// goroutine.
const closeTimeout = time.Second

type nullOutput struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startNullOutput(cfg *config.Config, r gridseq.Renderer) *nullOutput {
	ctx, cancel := context.WithCancel(context.Background())
	n := &nullOutput{cancel: cancel, done: make(chan struct{}, 1)}
	buffer := make([]float32, cfg.Format().Samples(cfg.Audio.BufferFrames))
	interval := time.Duration(cfg.Audio.BufferFrames) * time.Second / time.Duration(cfg.Audio.SampleRate)
	go func() {
		defer func() { n.done <- struct{}{} }()
		t := clock.RealClock{}.NewTimer(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C():
				r.Render(buffer)
				t.Reset(interval)
			}
		}
	}()
	return n
}

// Close stops rendering; the renderer is not called after Close returns nil.
func (n *nullOutput) Close() error {
	n.cancel()
	if _, ok := engine.TimeoutReceive(n.done, closeTimeout); !ok {
		return fmt.Errorf("null output did not stop within %v", closeTimeout)
	}
	return nil
}
