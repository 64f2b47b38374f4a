package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	commonerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/vsariola/gridseq"
	"github.com/vsariola/gridseq/cmd"
	"github.com/vsariola/gridseq/engine"
	"github.com/vsariola/gridseq/logger"
	"github.com/vsariola/gridseq/version"
	"k8s.io/utils/clock"
)

// tailSeconds is the longest time a bounce keeps rendering after the last
// tick, letting the last sounds ring out.
const tailSeconds = 2

func main() {
	kit := pflag.StringP("kit", "k", "", "Kit file (YAML). By default, a kit of four synthetic tones is used.")
	patterns := pflag.StringArrayP("pattern", "p", nil, "Set the steps of a row, e.g. --pattern kick=x...x...; can be repeated.")
	bpm := pflag.Float64("bpm", 0, "Override the tempo of the kit.")
	driver := pflag.String("driver", "", "Override the audio driver: oto, speaker or none.")
	wavOut := pflag.StringP("wav", "w", "", "Render offline to this .wav file instead of playing.")
	loops := pflag.Int("loops", 1, "Number of times the pattern is played when rendering to a .wav file.")
	dumpConfig := pflag.Bool("dump-config", false, "Print the effective configuration and exit.")
	logLevel := pflag.String("log-level", "", "Override the log level: debug, info, warn or error.")
	versionFlag := pflag.BoolP("version", "v", false, "Print version.")
	help := pflag.BoolP("help", "h", false, "Show help.")
	pflag.Usage = printUsage
	pflag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	if *help {
		pflag.Usage()
		os.Exit(0)
	}
	cfg, err := cmd.LoadConfig(*kit)
	if err != nil {
		exit(err)
	}
	if *bpm > 0 {
		cfg.Tempo.BPM = *bpm
	}
	if *driver != "" {
		cfg.Audio.Driver = *driver
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cmd.ApplyPatterns(cfg, *patterns); err != nil {
		exit(err)
	}
	if err := cfg.Validate(); err != nil {
		exit(err)
	}
	if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		exit(err)
	}
	if *dumpConfig {
		spew.Dump(cfg)
		os.Exit(0)
	}
	e, err := cmd.NewEngine(cfg)
	if err != nil {
		exit(err)
	}
	if *wavOut != "" {
		err = bounce(e, *wavOut, *loops)
	} else {
		err = play(e)
	}
	if err != nil {
		exit(err)
	}
}

func play(e *cmd.Engine) error {
	out, err := cmd.OpenOutput(e.Config, e.Mixer)
	if err != nil {
		return fmt.Errorf("could not open audio output: %w", err)
	}
	defer out.Close()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := e.Sequencer.Run(ctx, clock.RealClock{}, e.Config.TickInterval()); err != nil && ctx.Err() == nil {
		return err
	}
	e.Sequencer.StopAll()
	return nil
}

func bounce(e *cmd.Engine, path string, loops int) error {
	if loops < 1 {
		return fmt.Errorf("loops should be > 0, got %d", loops)
	}
	cfg := e.Config
	ticks := loops * cfg.Pattern.Steps * cfg.TicksPerStep()
	buffer, err := engine.Bounce(e.Sequencer, e.Mixer, cfg.Tempo.TickRate, ticks, tailSeconds*cfg.Audio.SampleRate)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return commonerrors.WithStackTrace(err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return commonerrors.WithStackTrace(err)
	}
	defer f.Close()
	if err := gridseq.WriteWav(f, buffer, cfg.Format()); err != nil {
		return fmt.Errorf("could not write %v: %w", path, err)
	}
	stats := e.Sequencer.Stats()
	logger.GetProjectLogger().WithFields(logrus.Fields{
		"path":      path,
		"frames":    cfg.Format().Frames(buffer),
		"submitted": stats.Submitted,
		"missed":    stats.Missed,
	}).Info("Bounced pattern")
	return nil
}

func exit(err error) {
	log := logger.GetProjectLogger()
	log.Debug(commonerrors.PrintErrorWithStackTrace(err))
	log.Error(err)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "gridseq-play plays a step pattern, or renders it to a .wav file.\nUsage: %s [flags]\n", os.Args[0])
	pflag.PrintDefaults()
}
