package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/vsariola/gridseq/cmd"
	"github.com/vsariola/gridseq/logger"
	"github.com/vsariola/gridseq/tui"
	"github.com/vsariola/gridseq/version"
	"k8s.io/utils/clock"
)

func main() {
	kit := pflag.StringP("kit", "k", "", "Kit file (YAML). By default, a kit of four synthetic tones is used.")
	driver := pflag.String("driver", "", "Override the audio driver: oto, speaker or none.")
	logFile := pflag.String("log-file", "", "Write the log to this file; by default it goes to gridseq-track.log in the user config directory.")
	versionFlag := pflag.BoolP("version", "v", false, "Print version.")
	pflag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}
	cfg, err := cmd.LoadConfig(*kit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *driver != "" {
		cfg.Audio.Driver = *driver
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if err := logger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// the terminal belongs to the UI, so the log goes to a file
	if *logFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			*logFile = filepath.Join(dir, "gridseq", "gridseq-track.log")
		}
	}
	if *logFile != "" {
		if err := os.MkdirAll(filepath.Dir(*logFile), os.ModePerm); err == nil {
			if f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				defer f.Close()
				logger.SetOutput(f)
			}
		}
	}
	e, err := cmd.NewEngine(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out, err := cmd.OpenOutput(cfg, e.Mixer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open audio output: %v\n", err)
		os.Exit(1)
	}
	model := tui.NewModel(e.Sequencer, tui.NewTheme(len(cfg.Rows)), clock.RealClock{}, cfg.TickInterval())
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	e.Sequencer.StopAll()
	out.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
