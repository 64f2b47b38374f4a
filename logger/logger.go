// Package logger holds the logrus logger shared by every package of gridseq.
package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	projectLogger *logrus.Logger
	once          sync.Once
)

// GetProjectLogger returns the project wide logger. It logs to stderr at info
// level until Configure is called.
func GetProjectLogger() *logrus.Logger {
	once.Do(func() {
		projectLogger = logrus.New()
		projectLogger.SetLevel(logrus.InfoLevel)
		projectLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	})
	return projectLogger
}

// Configure sets the level ("debug", "info", "warn", ...) and the format
// ("text" or "json") of the project logger.
func Configure(level, format string) error {
	l := GetProjectLogger()
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		l.SetLevel(lvl)
	}
	switch format {
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q, should be text or json", format)
	}
	return nil
}

// SetOutput redirects the project logger, e.g. to a file while a terminal UI
// owns the screen.
func SetOutput(w io.Writer) {
	GetProjectLogger().SetOutput(w)
}
