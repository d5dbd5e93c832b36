package logger

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// diagInstalled is set once NewDiagnostics has configured the global
// logger. Until then Loggers stay quiet.
var diagInstalled atomic.Bool

func defaultDiagnostics() zerolog.Logger {
	if !diagInstalled.Load() {
		return zerolog.Nop()
	}
	return log.Logger.With().Str("component", "vaslog").Logger()
}

// DiagConfig configures the diagnostics stream, where the facility reports
// on itself (failed writes, rotations, reopens).
type DiagConfig struct {
	Level     string    // debug, info, warn, error
	Pretty    bool      // human readable console format
	Redaction bool      // mask credentials
	Out       io.Writer // defaults to os.Stderr
}

// DefaultDiagConfig returns default diagnostics configuration
func DefaultDiagConfig() DiagConfig {
	return DiagConfig{
		Level:     "info",
		Pretty:    true,
		Redaction: true,
	}
}

// NewDiagnostics builds the diagnostics logger and installs it as the
// global zerolog logger, so Loggers created afterwards pick it up. Loggers
// created before any call, without WithDiagnostics, report nothing.
func NewDiagnostics(cfg DiagConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	writer := out
	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	if cfg.Redaction {
		writer = NewRedactor().Wrap(writer)
	}

	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = logger
	diagInstalled.Store(true)

	return logger
}
