package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// sink is where a session's records end up. Each record is handed over in
// a single Write call.
type sink interface {
	io.Writer
	Sync() error
	Close() error
}

// rotator is implemented by sinks that can start a fresh file on demand.
type rotator interface {
	Rotate() error
}

func openSink(target Target, cfg Config, diag zerolog.Logger) (sink, error) {
	switch target.Kind {
	case KindDisabled:
		return discardSink{}, nil
	case KindStderr:
		return stdSink{os.Stderr}, nil
	case KindStdout:
		return stdSink{os.Stdout}, nil
	case KindSyslog:
		s, err := openSyslog()
		if err != nil {
			return nil, newSinkError(target, err)
		}
		return s, nil
	case KindFile:
		if cfg.Rotation.MaxBytes > 0 || cfg.RotateSchedule != "" {
			rw, err := newRotatingWriter(target.Path, cfg.Rotation, diag)
			if err != nil {
				return nil, newSinkError(target, err)
			}
			return rw, nil
		}
		f, err := openLogFile(target.Path)
		if err != nil {
			return nil, newSinkError(target, err)
		}
		return f, nil
	default:
		return nil, newSinkError(target, fmt.Errorf("unknown target kind %d", target.Kind))
	}
}

// openLogFile creates the parent directory if needed and opens path for
// appending.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

type discardSink struct{}

func (discardSink) Write(p []byte) (int, error) { return len(p), nil }
func (discardSink) Sync() error                 { return nil }
func (discardSink) Close() error                { return nil }

// stdSink writes to a standard stream the facility does not own, so Close
// leaves the descriptor open.
type stdSink struct {
	f *os.File
}

func (s stdSink) Write(p []byte) (int, error) { return s.f.Write(p) }

// Sync is best effort; terminals and pipes reject fsync.
func (s stdSink) Sync() error {
	_ = s.f.Sync()
	return nil
}

func (s stdSink) Close() error { return nil }
