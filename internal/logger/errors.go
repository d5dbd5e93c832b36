package logger

import (
	"errors"
	"fmt"
)

var (
	// ErrSinkUnavailable is matched by every error returned when a target
	// cannot be opened.
	ErrSinkUnavailable = errors.New("log sink unavailable")

	// ErrWriteFailure marks a sink that rejected a record. It is only ever
	// reported on the diagnostics stream; Writef never returns it.
	ErrWriteFailure = errors.New("log sink write failed")

	ErrSyslogUnsupported = errors.New("syslog is not supported on this platform")
)

// SinkError wraps the reason a target could not be opened.
type SinkError struct {
	Target Target
	Err    error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("failed to open log target %q: %v", e.Target.String(), e.Err)
}

func (e *SinkError) Unwrap() []error {
	return []error{ErrSinkUnavailable, e.Err}
}

func newSinkError(target Target, err error) *SinkError {
	return &SinkError{Target: target, Err: err}
}
