//go:build !windows && !plan9 && !wasm && !js

package logger

import (
	"fmt"
	"log/syslog"
	"strings"
)

const syslogTag = "vaslog"

// syslogSink sends each record as one NOTICE message on the daemon facility.
type syslogSink struct {
	w *syslog.Writer
}

func openSyslog() (sink, error) {
	w, err := syslog.New(syslog.LOG_NOTICE|syslog.LOG_DAEMON, syslogTag)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to syslog: %w", err)
	}
	return &syslogSink{w: w}, nil
}

func (s *syslogSink) Write(p []byte) (int, error) {
	if err := s.w.Notice(strings.TrimSuffix(string(p), "\n")); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *syslogSink) Sync() error { return nil }

func (s *syslogSink) Close() error {
	return s.w.Close()
}
