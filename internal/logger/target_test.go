package logger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input    string
		expected Target
	}{
		{"", Target{Kind: KindDisabled}},
		{"none", Target{Kind: KindDisabled}},
		{"off", Target{Kind: KindDisabled}},
		{"   ", Target{Kind: KindDisabled}},
		{"stderr", Target{Kind: KindStderr}},
		{"-", Target{Kind: KindStderr}},
		{"stdout", Target{Kind: KindStdout}},
		{"syslog", Target{Kind: KindSyslog}},
		{"/var/log/vaslog/scan.log", Target{Kind: KindFile, Path: "/var/log/vaslog/scan.log"}},
		{" relative.log ", Target{Kind: KindFile, Path: "relative.log"}},
		{"Syslog", Target{Kind: KindFile, Path: "Syslog"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTarget(tt.input))
		})
	}
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "disabled", ParseTarget("").String())
	assert.Equal(t, "stderr", ParseTarget("-").String())
	assert.Equal(t, "stdout", ParseTarget("stdout").String())
	assert.Equal(t, "syslog", ParseTarget("syslog").String())
	assert.Equal(t, "/tmp/x.log", ParseTarget("/tmp/x.log").String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestOpenSink(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		s, err := openSink(Target{Kind: KindDisabled}, Config{}, zerolog.Nop())
		require.NoError(t, err)

		n, err := s.Write([]byte("dropped\n"))
		assert.NoError(t, err)
		assert.Equal(t, 8, n)
		assert.NoError(t, s.Close())
	})

	t.Run("standard streams stay open", func(t *testing.T) {
		for _, kind := range []Kind{KindStderr, KindStdout} {
			s, err := openSink(Target{Kind: kind}, Config{}, zerolog.Nop())
			require.NoError(t, err)
			assert.NoError(t, s.Sync())
			assert.NoError(t, s.Close())
			assert.NoError(t, s.Close())
		}
	})

	t.Run("file with rotation uses rotating writer", func(t *testing.T) {
		path := t.TempDir() + "/scan.log"
		s, err := openSink(ParseTarget(path), Config{Rotation: RotationConfig{MaxBytes: 10}}, zerolog.Nop())
		require.NoError(t, err)
		defer s.Close()

		_, ok := s.(*RotatingWriter)
		assert.True(t, ok)
	})

	t.Run("file with schedule uses rotating writer", func(t *testing.T) {
		path := t.TempDir() + "/scan.log"
		s, err := openSink(ParseTarget(path), Config{RotateSchedule: "@daily"}, zerolog.Nop())
		require.NoError(t, err)
		defer s.Close()

		_, ok := s.(rotator)
		assert.True(t, ok)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := openSink(Target{Kind: Kind(42)}, Config{}, zerolog.Nop())
		assert.ErrorIs(t, err, ErrSinkUnavailable)
	})
}

func TestSyslogTarget(t *testing.T) {
	l, _ := newTestLogger(t, Config{})

	// Build hosts may not run a syslog daemon; either outcome is valid as
	// long as a failure is reported as an unavailable sink.
	err := l.Init("syslog")
	if err != nil {
		assert.ErrorIs(t, err, ErrSinkUnavailable)
		assert.False(t, l.Stats().Open)
		return
	}

	l.Writef("vaslog syslog test record")
	assert.NoError(t, l.Close())
}

func TestSinkError(t *testing.T) {
	cause := errors.New("permission denied")
	err := newSinkError(ParseTarget("/root/scan.log"), cause)

	assert.ErrorIs(t, err, ErrSinkUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "/root/scan.log")
	assert.Contains(t, err.Error(), "permission denied")
}
