package logger

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/vaslog/internal/tracing"
)

func decodeRecords(t *testing.T, content string) []map[string]any {
	t.Helper()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSuffix(content, "\n"), "\n") {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &record), "record %q", line)
		records = append(records, record)
	}
	return records
}

func TestStructured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")
	l, _ := newTestLogger(t, Config{})
	require.NoError(t, l.Init(path))

	events := l.Structured()
	events.Info().Str("host", "10.0.0.1").Int("port", 443).Msg("port open")
	events.Warn().Msg("slow host")
	require.NoError(t, l.Close())

	records := decodeRecords(t, readFile(t, path))
	require.Len(t, records, 2)

	assert.Equal(t, "info", records[0]["level"])
	assert.Equal(t, "10.0.0.1", records[0]["host"])
	assert.Equal(t, float64(443), records[0]["port"])
	assert.Equal(t, "port open", records[0]["message"])
	assert.Contains(t, records[0], "time")

	assert.Equal(t, "warn", records[1]["level"])
}

func TestStructuredContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")
	l, _ := newTestLogger(t, Config{})
	require.NoError(t, l.Init(path))

	ctx := tracing.WithTraceID(context.Background(), "trace-42")
	ctx = tracing.WithRunID(ctx, "run-7")

	events := l.StructuredContext(ctx)
	events.Info().Msg("scan started")
	require.NoError(t, l.Close())

	records := decodeRecords(t, readFile(t, path))
	require.Len(t, records, 1)
	assert.Equal(t, "trace-42", records[0]["trace_id"])
	assert.Equal(t, "run-7", records[0]["run_id"])
}

func TestStructuredWithoutSession(t *testing.T) {
	l, _ := newTestLogger(t, Config{})

	assert.NotPanics(t, func() {
		events := l.Structured()
		events.Error().Msg("nobody listens")
	})
	assert.Zero(t, l.Stats().Records)
}

func TestStructuredSharesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")
	l, _ := newTestLogger(t, Config{})
	events := l.Structured()

	require.NoError(t, l.Init(path))
	l.Writef("plain")
	events.Info().Msg("structured")
	require.NoError(t, l.Close())

	lines := strings.Split(strings.TrimSuffix(readFile(t, path), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "plain", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "{"))
}

func TestStructuredRedactionKeepsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")
	l, _ := newTestLogger(t, Config{Redaction: true})
	require.NoError(t, l.Init(path))

	events := l.Structured()
	events.Info().
		Str("password", "hunter2").
		Str("note", "sent Bearer abc.def.ghi upstream").
		Int("token_count", 12).
		Msg("login <ok>")
	require.NoError(t, l.Close())

	content := readFile(t, path)
	assert.NotContains(t, content, "hunter2")
	assert.NotContains(t, content, "abc.def.ghi")

	records := decodeRecords(t, content)
	require.Len(t, records, 1)
	assert.Equal(t, "[REDACTED]", records[0]["password"])
	assert.Equal(t, "sent [REDACTED] upstream", records[0]["note"])
	assert.Equal(t, float64(12), records[0]["token_count"])
	assert.Equal(t, "login <ok>", records[0]["message"])
	assert.Equal(t, "info", records[0]["level"])
}

func TestWriterRedactsPlainLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")
	l, _ := newTestLogger(t, Config{Redaction: true})
	require.NoError(t, l.Init(path))

	_, err := l.Writer().Write([]byte("retry with password=hunter2\n"))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	assert.Equal(t, "retry with [REDACTED]\n", readFile(t, path))
}
