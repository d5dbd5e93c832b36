package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func TestNewTraceID(t *testing.T) {
	id1 := NewTraceID()
	id2 := NewTraceID()

	if id1 == "" {
		t.Error("NewTraceID returned empty string")
	}

	if id1 == id2 {
		t.Error("NewTraceID returned duplicate IDs")
	}
}

func TestNewRunID(t *testing.T) {
	id1 := NewRunID()
	id2 := NewRunID()

	if id1 == "" {
		t.Error("NewRunID returned empty string")
	}

	if id1 == id2 {
		t.Error("NewRunID returned duplicate IDs")
	}
}

func TestWithTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "test-trace-id")

	if got := GetTraceID(ctx); got != "test-trace-id" {
		t.Errorf("Expected trace ID test-trace-id, got %s", got)
	}
}

func TestWithRunID(t *testing.T) {
	ctx := WithRunID(context.Background(), "test-run-id")

	if got := GetRunID(ctx); got != "test-run-id" {
		t.Errorf("Expected run ID test-run-id, got %s", got)
	}
}

func TestGetIDsEmpty(t *testing.T) {
	ctx := context.Background()

	if traceID := GetTraceID(ctx); traceID != "" {
		t.Errorf("Expected empty trace ID, got %s", traceID)
	}
	if runID := GetRunID(ctx); runID != "" {
		t.Errorf("Expected empty run ID, got %s", runID)
	}
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		t.Errorf("Expected empty trace ID from context, got %s", traceID)
	}
}

func TestTraceIDFromContextPrefersSpan(t *testing.T) {
	traceID := trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36}
	spanID := trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	ctx := WithTraceID(context.Background(), "fallback")
	ctx = trace.ContextWithSpanContext(ctx, sc)

	if got := TraceIDFromContext(ctx); got != traceID.String() {
		t.Errorf("Expected span trace ID %s, got %s", traceID.String(), got)
	}
}

func TestTraceIDFromContextFallback(t *testing.T) {
	ctx := WithTraceID(context.Background(), "fallback")

	if got := TraceIDFromContext(ctx); got != "fallback" {
		t.Errorf("Expected fallback trace ID, got %s", got)
	}
}

func TestNewRequestContext(t *testing.T) {
	ctx := NewRequestContext(context.Background())

	if GetTraceID(ctx) == "" {
		t.Error("NewRequestContext did not set a trace ID")
	}
}

func TestAnnotate(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-1")
	ctx = WithRunID(ctx, "run-1")

	var buf bytes.Buffer
	logger := Annotate(ctx, zerolog.New(&buf).With()).Logger()
	logger.Log().Msg("hello")

	var fields map[string]any
	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if fields["trace_id"] != "trace-1" {
		t.Errorf("Expected trace_id trace-1, got %v", fields["trace_id"])
	}
	if fields["run_id"] != "run-1" {
		t.Errorf("Expected run_id run-1, got %v", fields["run_id"])
	}
}

func TestAnnotateEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Annotate(context.Background(), zerolog.New(&buf).With()).Logger()
	logger.Log().Msg("hello")

	if bytes.Contains(buf.Bytes(), []byte("trace_id")) {
		t.Errorf("Expected no trace_id field, got %s", buf.String())
	}
}
