package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// RunIDKey is the context key for run ID
	RunIDKey ContextKey = "run_id"
)

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// NewRunID generates a new run ID
func NewRunID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetTraceID retrieves the trace ID stored with WithTraceID
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetRunID retrieves the run ID from the context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// TraceIDFromContext prefers the trace ID of a valid OpenTelemetry span in
// ctx and falls back to the one stored with WithTraceID.
func TraceIDFromContext(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return GetTraceID(ctx)
}

// NewRequestContext creates a new context with a new trace ID
func NewRequestContext(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}

// Annotate adds the trace and run IDs in ctx to a zerolog context.
func Annotate(ctx context.Context, zctx zerolog.Context) zerolog.Context {
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		zctx = zctx.Str("trace_id", traceID)
	}
	if runID := GetRunID(ctx); runID != "" {
		zctx = zctx.Str("run_id", runID)
	}
	return zctx
}
