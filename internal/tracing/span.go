package tracing

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecordEventName is the span event name used for mirrored log records.
const RecordEventName = "log.record"

// SpanHook returns a zerolog hook that mirrors every event onto the
// recording span in ctx, if there is one.
func SpanHook(ctx context.Context) zerolog.Hook {
	return zerolog.HookFunc(func(e *zerolog.Event, level zerolog.Level, msg string) {
		span := trace.SpanFromContext(ctx)
		if !span.IsRecording() {
			return
		}

		attrs := []attribute.KeyValue{
			attribute.String("log.severity", level.String()),
			attribute.String("log.message", msg),
		}
		if runID := GetRunID(ctx); runID != "" {
			attrs = append(attrs, attribute.String("log.run_id", runID))
		}

		span.AddEvent(RecordEventName, trace.WithAttributes(attrs...))
	})
}
