package logger

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/harun/vaslog/internal/tracing"
)

// recordWriter turns every Write into one record of the current session.
type recordWriter struct {
	l *Logger
}

// Write always reports success; sink failures are handled the same way as
// for Writef. JSON object records are redacted field by field so they stay
// valid JSON.
func (w recordWriter) Write(p []byte) (int, error) {
	if w.l.redactor != nil {
		if redacted, ok := w.l.redactor.RedactJSON(p); ok {
			w.l.writeRecord([]byte(w.l.frame(string(redacted), false)))
			return len(p), nil
		}
	}
	w.l.writeRecord(w.l.render(string(p), false))
	return len(p), nil
}

// Writer returns an io.Writer whose every Write becomes one record. It
// suits adapters that emit whole lines per call, such as log.Logger.
func (l *Logger) Writer() io.Writer {
	return recordWriter{l: l}
}

// Structured returns a zerolog logger whose events are written as JSON
// records to the current session.
func (l *Logger) Structured() zerolog.Logger {
	return zerolog.New(l.Writer()).With().Timestamp().Logger()
}

// StructuredContext is Structured with the trace and run IDs carried by
// ctx attached to every event. Events are also added to the recording span
// in ctx.
func (l *Logger) StructuredContext(ctx context.Context) zerolog.Logger {
	return tracing.Annotate(ctx, zerolog.New(l.Writer()).With().Timestamp()).
		Logger().
		Hook(tracing.SpanHook(ctx))
}
