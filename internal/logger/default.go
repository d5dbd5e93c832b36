package logger

import "sync/atomic"

var std atomic.Pointer[Logger]

// Default returns the process-wide logger, creating it with DefaultConfig
// on first use.
func Default() *Logger {
	if l := std.Load(); l != nil {
		return l
	}

	// DefaultConfig has no custom patterns or schedule, so New cannot fail.
	l, _ := New(DefaultConfig())
	if std.CompareAndSwap(nil, l) {
		return l
	}
	return std.Load()
}

// SetDefault replaces the process-wide logger. The previous one is not
// closed. Passing nil makes the next Default call build a fresh one.
func SetDefault(l *Logger) {
	std.Store(l)
}

// Init opens target on the process-wide logger.
func Init(target string) error {
	return Default().Init(target)
}

// Writef appends a record to the process-wide logger.
func Writef(format string, args ...any) {
	Default().Writef(format, args...)
}

// Close closes the process-wide logger's session.
func Close() error {
	return Default().Close()
}
