package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/harun/vaslog/internal/metrics"
)

// prefixTimeFormat is the ctime layout used by the optional record prefix.
const prefixTimeFormat = time.ANSIC

// Config holds logger configuration
type Config struct {
	Prefix         bool     // prepend "[<ctime>][<pid>] " to Writef records
	Redaction      bool     // mask credentials in records
	RedactPatterns []string // extra patterns, used when Redaction is set
	Rotation       RotationConfig
	RotateSchedule string // cron expression; rotates file targets on schedule
	ReopenOnRemove bool   // reopen file targets that are removed or renamed
}

// DefaultConfig returns default logger configuration. Records are written
// exactly as formatted; redaction is opt-in.
func DefaultConfig() Config {
	return Config{}
}

// Option customizes a Logger.
type Option func(*Logger)

// WithDiagnostics sets the stream that receives the logger's own events,
// such as the one-time write failure notice.
func WithDiagnostics(diag zerolog.Logger) Option {
	return func(l *Logger) {
		l.diag = diag
	}
}

// WithMetrics records writes, failures and session changes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Logger) {
		l.metrics = m
	}
}

// Logger is a process-wide log facility with a single sink.
//
// A Logger starts uninitialized. Init opens a session on a target, Writef
// appends records to it and Close ends it. Writef on an uninitialized
// Logger does nothing. Init on an open Logger switches to the new target.
// All methods are safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	cfg      Config
	redactor *Redactor
	diag     zerolog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	pid      int
	session  *session
}

type session struct {
	id       string
	target   Target
	sink     sink
	openedAt time.Time
	records  uint64
	bytes    uint64
	failures uint64
	notified bool
	helpers  []interface{ Stop() }
}

// Stats is a snapshot of the current session.
type Stats struct {
	Open      bool
	SessionID string
	Target    string
	OpenedAt  time.Time
	Records   uint64
	Bytes     uint64
	Failures  uint64
}

// New creates an uninitialized logger.
func New(cfg Config, opts ...Option) (*Logger, error) {
	l := &Logger{
		cfg:  cfg,
		diag: defaultDiagnostics(),
		now:  time.Now,
		pid:  os.Getpid(),
	}

	if cfg.Redaction {
		l.redactor = NewRedactor()
		for _, pattern := range cfg.RedactPatterns {
			if err := l.redactor.AddPattern(pattern); err != nil {
				return nil, err
			}
		}
	}

	if cfg.RotateSchedule != "" {
		if _, err := parseSchedule(cfg.RotateSchedule); err != nil {
			return nil, err
		}
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Init opens target and makes it the current session. If a session is
// already open it is closed once the new sink is ready. If the new sink
// cannot be opened the error matches ErrSinkUnavailable and the current
// state, open or not, is left alone.
func (l *Logger) Init(target string) error {
	t := ParseTarget(target)

	s, err := l.openSession(t)
	if err != nil {
		l.diag.Error().Err(err).Str("target", t.String()).Msg("Failed to open log target")
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.session
	l.session = s
	if prev != nil {
		if err := l.endSession(prev); err != nil {
			l.diag.Warn().Err(err).Str("target", prev.target.String()).Msg("Failed to close previous log target")
		}
	}

	l.metrics.SessionOpened(t.Kind.String())
	l.diag.Debug().
		Str("session", s.id).
		Str("target", t.String()).
		Msg("Log session opened")

	return nil
}

// Writef formats a record with fmt.Sprintf semantics and appends it to the
// current session. A single trailing newline in the message is dropped and
// exactly one is added. Writef never fails: without a session the record
// is discarded, and sink errors are counted in Stats and reported once per
// session on the diagnostics stream.
func (l *Logger) Writef(format string, args ...any) {
	l.writeRecord(l.render(fmt.Sprintf(format, args...), l.cfg.Prefix))
}

// Close flushes and closes the current session. Closing an uninitialized
// Logger is a no-op. The Logger is uninitialized afterwards even if the
// sink reports an error.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.session
	if s == nil {
		return nil
	}
	l.session = nil
	l.metrics.SessionClosed()

	return l.endSession(s)
}

// Reopen opens the current target again and swaps it in, for use after
// the file has been moved aside by an external rotation. It is a no-op
// without a session.
func (l *Logger) Reopen() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session == nil {
		return nil
	}
	return l.reopenLocked(l.session)
}

// Rotate starts a fresh file for rotating file targets and reopens plain
// file targets. Other targets are left alone.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session == nil {
		return nil
	}
	return l.rotateLocked(l.session)
}

// Stats returns a snapshot of the current session.
func (l *Logger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.session
	if s == nil {
		return Stats{}
	}
	return Stats{
		Open:      true,
		SessionID: s.id,
		Target:    s.target.String(),
		OpenedAt:  s.openedAt,
		Records:   s.records,
		Bytes:     s.bytes,
		Failures:  s.failures,
	}
}

func (l *Logger) openSession(t Target) (*session, error) {
	sk, err := openSink(t, l.cfg, l.diag)
	if err != nil {
		return nil, err
	}

	id, err := gonanoid.New()
	if err != nil {
		sk.Close()
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	s := &session{
		id:       id,
		target:   t,
		sink:     sk,
		openedAt: l.now(),
	}

	if t.Kind != KindFile {
		return s, nil
	}

	// Helpers check the session ID before acting, so starting them before
	// the session is published is harmless.
	if l.cfg.ReopenOnRemove {
		w, err := newReopenWatcher(t.Path, l.diag, func() { l.reopenSession(s.id) })
		if err != nil {
			l.diag.Warn().Err(err).Str("target", t.Path).Msg("Reopen watcher disabled")
		} else {
			s.helpers = append(s.helpers, w)
		}
	}

	if l.cfg.RotateSchedule != "" {
		rs, err := startRotationSchedule(l.cfg.RotateSchedule, l.now, func() { l.rotateSession(s.id) })
		if err != nil {
			l.diag.Warn().Err(err).Str("schedule", l.cfg.RotateSchedule).Msg("Rotation schedule disabled")
		} else {
			s.helpers = append(s.helpers, rs)
		}
	}

	return s, nil
}

// endSession must be called with l.mu held. Helper Stop methods do not
// wait for in-flight callbacks, which block on l.mu and then find the
// session gone.
func (l *Logger) endSession(s *session) error {
	for _, h := range s.helpers {
		h.Stop()
	}

	syncErr := s.sink.Sync()
	closeErr := s.sink.Close()

	l.diag.Debug().
		Str("session", s.id).
		Str("target", s.target.String()).
		Uint64("records", s.records).
		Uint64("failures", s.failures).
		Msg("Log session closed")

	return errors.Join(syncErr, closeErr)
}

// render builds the bytes of one text record.
func (l *Logger) render(msg string, prefix bool) []byte {
	record := l.frame(msg, prefix)
	if l.redactor != nil {
		record = l.redactor.Redact(record)
	}
	return []byte(record)
}

// frame adds the optional prefix and the single trailing newline.
func (l *Logger) frame(msg string, prefix bool) string {
	var b strings.Builder
	if prefix {
		fmt.Fprintf(&b, "[%s][%d] ", l.now().Format(prefixTimeFormat), l.pid)
	}
	b.WriteString(strings.TrimSuffix(msg, "\n"))
	b.WriteByte('\n')
	return b.String()
}

func (l *Logger) writeRecord(record []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.session
	if s == nil {
		return
	}

	kind := s.target.Kind.String()
	n, err := s.sink.Write(record)
	if err == nil && n < len(record) {
		err = io.ErrShortWrite
	}
	if err != nil {
		s.failures++
		l.metrics.WriteFailed(kind)
		if !s.notified {
			s.notified = true
			l.diag.Warn().
				Err(fmt.Errorf("%w: %w", ErrWriteFailure, err)).
				Str("session", s.id).
				Str("target", s.target.String()).
				Msg("Log sink write failed; further failures in this session are not reported")
		}
		return
	}

	s.records++
	s.bytes += uint64(n)
	l.metrics.RecordWritten(kind, n)
}

func (l *Logger) reopenLocked(s *session) error {
	sk, err := openSink(s.target, l.cfg, l.diag)
	if err != nil {
		l.diag.Error().Err(err).Str("target", s.target.String()).Msg("Failed to reopen log target")
		return err
	}

	old := s.sink
	s.sink = sk
	l.metrics.Reopened()
	l.diag.Info().Str("session", s.id).Str("target", s.target.String()).Msg("Log target reopened")

	return errors.Join(old.Sync(), old.Close())
}

func (l *Logger) rotateLocked(s *session) error {
	if r, ok := s.sink.(rotator); ok {
		if err := r.Rotate(); err != nil {
			l.diag.Error().Err(err).Str("target", s.target.String()).Msg("Failed to rotate log target")
			return err
		}
		l.metrics.Rotated()
		return nil
	}
	if s.target.Kind == KindFile {
		return l.reopenLocked(s)
	}
	return nil
}

// reopenSession and rotateSession are the helper callbacks. They only act
// on the session that started the helper.
func (l *Logger) reopenSession(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session == nil || l.session.id != id {
		return
	}
	// A rotation renames the file and creates a new one at the same path,
	// which the watcher also sees.
	if sinkAtPath(l.session.sink, l.session.target.Path) {
		l.diag.Debug().Str("session", id).Msg("Log file already in place, reopen skipped")
		return
	}
	_ = l.reopenLocked(l.session)
}

// sinkAtPath reports whether sk writes to the file currently found at path.
func sinkAtPath(sk sink, path string) bool {
	st, ok := sk.(interface{ Stat() (os.FileInfo, error) })
	if !ok {
		return false
	}
	current, err := st.Stat()
	if err != nil {
		return false
	}
	onDisk, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(current, onDisk)
}

func (l *Logger) rotateSession(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session == nil || l.session.id != id {
		return
	}
	_ = l.rotateLocked(l.session)
}
