package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

const redactedText = "[REDACTED]"

// sensitiveKey matches JSON field names whose string values are masked whole.
var sensitiveKey = regexp.MustCompile(`(?i)(password|passwd|pwd|secret|token|api[_-]?key|authorization)`)

// Redactor masks credentials before a record reaches its sink.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor creates a redactor with the default credential patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*regexp.Regexp{
			// API keys
			regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),

			// Bearer tokens
			regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._~+/=-]+`),

			// Passwords
			regexp.MustCompile(`(?i)(password|passwd|pwd)["\s:=]+[^\s"]+`),

			// Auth tokens
			regexp.MustCompile(`(?i)token["\s:=]+[a-zA-Z0-9._-]{20,}`),

			// AWS access key IDs
			regexp.MustCompile(`AKIA[0-9A-Z]{16}`),

			// PEM private keys
			regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),

			// Generic secrets
			regexp.MustCompile(`(?i)secret["\s:=]+[^\s"]+`),
		},
	}
}

// AddPattern adds a custom redaction pattern
func (r *Redactor) AddPattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid redaction pattern %q: %w", pattern, err)
	}
	r.patterns = append(r.patterns, re)
	return nil
}

// Redact replaces every match of every pattern with [REDACTED].
func (r *Redactor) Redact(s string) string {
	result := s
	for _, pattern := range r.patterns {
		result = pattern.ReplaceAllString(result, redactedText)
	}
	return result
}

// RedactJSON redacts a JSON object record field by field: string values of
// sensitive keys are replaced whole and every other string goes through
// Redact. ok is false when p is not a single JSON object.
func (r *Redactor) RedactJSON(p []byte) (out []byte, ok bool) {
	trimmed := bytes.TrimSpace(p)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || dec.More() {
		return nil, false
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.redactValue(obj)); err != nil {
		return nil, false
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), true
}

func (r *Redactor) redactValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, field := range val {
			if _, isString := field.(string); isString && sensitiveKey.MatchString(k) {
				val[k] = redactedText
				continue
			}
			val[k] = r.redactValue(field)
		}
		return val
	case []any:
		for i := range val {
			val[i] = r.redactValue(val[i])
		}
		return val
	case string:
		return r.Redact(val)
	default:
		return v
	}
}

// Wrap returns a writer that redacts each Write before passing it to w.
// The reported byte count is len(p) so callers that check for short
// writes are not confused by the length change.
func (r *Redactor) Wrap(w io.Writer) io.Writer {
	return &redactingWriter{
		writer:   w,
		redactor: r,
	}
}

type redactingWriter struct {
	writer   io.Writer
	redactor *Redactor
}

func (w *redactingWriter) Write(p []byte) (n int, err error) {
	redacted, ok := w.redactor.RedactJSON(p)
	if ok {
		if bytes.HasSuffix(p, []byte("\n")) {
			redacted = append(redacted, '\n')
		}
	} else {
		redacted = []byte(w.redactor.Redact(string(p)))
	}

	if _, err := w.writer.Write(redacted); err != nil {
		return 0, err
	}
	return len(p), nil
}
