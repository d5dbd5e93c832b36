package logger

import "strings"

// Kind identifies what sort of sink a target names.
type Kind int

const (
	KindDisabled Kind = iota
	KindStderr
	KindStdout
	KindSyslog
	KindFile
)

// String returns the kind name used in diagnostics and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindDisabled:
		return "disabled"
	case KindStderr:
		return "stderr"
	case KindStdout:
		return "stdout"
	case KindSyslog:
		return "syslog"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Target is a parsed log target. Path is only set for KindFile.
type Target struct {
	Kind Kind
	Path string
}

// ParseTarget maps a target string onto a sink kind. Every string is a
// valid target: anything that is not one of the reserved names is a file
// path.
//
//	"", "none", "off"  disabled (records are discarded)
//	"stderr", "-"      process stderr
//	"stdout"           process stdout
//	"syslog"           local syslog daemon
func ParseTarget(s string) Target {
	s = strings.TrimSpace(s)
	switch s {
	case "", "none", "off":
		return Target{Kind: KindDisabled}
	case "stderr", "-":
		return Target{Kind: KindStderr}
	case "stdout":
		return Target{Kind: KindStdout}
	case "syslog":
		return Target{Kind: KindSyslog}
	default:
		return Target{Kind: KindFile, Path: s}
	}
}

func (t Target) String() string {
	if t.Kind == KindFile {
		return t.Path
	}
	return t.Kind.String()
}
