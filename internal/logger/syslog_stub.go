//go:build windows || plan9 || wasm || js

package logger

func openSyslog() (sink, error) {
	return nil, ErrSyslogUnsupported
}
