package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/harun/vaslog/internal/logger"
)

// Schema is the JSON schema for the configuration file.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "logging": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "target": {"type": "string"},
        "prefix": {"type": "boolean"},
        "redaction": {"type": "boolean"},
        "redact_patterns": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "max_size": {"type": "integer", "minimum": 0},
        "max_age": {"type": "integer", "minimum": 0},
        "compress": {"type": "boolean"},
        "rotate_schedule": {"type": "string"},
        "reopen_on_remove": {"type": "boolean"}
      }
    },
    "diagnostics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"type": "string", "enum": ["trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled", ""]},
        "pretty": {"type": "boolean"},
        "redaction": {"type": "boolean"}
      }
    },
    "metrics": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "addr": {"type": "string"}
      }
    }
  }
}`

// Validator validates configuration documents and values
type Validator struct {
	schemaLoader gojsonschema.JSONLoader
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		schemaLoader: gojsonschema.NewStringLoader(Schema),
	}
}

// ValidateDocument validates a raw config file against the JSON schema
func (v *Validator) ValidateDocument(data []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(v.schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, err := range result.Errors() {
			msgs = append(msgs, err.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(msgs, "; "))
	}

	return nil
}

// ValidateLevel validates a diagnostics level. Empty means the default.
func (v *Validator) ValidateLevel(level string) error {
	if level == "" {
		return nil
	}
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log level: %s", level)
	}
	return nil
}

// ValidateRotation validates size and age limits
func (v *Validator) ValidateRotation(cfg LoggingConfig) error {
	if cfg.MaxSize < 0 {
		return fmt.Errorf("logging.max_size must be >= 0, got %d", cfg.MaxSize)
	}
	if cfg.MaxAge < 0 {
		return fmt.Errorf("logging.max_age must be >= 0, got %d", cfg.MaxAge)
	}

	rotates := cfg.MaxSize > 0 || cfg.RotateSchedule != ""
	if rotates && logger.ParseTarget(cfg.Target).Kind != logger.KindFile {
		return fmt.Errorf("rotation requires a file target, got %q", cfg.Target)
	}
	return nil
}

// ValidateSchedule validates a rotation cron expression. Empty disables it.
func (v *Validator) ValidateSchedule(expr string) error {
	if expr == "" {
		return nil
	}
	_, err := logger.NextRotation(expr, time.Now())
	return err
}

// ValidateRedactPatterns checks that every extra pattern compiles.
func (v *Validator) ValidateRedactPatterns(patterns []string) error {
	r := logger.NewRedactor()
	for _, p := range patterns {
		if err := r.AddPattern(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMetricsAddr validates a host:port listen address
func (v *Validator) ValidateMetricsAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("metrics address cannot be empty")
	}

	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid metrics address %q: %w", addr, err)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid metrics port %q", port)
	}
	return nil
}

// Validate performs comprehensive validation and returns every problem found
func (v *Validator) Validate(cfg *Config) []error {
	var errs []error

	if err := v.ValidateLevel(cfg.Diagnostics.Level); err != nil {
		errs = append(errs, err)
	}
	if err := v.ValidateRotation(cfg.Logging); err != nil {
		errs = append(errs, err)
	}
	if err := v.ValidateSchedule(cfg.Logging.RotateSchedule); err != nil {
		errs = append(errs, err)
	}
	if cfg.Logging.Redaction {
		if err := v.ValidateRedactPatterns(cfg.Logging.RedactPatterns); err != nil {
			errs = append(errs, err)
		}
	}
	if cfg.Metrics.Enabled {
		if err := v.ValidateMetricsAddr(cfg.Metrics.Addr); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}
