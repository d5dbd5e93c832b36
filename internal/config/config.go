package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harun/vaslog/internal/logger"
)

// Config represents the vaslog configuration file
type Config struct {
	// Process log
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Diagnostics stream
	Diagnostics DiagnosticsConfig `json:"diagnostics" mapstructure:"diagnostics"`

	// Metrics endpoint
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
}

// LoggingConfig holds process log configuration
type LoggingConfig struct {
	Target         string   `json:"target" mapstructure:"target"`
	Prefix         bool     `json:"prefix" mapstructure:"prefix"`
	Redaction      bool     `json:"redaction" mapstructure:"redaction"`
	RedactPatterns []string `json:"redact_patterns" mapstructure:"redact_patterns"`
	MaxSize        int      `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge         int      `json:"max_age" mapstructure:"max_age"`   // days
	Compress       bool     `json:"compress" mapstructure:"compress"`
	RotateSchedule string   `json:"rotate_schedule" mapstructure:"rotate_schedule"`
	ReopenOnRemove bool     `json:"reopen_on_remove" mapstructure:"reopen_on_remove"`
}

// DiagnosticsConfig holds configuration for the facility's own log output
type DiagnosticsConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// MetricsConfig holds Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Target:    "stderr",
			Redaction: true,
		},
		Diagnostics: DiagnosticsConfig{
			Level:     "info",
			Pretty:    true,
			Redaction: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// LoggerConfig converts the logging section into a logger.Config.
func (c LoggingConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Prefix:         c.Prefix,
		Redaction:      c.Redaction,
		RedactPatterns: c.RedactPatterns,
		Rotation: logger.RotationConfig{
			MaxBytes: int64(c.MaxSize) * 1024 * 1024,
			MaxAge:   c.MaxAge,
			Compress: c.Compress,
		},
		RotateSchedule: c.RotateSchedule,
		ReopenOnRemove: c.ReopenOnRemove,
	}
}

// DiagConfig converts the diagnostics section into a logger.DiagConfig.
func (c DiagnosticsConfig) DiagConfig() logger.DiagConfig {
	return logger.DiagConfig{
		Level:     c.Level,
		Pretty:    c.Pretty,
		Redaction: c.Redaction,
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	errs := NewValidator().Validate(c)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
}
