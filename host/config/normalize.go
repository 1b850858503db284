// host/config/normalize.go
package config

import (
	"log/slog"
	"time"
)

// Defaults applied by Normalize
const (
	DefaultMarginUs      = 100
	DefaultWriteMarginUs = 20
	DefaultPulseUs       = 3
	DefaultQueueCapacity = 10
	DefaultBaud          = 115200
	DefaultReadTimeoutMs = 100
	DefaultLogLevel      = "info"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Display
	if d.MarginUs == nil {
		m := DefaultMarginUs
		d.MarginUs = &m
	}
	if d.WriteMarginUs == nil {
		m := DefaultWriteMarginUs
		d.WriteMarginUs = &m
	}
	if d.PulseUs == 0 {
		d.PulseUs = DefaultPulseUs
	}
	if d.QueueCapacity == 0 {
		d.QueueCapacity = DefaultQueueCapacity
	}

	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = DefaultBaud
	}
	if cfg.Serial.ReadTimeoutMs == 0 {
		cfg.Serial.ReadTimeoutMs = DefaultReadTimeoutMs
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// WriteMargin returns the normalized margin for character writes
func (d DisplayConfig) WriteMargin() time.Duration {
	if d.WriteMarginUs == nil {
		return DefaultWriteMarginUs * time.Microsecond
	}
	return time.Duration(*d.WriteMarginUs) * time.Microsecond
}

// Margin returns the normalized bootstrap margin
func (d DisplayConfig) Margin() time.Duration {
	if d.MarginUs == nil {
		return DefaultMarginUs * time.Microsecond
	}
	return time.Duration(*d.MarginUs) * time.Microsecond
}

// Pulse returns the normalized enable pulse width
func (d DisplayConfig) Pulse() time.Duration {
	return time.Duration(d.PulseUs) * time.Microsecond
}

// SlogLevel maps the configured level name
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
