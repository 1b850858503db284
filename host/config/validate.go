// host/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// PIN TABLE: every signal on its own line
	// ------------------------------------------------------------

	p := cfg.Display.Pins
	owner := make(map[uint32]string)
	for _, sig := range []struct {
		name string
		pin  uint32
	}{
		{"d4", p.D4},
		{"d5", p.D5},
		{"d6", p.D6},
		{"d7", p.D7},
		{"enable", p.Enable},
		{"register_select", p.RegisterSelect},
	} {
		if prev, exists := owner[sig.pin]; exists {
			return fmt.Errorf(
				"display.pins: pin %d assigned to both %s and %s",
				sig.pin,
				prev,
				sig.name,
			)
		}
		owner[sig.pin] = sig.name
	}

	// ------------------------------------------------------------
	// TIMING
	// ------------------------------------------------------------

	if m := cfg.Display.MarginUs; m != nil && *m < 0 {
		return fmt.Errorf("display.margin_us must not be negative (got %d)", *m)
	}
	if m := cfg.Display.WriteMarginUs; m != nil && *m < 0 {
		return fmt.Errorf("display.write_margin_us must not be negative (got %d)", *m)
	}
	if cfg.Display.PulseUs < 0 {
		return fmt.Errorf("display.pulse_us must not be negative (got %d)", cfg.Display.PulseUs)
	}

	// 0 means default; anything else must hold the bootstrap configuration
	if q := cfg.Display.QueueCapacity; q != 0 && q < 5 {
		return fmt.Errorf("display.queue_capacity must be at least 5 (got %d)", q)
	}

	// ------------------------------------------------------------
	// SERIAL
	// ------------------------------------------------------------

	if cfg.Serial.Baud < 0 || cfg.Serial.ReadTimeoutMs < 0 {
		return fmt.Errorf("serial: baud and read_timeout_ms must not be negative")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}

	return nil
}
