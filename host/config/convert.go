// host/config/convert.go
package config

import (
	"log/slog"

	"charlcd/core"
	"charlcd/host/serial"
	"charlcd/lcd"
)

// PinMap converts the pin table to the driver's wiring
func (p PinsConfig) PinMap() lcd.PinMap {
	return lcd.PinMap{
		D4:             core.GPIOPin(p.D4),
		D5:             core.GPIOPin(p.D5),
		D6:             core.GPIOPin(p.D6),
		D7:             core.GPIOPin(p.D7),
		Enable:         core.GPIOPin(p.Enable),
		RegisterSelect: core.GPIOPin(p.RegisterSelect),
	}
}

// LCD builds the driver configuration. cfg must be normalized.
func (cfg *Config) LCD(logger *slog.Logger) *lcd.Config {
	out := lcd.DefaultConfig(cfg.Display.Pins.PinMap())
	out.Margin = cfg.Display.Margin()
	out.WriteMargin = cfg.Display.WriteMargin()
	out.PulseWidth = cfg.Display.Pulse()
	out.QueueCapacity = cfg.Display.QueueCapacity
	out.Logger = logger
	return out
}

// SerialPort builds the port configuration, or nil when no device is set
func (cfg *Config) SerialPort() *serial.Config {
	if cfg.Serial.Device == "" {
		return nil
	}
	return &serial.Config{
		Device:      cfg.Serial.Device,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: cfg.Serial.ReadTimeoutMs,
	}
}

