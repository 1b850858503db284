// host/config/config.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Display DisplayConfig `yaml:"display"`
	Serial  SerialConfig  `yaml:"serial"`
	Log     LogConfig     `yaml:"log"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Pins          PinsConfig `yaml:"pins"`
	MarginUs      *int       `yaml:"margin_us"`       // bootstrap; nil => default 100
	WriteMarginUs *int       `yaml:"write_margin_us"` // writes; nil => default 20
	PulseUs       int        `yaml:"pulse_us"`
	QueueCapacity int        `yaml:"queue_capacity"`
}

// Physical line numbers per bus signal
type PinsConfig struct {
	D4             uint32 `yaml:"d4"`
	D5             uint32 `yaml:"d5"`
	D6             uint32 `yaml:"d6"`
	D7             uint32 `yaml:"d7"`
	Enable         uint32 `yaml:"enable"`
	RegisterSelect uint32 `yaml:"register_select"`
}

// ---- SERIAL INPUT ----

type SerialConfig struct {
	Device        string `yaml:"device"` // empty => read the terminal
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

// Load reads and decodes a YAML configuration file.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML configuration bytes. An empty document yields
// the zero config.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}
