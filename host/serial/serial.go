package serial

import (
	"io"
)

// Port is the read side of the console line feeding the display.
// Nothing is ever sent back to the sender.
type Port interface {
	io.ReadCloser

	// Flush drops bytes that arrived before the display was ready
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate (115200 for a typical dev-board console)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a default configuration for a USB serial console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100, // 100ms read timeout
	}
}
