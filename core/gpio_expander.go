package core

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
)

// Common addresses of PCF8574 based LCD backpacks
const (
	PCF8574Address  = 0x27
	PCF8574AAddress = 0x3F
)

// Pin layout of the usual PCF8574 LCD backpack. P1 (R/W) is held low, so
// the display is only ever written.
const (
	ExpanderRS        GPIOPin = 0
	ExpanderRW        GPIOPin = 1
	ExpanderEnable    GPIOPin = 2
	ExpanderBacklight GPIOPin = 3
	ExpanderD4        GPIOPin = 4
	ExpanderD5        GPIOPin = 5
	ExpanderD6        GPIOPin = 6
	ExpanderD7        GPIOPin = 7
)

var (
	errExpanderPin    = errors.New("expander pin out of range (0-7)")
	errExpanderOutput = errors.New("expander pin not configured as output")
)

// ExpanderGPIO drives the eight quasi-bidirectional lines of a PCF8574 I/O
// expander as GPIO outputs. Every pin change writes the whole port, so the
// last written value is kept as a shadow byte.
type ExpanderGPIO struct {
	bus     drivers.I2C
	addr    uint16
	shadow  uint8
	outputs uint8
	buf     [1]byte
}

// NewExpanderGPIO creates a GPIO driver for the expander at addr
func NewExpanderGPIO(bus drivers.I2C, addr uint16) *ExpanderGPIO {
	return &ExpanderGPIO{bus: bus, addr: addr}
}

// ConfigureOutput marks pin as an output and drives it low
func (e *ExpanderGPIO) ConfigureOutput(pin GPIOPin) error {
	if pin > 7 {
		return errExpanderPin
	}
	e.outputs |= 1 << pin
	return e.SetPin(pin, false)
}

// SetPin sets the pin to high (true) or low (false). The pin must have
// been configured as an output.
func (e *ExpanderGPIO) SetPin(pin GPIOPin, value bool) error {
	if pin > 7 {
		return errExpanderPin
	}
	if e.outputs&(1<<pin) == 0 {
		return fmt.Errorf("%w: P%d", errExpanderOutput, pin)
	}
	if value {
		e.shadow |= 1 << pin
	} else {
		e.shadow &^= 1 << pin
	}
	return e.flush()
}

// GetPin returns the last level written to pin
func (e *ExpanderGPIO) GetPin(pin GPIOPin) (bool, error) {
	if pin > 7 {
		return false, errExpanderPin
	}
	return e.shadow&(1<<pin) != 0, nil
}

// SetBacklight switches the backlight transistor on P3
func (e *ExpanderGPIO) SetBacklight(on bool) error {
	e.outputs |= 1 << ExpanderBacklight
	return e.SetPin(ExpanderBacklight, on)
}

// Port returns the shadow value of the whole port
func (e *ExpanderGPIO) Port() uint8 {
	return e.shadow
}

func (e *ExpanderGPIO) flush() error {
	e.buf[0] = e.shadow
	return e.bus.Tx(e.addr, e.buf[:], nil)
}
