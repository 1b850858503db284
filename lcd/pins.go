package lcd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"charlcd/core"
)

// Signal names one of the six lines of the 4-bit bus
type Signal uint8

const (
	SignalD4 Signal = iota
	SignalD5
	SignalD6
	SignalD7
	SignalEnable
	SignalRegisterSelect
	numSignals
)

func (s Signal) String() string {
	switch s {
	case SignalD4:
		return "D4"
	case SignalD5:
		return "D5"
	case SignalD6:
		return "D6"
	case SignalD7:
		return "D7"
	case SignalEnable:
		return "E"
	case SignalRegisterSelect:
		return "RS"
	default:
		return "Signal(" + strconv.Itoa(int(s)) + ")"
	}
}

// MinPulseWidth is the controller's minimum enable high time
const MinPulseWidth = 500 * time.Nanosecond

var errPinConflict = errors.New("pin assigned to more than one signal")

// PinMap assigns each bus signal to a GPIO pin
type PinMap struct {
	D4             core.GPIOPin
	D5             core.GPIOPin
	D6             core.GPIOPin
	D7             core.GPIOPin
	Enable         core.GPIOPin
	RegisterSelect core.GPIOPin
}

// BackpackPins is the wiring of a PCF8574 LCD backpack
var BackpackPins = PinMap{
	D4:             core.ExpanderD4,
	D5:             core.ExpanderD5,
	D6:             core.ExpanderD6,
	D7:             core.ExpanderD7,
	Enable:         core.ExpanderEnable,
	RegisterSelect: core.ExpanderRS,
}

// Pin returns the GPIO pin carrying s
func (p PinMap) Pin(s Signal) core.GPIOPin {
	switch s {
	case SignalD4:
		return p.D4
	case SignalD5:
		return p.D5
	case SignalD6:
		return p.D6
	case SignalD7:
		return p.D7
	case SignalEnable:
		return p.Enable
	default:
		return p.RegisterSelect
	}
}

// Validate checks that no pin carries two signals
func (p PinMap) Validate() error {
	seen := make(map[core.GPIOPin]Signal, numSignals)
	for s := SignalD4; s < numSignals; s++ {
		pin := p.Pin(s)
		if prev, ok := seen[pin]; ok {
			return fmt.Errorf("%w: pin %d used by %s and %s", errPinConflict, pin, prev, s)
		}
		seen[pin] = s
	}
	return nil
}

// Bus drives the six signal lines through a GPIO backend
type Bus struct {
	gpio  core.GPIODriver
	pins  PinMap
	pulse time.Duration
	hold  func(time.Duration)
}

// NewBus creates a bus. hold keeps the enable line high for pulse; nil
// busy-waits.
func NewBus(gpio core.GPIODriver, pins PinMap, pulse time.Duration, hold func(time.Duration)) *Bus {
	if hold == nil {
		hold = core.SpinWait
	}
	return &Bus{gpio: gpio, pins: pins, pulse: pulse, hold: hold}
}

// Configure makes every signal an output driven low
func (b *Bus) Configure() error {
	for s := SignalD4; s < numSignals; s++ {
		if err := b.gpio.ConfigureOutput(b.pins.Pin(s)); err != nil {
			return fmt.Errorf("configure %s (pin %d): %w", s, b.pins.Pin(s), err)
		}
		if err := b.SetLevel(s, false); err != nil {
			return err
		}
	}
	return nil
}

// SetLevel drives one signal
func (b *Bus) SetLevel(s Signal, high bool) error {
	if err := b.gpio.SetPin(b.pins.Pin(s), high); err != nil {
		return fmt.Errorf("set %s: %w", s, err)
	}
	return nil
}

// PulseEnable raises E, holds it for the pulse width and drops it. The
// controller latches the bus on the falling edge.
func (b *Bus) PulseEnable() error {
	if err := b.SetLevel(SignalEnable, true); err != nil {
		return err
	}
	b.hold(b.pulse)
	return b.SetLevel(SignalEnable, false)
}

// SendNibble puts the low four bits of n on D4..D7 with RS selecting the
// data register when isData is set, then pulses E. Every line is written
// even after a failure; the first error is returned.
func (b *Bus) SendNibble(n uint8, isData bool) error {
	err := b.SetLevel(SignalRegisterSelect, isData)
	for i := Signal(0); i < 4; i++ {
		if e := b.SetLevel(SignalD4+i, n&(1<<i) != 0); e != nil && err == nil {
			err = e
		}
	}
	if e := b.PulseEnable(); e != nil && err == nil {
		err = e
	}
	return err
}
