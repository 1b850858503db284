// Package lcd drives an HD44780 compatible 16x2 character display over a
// 4-bit parallel bus without blocking callers on display timing.
//
// Characters go through a small instruction queue to a state machine that
// sends each byte as two nibbles and waits out the controller's execution
// time using one-shot timers:
//
//	drv, err := lcd.Open(gpio, sched, lcd.DefaultConfig(pins))
//	if err != nil {
//	    return err
//	}
//	drv.Write([]byte("hello"))
package lcd

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"charlcd/core"
)

// Defaults used by DefaultConfig
const (
	DefaultMargin        = 100 * time.Microsecond
	DefaultWriteMargin   = 20 * time.Microsecond
	DefaultPulseWidth    = 3 * time.Microsecond
	DefaultQueueCapacity = 10
)

// minQueueCapacity is the number of instructions bootstrap queues before
// the machine first runs
const minQueueCapacity = 5

var errPulseTooShort = errors.New("enable pulse shorter than controller minimum")

// Config holds driver configuration
type Config struct {
	// Pins maps bus signals to GPIO pins
	Pins PinMap

	// Margin is added to every delay of the power-on handshake and the
	// configuration it queues
	Margin time.Duration

	// WriteMargin is added to the execution time of display-on and of
	// every instruction queued by WriteCharacter
	WriteMargin time.Duration

	// PulseWidth is the enable high time, at least MinPulseWidth
	PulseWidth time.Duration

	// QueueCapacity bounds the instruction queue
	QueueCapacity int

	// Delay blocks the caller during the bootstrap handshake (time.Sleep if nil)
	Delay func(time.Duration)

	// Hold keeps the enable line high inside a timer callback (busy-wait if nil)
	Hold func(time.Duration)

	// Logger receives driver logs (slog.Default if nil)
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with datasheet timing, a 100µs
// margin during bootstrap and 20µs afterwards
func DefaultConfig(pins PinMap) *Config {
	return &Config{
		Pins:          pins,
		Margin:        DefaultMargin,
		WriteMargin:   DefaultWriteMargin,
		PulseWidth:    DefaultPulseWidth,
		QueueCapacity: DefaultQueueCapacity,
	}
}

// Driver owns the queue, state machine and cursor of one display
type Driver struct {
	cfg     Config
	logger  *slog.Logger
	bus     *Bus
	queue   *Queue
	machine *Machine

	mu     sync.Mutex // serializes producers and guards cursor
	cursor uint8
}

// Open configures the pins, runs the power-on handshake and queues
// display-on. The returned driver accepts characters immediately; the
// configuration instructions are still draining through the scheduler.
// Any failure here is fatal for the display.
func Open(gpio core.GPIODriver, sched Scheduler, cfg *Config) (*Driver, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if gpio == nil || sched == nil {
		return nil, errors.New("gpio driver and scheduler are required")
	}
	c := *cfg
	if err := c.Pins.Validate(); err != nil {
		return nil, err
	}
	if c.PulseWidth < MinPulseWidth {
		return nil, fmt.Errorf("%w: %s", errPulseTooShort, c.PulseWidth)
	}
	if c.QueueCapacity < minQueueCapacity {
		return nil, fmt.Errorf("%w: %d, need at least %d", ErrQueueCapacity, c.QueueCapacity, minQueueCapacity)
	}
	if c.Delay == nil {
		c.Delay = time.Sleep
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	queue, err := NewQueue(c.QueueCapacity)
	if err != nil {
		return nil, err
	}
	bus := NewBus(gpio, c.Pins, c.PulseWidth, c.Hold)
	if err := bus.Configure(); err != nil {
		return nil, fmt.Errorf("configure lcd pins: %w", err)
	}

	d := &Driver{
		cfg:     c,
		logger:  c.Logger,
		bus:     bus,
		queue:   queue,
		machine: NewMachine(queue, bus, sched, c.Logger),
	}
	if err := d.bootstrap(); err != nil {
		return nil, fmt.Errorf("lcd bootstrap: %w", err)
	}

	d.logger.Info("lcd:display-on")
	d.queue.Enqueue(command(CmdDisplayOn, ExecCommand, c.WriteMargin))
	d.machine.Advance()
	if err := d.machine.Err(); err != nil {
		return nil, fmt.Errorf("lcd start: %w", err)
	}
	d.logger.Info("lcd:ready")
	return d, nil
}

// State returns the state machine's current phase
func (d *Driver) State() State {
	return d.machine.State()
}

// Idle reports whether nothing is queued or in flight
func (d *Driver) Idle() bool {
	return d.machine.Idle()
}

// Pending returns the number of queued instructions not yet started
func (d *Driver) Pending() int {
	return d.queue.Len()
}

// Err returns the last timer failure seen by the state machine
func (d *Driver) Err() error {
	return d.machine.Err()
}
