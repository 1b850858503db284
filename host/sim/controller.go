// Package sim models an HD44780 controller behind a GPIO bus. It decodes
// the nibbles latched on the enable line into instructions, keeps DDRAM
// and the address counter the way the chip does, and reports instructions
// that arrive while the controller would still be busy.
package sim

import (
	"strings"
	"sync"

	"charlcd/core"
)

// Controller execution times in µs
const (
	busyCommand   = 37
	busyData      = 43
	busyClearHome = 1520
	busyPowerOn   = 15000
	busyFirstInit = 4100
	busySecInit   = 100
	ddramSize     = 0x80
	lineWidth     = 0x28 // DDRAM cells per line in 2-line mode
	line2Base     = 0x40
	visibleCols   = 16
)

// Wiring tells the model which GPIO pins carry which bus signals
type Wiring struct {
	D4, D5, D6, D7 core.GPIOPin
	Enable         core.GPIOPin
	RegisterSelect core.GPIOPin
}

// Nibble is one latch of the bus
type Nibble struct {
	Value uint8
	RS    bool
	At    uint32
}

// Op is one instruction the controller executed
type Op struct {
	Opcode uint8
	IsData bool
	At     uint32
}

// Violation is an instruction that arrived before the previous one finished
type Violation struct {
	Opcode    uint8
	At        uint32
	BusyUntil uint32
}

// Controller implements core.GPIODriver as seen from the display side
type Controller struct {
	mu     sync.Mutex
	wiring Wiring
	clock  func() uint32
	levels map[core.GPIOPin]bool

	fourBit  bool
	haveHigh bool
	high     uint8
	inits    int

	ddram     [ddramSize]byte
	addr      uint8
	increment bool
	twoLine   bool
	display   bool
	cursor    bool
	blink     bool

	busyUntil  uint32
	nibbles    []Nibble
	executed   []Op
	violations []Violation
	onChange   func()
}

// NewController creates a controller in its power-on state. clock supplies
// the current time in µs; a nil clock disables timing checks.
func NewController(w Wiring, clock func() uint32) *Controller {
	c := &Controller{
		wiring:    w,
		clock:     clock,
		levels:    make(map[core.GPIOPin]bool),
		increment: true,
	}
	for i := range c.ddram {
		c.ddram[i] = ' '
	}
	c.busyUntil = c.now() + busyPowerOn
	return c
}

// OnChange registers fn to run after every executed instruction
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// ConfigureOutput accepts any pin
func (c *Controller) ConfigureOutput(pin core.GPIOPin) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels[pin] = false
	return nil
}

// SetPin drives a line. A falling edge on enable latches the bus.
func (c *Controller) SetPin(pin core.GPIOPin, value bool) error {
	c.mu.Lock()
	prev := c.levels[pin]
	c.levels[pin] = value
	var changed func()
	if pin == c.wiring.Enable && prev && !value {
		if c.latch() {
			changed = c.onChange
		}
	}
	c.mu.Unlock()

	if changed != nil {
		changed()
	}
	return nil
}

// GetPin returns the level last driven on pin
func (c *Controller) GetPin(pin core.GPIOPin) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.levels[pin], nil
}

func (c *Controller) now() uint32 {
	if c.clock == nil {
		return 0
	}
	return c.clock()
}

// latch reads D4..D7 and RS and reports whether an instruction executed
func (c *Controller) latch() bool {
	var n uint8
	for i, pin := range []core.GPIOPin{c.wiring.D4, c.wiring.D5, c.wiring.D6, c.wiring.D7} {
		if c.levels[pin] {
			n |= 1 << i
		}
	}
	rs := c.levels[c.wiring.RegisterSelect]
	at := c.now()
	c.nibbles = append(c.nibbles, Nibble{Value: n, RS: rs, At: at})

	if !c.fourBit {
		// 8-bit interface: DB0..DB3 are not wired and read as zero
		c.execute(n<<4, rs, at)
		return true
	}
	if !c.haveHigh {
		c.high = n
		c.haveHigh = true
		return false
	}
	c.haveHigh = false
	c.execute(c.high<<4|n, rs, at)
	return true
}

func (c *Controller) execute(b uint8, rs bool, at uint32) {
	if c.clock != nil && core.TimerIsBefore(at, c.busyUntil) {
		c.violations = append(c.violations, Violation{Opcode: b, At: at, BusyUntil: c.busyUntil})
	}
	c.executed = append(c.executed, Op{Opcode: b, IsData: rs, At: at})

	busy := uint32(busyCommand)
	switch {
	case rs:
		c.ddram[c.addr] = b
		c.step()
		busy = busyData
	case b&0x80 != 0:
		c.addr = b & 0x7F
	case b&0x40 != 0:
		// CGRAM address: not modelled
	case b&0x20 != 0:
		busy = c.functionSet(b)
	case b&0x10 != 0:
		// cursor/display shift: not modelled
	case b&0x08 != 0:
		c.display = b&0x04 != 0
		c.cursor = b&0x02 != 0
		c.blink = b&0x01 != 0
	case b&0x04 != 0:
		c.increment = b&0x02 != 0
	case b&0x02 != 0:
		c.addr = 0
		busy = busyClearHome
	case b == 0x01:
		for i := range c.ddram {
			c.ddram[i] = ' '
		}
		c.addr = 0
		c.increment = true
		busy = busyClearHome
	}
	c.busyUntil = at + busy
}

// functionSet applies a function-set instruction and returns its busy time.
// The three 8-bit resets of the power-on handshake need longer waits.
func (c *Controller) functionSet(b uint8) uint32 {
	busy := uint32(busyCommand)
	if !c.fourBit {
		c.inits++
		switch c.inits {
		case 1:
			busy = busyFirstInit
		case 2:
			busy = busySecInit
		}
	}
	if b&0x10 == 0 {
		c.fourBit = true
		c.haveHigh = false
	}
	c.twoLine = b&0x08 != 0
	return busy
}

// step moves the address counter after a data write
func (c *Controller) step() {
	if !c.twoLine {
		if c.increment {
			c.addr = (c.addr + 1) % 0x50
		} else {
			c.addr = (c.addr + 0x50 - 1) % 0x50
		}
		return
	}
	if c.increment {
		c.addr++
		switch c.addr {
		case lineWidth:
			c.addr = line2Base
		case line2Base + lineWidth:
			c.addr = 0
		}
		return
	}
	switch c.addr {
	case 0:
		c.addr = line2Base + lineWidth - 1
	case line2Base:
		c.addr = lineWidth - 1
	default:
		c.addr--
	}
}

// Line returns the visible text of line 0 or 1
func (c *Controller) Line(n int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	base := 0
	if n == 1 {
		base = line2Base
	}
	return string(c.ddram[base : base+visibleCols])
}

// Cell returns the DDRAM byte at addr
func (c *Controller) Cell(addr uint8) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ddram[addr&0x7F]
}

// Address returns the address counter
func (c *Controller) Address() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// FourBit reports whether the interface has been switched to 4-bit mode
func (c *Controller) FourBit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fourBit
}

// TwoLine reports the line count chosen by the last function set
func (c *Controller) TwoLine() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.twoLine
}

// DisplayOn reports the display, cursor and blink bits
func (c *Controller) DisplayOn() (display, cursor, blink bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display, c.cursor, c.blink
}

// Nibbles returns every latch seen so far
func (c *Controller) Nibbles() []Nibble {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Nibble(nil), c.nibbles...)
}

// Executed returns every instruction executed so far
func (c *Controller) Executed() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Op(nil), c.executed...)
}

// Violations returns instructions that arrived while busy
func (c *Controller) Violations() []Violation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Violation(nil), c.violations...)
}

// Render draws the visible display in a frame
func (c *Controller) Render() string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", visibleCols) + "+\n"
	b.WriteString(border)
	for n := 0; n < 2; n++ {
		b.WriteString("|")
		for _, r := range []byte(c.Line(n)) {
			if r < 0x20 || r > 0x7E {
				r = '?'
			}
			b.WriteByte(r)
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)
	return b.String()
}
