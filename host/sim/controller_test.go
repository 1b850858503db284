package sim

import (
	"strings"
	"testing"

	"charlcd/core"
)

var wiring = Wiring{D4: 1, D5: 2, D6: 3, D7: 4, Enable: 5, RegisterSelect: 6}

// nibble drives one latch cycle the way a host bus would
func nibble(c *Controller, n uint8, rs bool) {
	c.SetPin(wiring.RegisterSelect, rs)
	for i, pin := range []core.GPIOPin{wiring.D4, wiring.D5, wiring.D6, wiring.D7} {
		c.SetPin(pin, n&(1<<i) != 0)
	}
	c.SetPin(wiring.Enable, true)
	c.SetPin(wiring.Enable, false)
}

func send(c *Controller, b uint8, rs bool) {
	nibble(c, b>>4, rs)
	nibble(c, b&0x0F, rs)
}

// initialized returns an untimed controller in 4-bit, 2-line mode
func initialized(t *testing.T) *Controller {
	t.Helper()
	c := NewController(wiring, nil)
	for _, n := range []uint8{0x3, 0x3, 0x3, 0x2} {
		nibble(c, n, false)
	}
	if !c.FourBit() {
		t.Fatalf("controller still in 8-bit mode after handshake")
	}
	send(c, 0x28, false)
	send(c, 0x0F, false)
	send(c, 0x01, false)
	return c
}

func TestHandshakeAndWrite(t *testing.T) {
	c := initialized(t)
	if !c.TwoLine() {
		t.Errorf("function set 0x28 did not select two lines")
	}
	if d, cur, blink := c.DisplayOn(); !d || !cur || !blink {
		t.Errorf("display control = %v %v %v, want all on", d, cur, blink)
	}

	send(c, 'H', true)
	send(c, 'i', true)
	if got := c.Line(0); !strings.HasPrefix(got, "Hi ") {
		t.Errorf("line 0 = %q", got)
	}
	if c.Address() != 0x02 {
		t.Errorf("address = %#x, want 0x02", c.Address())
	}
	if n := len(c.Executed()); n != 4+3+2 {
		t.Errorf("executed %d instructions, want 9", n)
	}
}

func TestNibbleSequenceRecorded(t *testing.T) {
	c := initialized(t)
	send(c, 'A', true)

	ns := c.Nibbles()
	last := ns[len(ns)-2:]
	if last[0].Value != 0x4 || last[1].Value != 0x1 || !last[0].RS || !last[1].RS {
		t.Errorf("data nibbles = %+v, want 0x4 then 0x1 with RS high", last)
	}
}

func TestAddressWrapsBetweenLines(t *testing.T) {
	c := initialized(t)

	send(c, 0x80|0x27, false)
	send(c, 'x', true)
	if c.Address() != 0x40 {
		t.Errorf("address after 0x27 = %#x, want 0x40", c.Address())
	}

	send(c, 0x80|0x67, false)
	send(c, 'y', true)
	if c.Address() != 0x00 {
		t.Errorf("address after 0x67 = %#x, want 0x00", c.Address())
	}
	if c.Cell(0x67) != 'y' {
		t.Errorf("cell 0x67 = %q", c.Cell(0x67))
	}
}

func TestBusyViolation(t *testing.T) {
	var now uint32
	c := NewController(wiring, func() uint32 { return now })

	now = 100 // still inside the power-on delay
	nibble(c, 0x3, false)
	v := c.Violations()
	if len(v) != 1 || v[0].Opcode != 0x30 || v[0].BusyUntil != busyPowerOn {
		t.Fatalf("violations = %+v", v)
	}

	now = 100 + busyFirstInit
	nibble(c, 0x3, false)
	if len(c.Violations()) != 1 {
		t.Errorf("second reset flagged after its wait: %+v", c.Violations())
	}
}

func TestOnChangeAfterInstruction(t *testing.T) {
	c := initialized(t)
	calls := 0
	c.OnChange(func() { calls++ })

	nibble(c, 0x4, true)
	if calls != 0 {
		t.Errorf("callback ran after a half instruction")
	}
	nibble(c, 0x1, true)
	if calls != 1 {
		t.Errorf("callback ran %d times, want 1", calls)
	}
}

func TestRenderMasksControlBytes(t *testing.T) {
	c := initialized(t)
	send(c, 0x07, true)
	send(c, 'k', true)

	lines := strings.Split(c.Render(), "\n")
	if lines[0] != "+"+strings.Repeat("-", 16)+"+" {
		t.Errorf("border = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "|?k ") {
		t.Errorf("line 0 = %q", lines[1])
	}
}
