package lcd

import (
	"errors"
	"testing"
	"time"

	"charlcd/core"
)

type pinWrite struct {
	pin   core.GPIOPin
	value bool
}

// traceGPIO records every pin write
type traceGPIO struct {
	configured []core.GPIOPin
	writes     []pinWrite
	failPin    core.GPIOPin
	fail       error
}

func (g *traceGPIO) ConfigureOutput(pin core.GPIOPin) error {
	g.configured = append(g.configured, pin)
	return nil
}

func (g *traceGPIO) SetPin(pin core.GPIOPin, value bool) error {
	g.writes = append(g.writes, pinWrite{pin, value})
	if g.fail != nil && pin == g.failPin {
		return g.fail
	}
	return nil
}

func (g *traceGPIO) GetPin(pin core.GPIOPin) (bool, error) {
	for i := len(g.writes) - 1; i >= 0; i-- {
		if g.writes[i].pin == pin {
			return g.writes[i].value, nil
		}
	}
	return false, nil
}

func TestPinMapValidate(t *testing.T) {
	if err := testPins.Validate(); err != nil {
		t.Fatalf("valid map rejected: %v", err)
	}
	bad := testPins
	bad.RegisterSelect = bad.Enable
	if err := bad.Validate(); !errors.Is(err, errPinConflict) {
		t.Errorf("got %v, want errPinConflict", err)
	}
}

func TestBusConfigureDrivesLow(t *testing.T) {
	g := &traceGPIO{}
	b := NewBus(g, testPins, DefaultPulseWidth, func(time.Duration) {})
	if err := b.Configure(); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if len(g.configured) != int(numSignals) {
		t.Fatalf("configured %d pins, want %d", len(g.configured), numSignals)
	}
	for s := SignalD4; s < numSignals; s++ {
		if level, _ := g.GetPin(testPins.Pin(s)); level {
			t.Errorf("%s left high", s)
		}
	}
}

func TestBusSendNibble(t *testing.T) {
	g := &traceGPIO{}
	var held []time.Duration
	b := NewBus(g, testPins, DefaultPulseWidth, func(d time.Duration) { held = append(held, d) })

	if err := b.SendNibble(0xA, true); err != nil {
		t.Fatalf("SendNibble: %v", err)
	}

	want := []pinWrite{
		{testPins.RegisterSelect, true},
		{testPins.D4, false},
		{testPins.D5, true},
		{testPins.D6, false},
		{testPins.D7, true},
		{testPins.Enable, true},
		{testPins.Enable, false},
	}
	if len(g.writes) != len(want) {
		t.Fatalf("got %d writes, want %d: %+v", len(g.writes), len(want), g.writes)
	}
	for i := range want {
		if g.writes[i] != want[i] {
			t.Errorf("write %d: got %+v, want %+v", i, g.writes[i], want[i])
		}
	}
	if len(held) != 1 || held[0] < MinPulseWidth {
		t.Errorf("enable hold: %v", held)
	}
}

func TestBusSendNibbleReportsFirstError(t *testing.T) {
	failure := errors.New("line stuck")
	g := &traceGPIO{failPin: testPins.D5, fail: failure}
	b := NewBus(g, testPins, DefaultPulseWidth, func(time.Duration) {})

	err := b.SendNibble(0xF, false)
	if !errors.Is(err, failure) {
		t.Fatalf("got %v, want %v", err, failure)
	}
	// the enable pulse still goes out
	last := g.writes[len(g.writes)-1]
	if last != (pinWrite{testPins.Enable, false}) {
		t.Errorf("last write: %+v", last)
	}
}

func TestSignalString(t *testing.T) {
	if SignalRegisterSelect.String() != "RS" || SignalEnable.String() != "E" {
		t.Error("unexpected signal names")
	}
	if got := Signal(9).String(); got != "Signal(9)" {
		t.Errorf("got %q", got)
	}
}
