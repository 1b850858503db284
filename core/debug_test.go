package core

import (
	"strings"
	"testing"
)

func TestTimingRingKeepsNewest(t *testing.T) {
	ClearTimingRing()
	defer ClearTimingRing()

	for i := uint32(0); i < TimingRingSize+5; i++ {
		RecordTiming(EvtNibble, i, i&0x0F, 0)
	}
	events := TimingEvents()
	if len(events) != TimingRingSize {
		t.Fatalf("got %d events, want %d", len(events), TimingRingSize)
	}
	if events[0].Clock != 5 {
		t.Errorf("oldest event clock: got %d, want 5", events[0].Clock)
	}
	if last := events[len(events)-1]; last.Clock != TimingRingSize+4 {
		t.Errorf("newest event clock: got %d", last.Clock)
	}
}

func TestDumpTimingRing(t *testing.T) {
	ClearTimingRing()
	defer ClearTimingRing()
	defer SetDebugWriter(func(string) {})

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })

	RecordTiming(EvtDequeue, 7, 0x28, 139)
	RecordTiming(EvtArmFail, 9, 1, 0)
	DumpTimingRing()

	if len(lines) != 4 {
		t.Fatalf("got %d lines: %q", len(lines), lines)
	}
	if !strings.Contains(lines[1], "DEQUEUE clock=7 v1=0x28 v2=139") {
		t.Errorf("dequeue line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "ARM_FAIL!") {
		t.Errorf("arm-fail line: %q", lines[2])
	}
}

func TestTimingDisabled(t *testing.T) {
	ClearTimingRing()
	SetTimingEnabled(false)
	defer SetTimingEnabled(true)

	RecordTiming(EvtNibble, 1, 2, 3)
	if n := len(TimingEvents()); n != 0 {
		t.Errorf("recorded %d events while disabled", n)
	}
}
