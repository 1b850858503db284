package lcd

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNextAddress(t *testing.T) {
	tests := []struct {
		in, want uint8
	}{
		{0x00, 0x01},
		{0x0E, 0x0F},
		{0x0F, 0x40},
		{0x40, 0x41},
		{0x4E, 0x4F},
		{0x4F, 0x00},
	}
	for _, tt := range tests {
		if got := nextAddress(tt.in); got != tt.want {
			t.Errorf("nextAddress(0x%02X) = 0x%02X, want 0x%02X", tt.in, got, tt.want)
		}
	}
}

func TestPrevAddress(t *testing.T) {
	tests := []struct {
		in, want uint8
	}{
		{0x00, 0x00},
		{0x01, 0x00},
		{0x0F, 0x0E},
		{0x40, 0x0F},
		{0x41, 0x40},
		{0x4F, 0x4E},
	}
	for _, tt := range tests {
		if got := prevAddress(tt.in); got != tt.want {
			t.Errorf("prevAddress(0x%02X) = 0x%02X, want 0x%02X", tt.in, got, tt.want)
		}
	}
}

func TestCursorStaysVisible(t *testing.T) {
	addr := uint8(0)
	for i := 0; i < 200; i++ {
		addr = nextAddress(addr)
		if !(addr <= line1End || (addr >= line2Start && addr <= line2End)) {
			t.Fatalf("step %d: address 0x%02X outside the visible range", i, addr)
		}
	}
}

// TestConcurrentWritersKeepCharactersWhole checks that the cursor-set and
// data write of one character are never split by another producer
func TestConcurrentWritersKeepCharactersWhole(t *testing.T) {
	r := newRig(t)
	r.settle(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ctx.Err() == nil {
			r.sched.Advance(10 * time.Microsecond)
			time.Sleep(time.Microsecond)
		}
	}()

	var wg sync.WaitGroup
	for _, c := range []byte("ab") {
		wg.Add(1)
		go func(c byte) {
			defer wg.Done()
			for i := 0; i < 8; i++ {
				r.drv.WriteCharacter(c)
			}
		}(c)
	}
	wg.Wait()
	for !r.drv.Idle() && ctx.Err() == nil {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-drained

	ops := r.opsAfterBootstrap()
	if len(ops) != 32 {
		t.Fatalf("got %d ops, want 32", len(ops))
	}
	counts := map[byte]int{}
	for i := 0; i < len(ops); i += 2 {
		set, put := ops[i], ops[i+1]
		if set.IsData || set.Opcode&CmdSetDDRAMAddr == 0 || !put.IsData {
			t.Fatalf("ops %d,%d not a cursor-set/data pair: %+v %+v", i, i+1, set, put)
		}
		if want := CmdSetDDRAMAddr | uint8(i/2); set.Opcode != want {
			t.Errorf("pair %d: cursor set 0x%02X, want 0x%02X", i/2, set.Opcode, want)
		}
		counts[put.Opcode]++
	}
	if counts['a'] != 8 || counts['b'] != 8 {
		t.Errorf("character counts: %v", counts)
	}
	if got := r.drv.Cursor(); got != 0x40 {
		t.Errorf("cursor: got 0x%02X, want 0x40", got)
	}
}
