package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"charlcd/core"
)

func TestStartSchedulerStopWaitsForDispatch(t *testing.T) {
	sched := core.NewScheduler(core.MonotonicClock())
	stop := startScheduler(context.Background(), sched, 10*time.Microsecond)

	fired := make(chan struct{})
	if err := sched.After(time.Millisecond, func() { close(fired) }); err != nil {
		t.Fatalf("After: %v", err)
	}
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired on the wall clock")
	}

	var late atomic.Int32
	if err := sched.After(time.Hour, func() { late.Add(1) }); err != nil {
		t.Fatalf("After: %v", err)
	}
	stop()
	stop()

	if err := sched.After(time.Microsecond, func() { late.Add(1) }); !errors.Is(err, core.ErrSchedulerStopped) {
		t.Errorf("After once stopped: got %v, want %v", err, core.ErrSchedulerStopped)
	}
	if sched.Pending() != 0 {
		t.Errorf("pending timers after stop: %d", sched.Pending())
	}
	if late.Load() != 0 {
		t.Errorf("timers ran after stop")
	}
}
