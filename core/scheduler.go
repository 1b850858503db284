package core

import (
	"context"
	"errors"
	"time"
)

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// ErrSchedulerStopped is returned when arming a timer after Stop
var ErrSchedulerStopped = errors.New("scheduler stopped")

// maxRunDispatches bounds RunUntilIdle so a self-rescheduling timer cannot
// spin it forever
const maxRunDispatches = 1 << 20

// Scheduler keeps one-shot timers in a list sorted by wake time and runs
// their handlers once due. Time comes either from a clock function
// (hardware, host wall clock) or, when clock is nil, from a simulated
// counter moved forward by Advance.
type Scheduler struct {
	cs        criticalSection
	clock     func() uint32
	timerList *Timer
	now       uint32
	stopped   bool
}

// NewScheduler creates a scheduler reading time from clock
func NewScheduler(clock func() uint32) *Scheduler {
	s := &Scheduler{clock: clock}
	if clock != nil {
		s.now = clock()
	}
	return s
}

// NewSimScheduler creates a scheduler on a simulated clock starting at zero
func NewSimScheduler() *Scheduler {
	return &Scheduler{}
}

// MonotonicClock returns a microsecond tick source based on the Go runtime's
// monotonic clock, starting at zero
func MonotonicClock() func() uint32 {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start) / time.Microsecond)
	}
}

// Now returns the scheduler's current time in ticks
func (s *Scheduler) Now() uint32 {
	if s.clock != nil {
		return s.clock()
	}
	s.cs.enter()
	defer s.cs.exit()
	return s.now
}

// ScheduleTimer adds a timer to the schedule
func (s *Scheduler) ScheduleTimer(t *Timer) error {
	s.cs.enter()
	defer s.cs.exit()

	if s.stopped {
		return ErrSchedulerStopped
	}
	// Insert timer in sorted order
	// Implementation similar to Klipper's sched_add_timer
	s.insertTimer(t)
	return nil
}

// After arms a one-shot timer that calls fn once d has elapsed
func (s *Scheduler) After(d time.Duration, fn func()) error {
	t := &Timer{
		WakeTime: s.Now() + TimerFromDuration(d),
		Handler: func(*Timer) uint8 {
			fn()
			return SF_DONE
		},
	}
	return s.ScheduleTimer(t)
}

// insertTimer inserts a timer in sorted order by WakeTime
func (s *Scheduler) insertTimer(t *Timer) {
	if s.timerList == nil || TimerIsBefore(t.WakeTime, s.timerList.WakeTime) {
		t.Next = s.timerList
		s.timerList = t
		return
	}

	// Equal wake times keep insertion order
	current := s.timerList
	for current.Next != nil && !TimerIsBefore(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// Dispatch runs every timer whose WakeTime is not after now. Handlers run
// outside the critical section so they may arm further timers.
func (s *Scheduler) Dispatch(now uint32) {
	s.cs.enter()
	s.now = now

	for s.timerList != nil && !TimerIsBefore(now, s.timerList.WakeTime) {
		timer := s.timerList
		s.timerList = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references

		s.cs.exit()
		result := timer.Handler(timer)
		s.cs.enter()

		// Reschedule if requested
		if result == SF_RESCHEDULE && !s.stopped {
			s.insertTimer(timer)
		}
	}
	s.cs.exit()
}

// ProcessTimers dispatches against the scheduler's clock
func (s *Scheduler) ProcessTimers() {
	if s.clock == nil {
		return
	}
	s.Dispatch(s.clock())
}

// nextWake returns the earliest pending wake time
func (s *Scheduler) nextWake() (uint32, bool) {
	s.cs.enter()
	defer s.cs.exit()
	if s.timerList == nil {
		return 0, false
	}
	wake := s.timerList.WakeTime
	if TimerIsBefore(wake, s.now) {
		wake = s.now
	}
	return wake, true
}

// Advance moves simulated time forward by d, firing each timer that comes
// due at its own wake time so chained timers keep their spacing
func (s *Scheduler) Advance(d time.Duration) {
	s.cs.enter()
	target := s.now + TimerFromDuration(d)
	s.cs.exit()

	for {
		wake, ok := s.nextWake()
		if !ok || TimerIsBefore(target, wake) {
			break
		}
		s.Dispatch(wake)
	}

	s.cs.enter()
	s.now = target
	s.cs.exit()
}

// RunUntilIdle fires timers in wake order until none remain and returns the
// simulated time that passed
func (s *Scheduler) RunUntilIdle() time.Duration {
	start := s.Now()
	for i := 0; i < maxRunDispatches; i++ {
		wake, ok := s.nextWake()
		if !ok {
			break
		}
		s.Dispatch(wake)
	}
	return TimerToDuration(s.Now() - start)
}

// Run dispatches timers against the clock until ctx is done, sleeping poll
// between passes
func (s *Scheduler) Run(ctx context.Context, poll time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.ProcessTimers()
		time.Sleep(poll)
	}
}

// Pending returns the number of armed timers
func (s *Scheduler) Pending() int {
	s.cs.enter()
	defer s.cs.exit()
	n := 0
	for t := s.timerList; t != nil; t = t.Next {
		n++
	}
	return n
}

// Stop drops all armed timers and refuses new ones
func (s *Scheduler) Stop() {
	s.cs.enter()
	defer s.cs.exit()
	s.stopped = true
	s.timerList = nil
}
