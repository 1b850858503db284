package core

import "time"

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// TimerFromDuration converts a duration to timer ticks, rounding up so a
// delay is never shortened
func TimerFromDuration(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32((d + time.Microsecond - 1) / time.Microsecond)
}

// TimerToDuration converts timer ticks to a duration
func TimerToDuration(ticks uint32) time.Duration {
	return time.Duration(ticks) * time.Microsecond
}

// TimerIsBefore reports whether tick a comes before tick b, tolerating
// wraparound of the 32-bit counter
func TimerIsBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// SpinWait busy-waits for d without yielding. Only for sub-10µs holds such
// as the LCD enable pulse.
func SpinWait(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}
