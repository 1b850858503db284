//go:build tinygo

package core

import "runtime/interrupt"

// criticalSection guards scheduler state by masking interrupts, so timers
// may also be armed from an interrupt handler
type criticalSection struct {
	state interrupt.State
}

// enter disables interrupts and remembers the previous state
func (c *criticalSection) enter() {
	c.state = interrupt.Disable()
}

// exit restores the interrupt state
func (c *criticalSection) exit() {
	interrupt.Restore(c.state)
}
