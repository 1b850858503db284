//go:build !tinygo

package core

import "sync"

// criticalSection guards scheduler state on regular Go, where timers are
// armed from several goroutines
type criticalSection struct {
	mu sync.Mutex
}

// enter acquires the section
func (c *criticalSection) enter() {
	c.mu.Lock()
}

// exit releases the section
func (c *criticalSection) exit() {
	c.mu.Unlock()
}
