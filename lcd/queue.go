package lcd

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is returned when a bounded enqueue gives up waiting for space
	ErrQueueFull = errors.New("instruction queue full")
	// ErrQueueCapacity is returned for a queue that could not hold the
	// bootstrap configuration
	ErrQueueCapacity = errors.New("invalid instruction queue capacity")
)

// Queue is a bounded FIFO of instructions. Any number of goroutines may
// enqueue; the state machine is the only consumer.
type Queue struct {
	ch chan Instruction
}

// NewQueue creates a queue holding up to capacity instructions
func NewQueue(capacity int) (*Queue, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrQueueCapacity, capacity)
	}
	return &Queue{ch: make(chan Instruction, capacity)}, nil
}

// Enqueue appends in, blocking while the queue is full
func (q *Queue) Enqueue(in Instruction) {
	q.ch <- in
}

// EnqueueContext appends in, giving up with ErrQueueFull once ctx is done
func (q *Queue) EnqueueContext(ctx context.Context, in Instruction) error {
	select {
	case q.ch <- in:
		return nil
	default:
	}
	select {
	case q.ch <- in:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrQueueFull, ctx.Err())
	}
}

// TryDequeue removes the oldest instruction without blocking
func (q *Queue) TryDequeue() (Instruction, bool) {
	select {
	case in := <-q.ch:
		return in, true
	default:
		return Instruction{}, false
	}
}

// Len returns the number of queued instructions
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity
func (q *Queue) Cap() int {
	return cap(q.ch)
}
