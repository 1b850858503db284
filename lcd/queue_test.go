package lcd

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q, err := NewQueue(DefaultQueueCapacity)
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	for i := 0; i < DefaultQueueCapacity; i++ {
		q.Enqueue(Instruction{Opcode: uint8(i)})
	}
	if q.Len() != DefaultQueueCapacity {
		t.Fatalf("Len: got %d, want %d", q.Len(), DefaultQueueCapacity)
	}
	for i := 0; i < DefaultQueueCapacity; i++ {
		in, ok := q.TryDequeue()
		if !ok {
			t.Fatalf("dequeue %d: queue empty", i)
		}
		if in.Opcode != uint8(i) {
			t.Errorf("dequeue %d: got opcode %d", i, in.Opcode)
		}
	}
	if _, ok := q.TryDequeue(); ok {
		t.Error("TryDequeue on empty queue returned an instruction")
	}
}

func TestQueueInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		if _, err := NewQueue(capacity); !errors.Is(err, ErrQueueCapacity) {
			t.Errorf("capacity %d: got %v, want ErrQueueCapacity", capacity, err)
		}
	}
}

func TestQueueEnqueueContextFull(t *testing.T) {
	q, _ := NewQueue(1)
	q.Enqueue(Instruction{Opcode: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := q.EnqueueContext(ctx, Instruction{Opcode: 2})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("got %v, want ErrQueueFull", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("context error not wrapped: %v", err)
	}
	if q.Len() != 1 {
		t.Errorf("Len: got %d, want 1", q.Len())
	}
}

func TestQueueEnqueueBlocksUntilSpace(t *testing.T) {
	q, _ := NewQueue(1)
	q.Enqueue(Instruction{Opcode: 1})

	done := make(chan struct{})
	go func() {
		q.Enqueue(Instruction{Opcode: 2})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Enqueue returned while the queue was full")
	case <-time.After(20 * time.Millisecond):
	}

	if in, _ := q.TryDequeue(); in.Opcode != 1 {
		t.Fatalf("got opcode %d, want 1", in.Opcode)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue still blocked after space was freed")
	}
	if in, _ := q.TryDequeue(); in.Opcode != 2 {
		t.Errorf("got opcode %d, want 2", in.Opcode)
	}
}
