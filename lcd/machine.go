package lcd

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"charlcd/core"
)

// settleDelay separates the two nibble phases
const settleDelay = time.Microsecond

// Scheduler arms one-shot timers. fn runs once d has elapsed, on whatever
// goroutine the implementation dispatches from; it must never be called
// from inside After itself.
type Scheduler interface {
	After(d time.Duration, fn func()) error
}

// State is the phase of the instruction in flight
type State uint8

const (
	Idle State = iota
	SendingHigh
	SendingLow
	Executing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SendingHigh:
		return "sending-high"
	case SendingLow:
		return "sending-low"
	case Executing:
		return "executing"
	default:
		return "unknown"
	}
}

// Machine moves queued instructions onto the bus one at a time. Each
// transition runs from a timer callback and never blocks: it sets pins,
// updates the context and arms the next timer.
type Machine struct {
	mu     sync.Mutex
	state  State
	active Instruction
	queue  *Queue
	bus    *Bus
	sched  Scheduler
	logger *slog.Logger
	err    error
}

// NewMachine creates an idle machine consuming queue
func NewMachine(queue *Queue, bus *Bus, sched Scheduler, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		queue:  queue,
		bus:    bus,
		sched:  sched,
		logger: logger,
	}
}

// Advance starts the next queued instruction if the machine is idle.
// It is a no-op while an instruction is in flight or the queue is empty.
func (m *Machine) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanceLocked()
}

func (m *Machine) advanceLocked() {
	if m.state != Idle {
		return
	}
	in, ok := m.queue.TryDequeue()
	if !ok {
		return
	}
	m.active = in
	m.state = SendingHigh
	m.record(core.EvtDequeue, uint32(in.Opcode), core.TimerFromDuration(in.ExecDelay))
	m.logger.Debug("lcd:dequeue",
		slog.String("opcode", core.Hex8(in.Opcode)),
		slog.Bool("data", in.IsData),
		slog.Duration("exec", in.ExecDelay),
	)
	m.arm(settleDelay)
}

// step is the timer callback
func (m *Machine) step() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case SendingHigh:
		m.send(m.active.High())
		m.state = SendingLow
		m.arm(settleDelay)
	case SendingLow:
		m.send(m.active.Low())
		m.state = Executing
		m.arm(m.active.ExecDelay)
	case Executing:
		m.record(core.EvtExecDone, uint32(m.active.Opcode), 0)
		m.state = Idle
		m.advanceLocked()
	}
}

func (m *Machine) send(nibble uint8) {
	m.record(core.EvtNibble, uint32(nibble), boolToU32(m.active.IsData))
	if err := m.bus.SendNibble(nibble, m.active.IsData); err != nil {
		m.record(core.EvtBusFault, uint32(m.active.Opcode), 0)
		m.logger.Error("lcd:bus-fault", slog.String("state", m.state.String()), slog.Any("reason", err))
	}
}

// arm schedules the next transition. A failure leaves the machine in its
// current state with the instruction still held, and is kept for Err.
func (m *Machine) arm(d time.Duration) {
	if err := m.sched.After(d, m.step); err != nil {
		m.err = fmt.Errorf("arm timer in state %s: %w", m.state, err)
		m.record(core.EvtArmFail, uint32(m.state), 0)
		m.logger.Error("lcd:arm-failed", slog.String("opcode", core.Hex8(m.active.Opcode)), slog.Any("reason", err))
	}
}

func (m *Machine) record(evt uint8, v1, v2 uint32) {
	var now uint32
	if c, ok := m.sched.(interface{ Now() uint32 }); ok {
		now = c.Now()
	}
	core.RecordTiming(evt, now, v1, v2)
}

// State returns the current phase
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Idle reports whether no instruction is in flight and none is queued.
// Dequeues only happen under the machine lock, so the two checks agree.
func (m *Machine) Idle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Idle && m.queue.Len() == 0
}

// Active returns the instruction in flight, if any
func (m *Machine) Active() (Instruction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.state != Idle
}

// Err returns the last timer arming failure
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
