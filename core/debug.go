package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a timing-critical event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Clock     uint32 // System clock at event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtDequeue  = 1 // Instruction loaded into the state machine; v1=opcode v2=exec delay µs
	EvtNibble   = 2 // Nibble latched on the bus; v1=nibble v2=register select
	EvtExecDone = 3 // Execution delay elapsed; v1=opcode
	EvtArmFail  = 4 // Timer could not be armed; v1=state
	EvtBusFault = 5 // GPIO backend reported an error; v1=pin
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// Timing capture ring buffer (non-blocking, for post-mortem)
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8        // Next write position
	timingEnabled  bool  = true // Always capture timing events
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, a logger, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetTimingEnabled turns event capture on or off
func SetTimingEnabled(enabled bool) {
	timingEnabled = enabled
}

// RecordTiming captures a timing event in the ring buffer
// This is always non-blocking and very fast
func RecordTiming(eventType uint8, clock, value1, value2 uint32) {
	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the captured events, oldest first
func TimingEvents() []TimingEvent {
	events := make([]TimingEvent, 0, TimingRingSize)
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// EventName returns a short label for an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtDequeue:
		return "DEQUEUE"
	case EvtNibble:
		return "NIBBLE"
	case EvtExecDone:
		return "EXEC_DONE"
	case EvtArmFail:
		return "ARM_FAIL!"
	case EvtBusFault:
		return "BUS_FAULT!"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing outputs the timing ring buffer (call on shutdown/error)
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		debugPrintln("[TIMING] " + EventName(evt.EventType) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + Hex8(uint8(evt.Value1)) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}
