// Package telemetry is the board-glue-agnostic log sink: a package-level
// Writer set once at boot, a non-blocking async channel for emission from
// time-critical ticks, and a small ring buffer of state-transition events
// for post-mortem dumps after a fault or crash.
package telemetry

import "strconv"

// Writer is the platform-specific sink: UART, USB-CDC, or a host-side
// stdout shim. Nil (the default) discards everything.
type Writer func(string)

// TransitionEvent captures one MachineState transition for post-mortem
// analysis — which event fired, what state it left, and what state it
// entered, against the board's clock.
type TransitionEvent struct {
	ClockMS  uint32
	FromKind uint8
	EventKind uint8
	ToKind   uint8
}

const ringSize = 32

var (
	writer  Writer = func(string) {}
	enabled bool

	ring     [ringSize]TransitionEvent
	ringHead uint8
	ringOn   bool = true

	asyncChan chan string
)

// SetWriter installs the platform-specific sink. Call once at boot.
func SetWriter(w Writer) {
	if w != nil {
		writer = w
	}
}

// SetEnabled toggles synchronous debug output (disabled by default —
// boards care about timing more than chatter).
func SetEnabled(on bool) { enabled = on }

// Enabled reports whether synchronous debug output is active.
func Enabled() bool { return enabled }

// StartAsync starts the background goroutine that drains the async
// channel. Call once after SetWriter.
func StartAsync() {
	asyncChan = make(chan string, 16)
	go func() {
		for msg := range asyncChan {
			writer(msg)
		}
	}()
}

// Println writes synchronously if enabled.
func Println(msg string) {
	if enabled {
		writer(msg)
	}
}

// Async queues msg for background emission, dropping it silently if the
// channel is full — never blocks a time-critical caller.
func Async(msg string) {
	if asyncChan == nil {
		return
	}
	select {
	case asyncChan <- msg:
	default:
	}
}

// RecordTransition captures one state transition in the ring buffer.
// Always non-blocking; the Controller calls it on every status change.
func RecordTransition(clockMS uint32, fromKind, eventKind, toKind uint8) {
	if !ringOn {
		return
	}
	ring[ringHead] = TransitionEvent{ClockMS: clockMS, FromKind: fromKind, EventKind: eventKind, ToKind: toKind}
	ringHead = (ringHead + 1) % ringSize
}

// DumpTransitions writes the ring buffer oldest-first, meant to be called
// once after a fault is latched, never from the hot path.
func DumpTransitions() {
	writer("[STATE] === transition ring dump ===")
	for i := uint8(0); i < ringSize; i++ {
		idx := (ringHead + i) % ringSize
		evt := ring[idx]
		if evt.ClockMS == 0 && evt.FromKind == 0 && evt.ToKind == 0 && evt.EventKind == 0 {
			continue
		}
		writer("[STATE] t=" + strconv.Itoa(int(evt.ClockMS)) +
			"ms from=" + strconv.Itoa(int(evt.FromKind)) +
			" event=" + strconv.Itoa(int(evt.EventKind)) +
			" to=" + strconv.Itoa(int(evt.ToKind)))
	}
	writer("[STATE] === end dump ===")
}

// ClearTransitions resets the ring buffer, used in tests.
func ClearTransitions() {
	for i := range ring {
		ring[i] = TransitionEvent{}
	}
	ringHead = 0
}
