// Package safety implements the Safety Monitor: a passive aggregator of
// temperature, motor stall, and link-heartbeat reports into a single
// fault signal. It never commands hardware itself — it only tells the
// Controller what to do about it.
package safety

// Safety thresholds, carried over verbatim from the original firmware's
// tuning.
const (
	MaxTemperatureC      int16  = 55
	HeartbeatTimeoutMS   uint32 = 3000
	MaxMissedHeartbeats  uint8  = 3
	StallDebounceSamples int    = 3
)

// Status is the outcome of a Check call.
type Status struct {
	Faulted bool
	Kind    ErrorKind
}

// OK is the non-faulted status.
func OK() Status { return Status{} }

// Fault builds a faulted status of the given kind.
func Fault(kind ErrorKind) Status { return Status{Faulted: true, Kind: kind} }

// Monitor tracks the latest temperature/stall/heartbeat reports and
// reduces them to a single fault per the priority order
// ThermistorFault > OverTemperature > MotorStall > LinkLost.
type Monitor struct {
	lastTempX10     int16
	tempSensorValid bool

	stallSampleRun int
	motorStalled   bool

	missedHeartbeats uint8
	msSinceHeartbeat uint32

	latched     bool
	latchedKind ErrorKind
}

// NewMonitor returns a Monitor in the all-clear state.
func NewMonitor() *Monitor {
	return &Monitor{tempSensorValid: true}
}

// UpdateTemperature records the latest reading in tenths of a degree
// Celsius, or reports a sensor fault.
func (m *Monitor) UpdateTemperature(tempX10 int16, fault bool) {
	m.lastTempX10 = tempX10
	m.tempSensorValid = !fault
}

// RecordStallSample feeds one stall-flag sample from the motor
// controller, expected every ~20ms. MotorStall only latches after
// StallDebounceSamples consecutive true samples, and unlatches as soon
// as a sample reports not-stalled.
func (m *Monitor) RecordStallSample(stalled bool) {
	if stalled {
		if m.stallSampleRun < StallDebounceSamples {
			m.stallSampleRun++
		}
	} else {
		m.stallSampleRun = 0
		m.motorStalled = false
		return
	}
	if m.stallSampleRun >= StallDebounceSamples {
		m.motorStalled = true
	}
}

// HeartbeatReceived clears the missed-heartbeat counter, called by the
// Link layer on every valid PING.
func (m *Monitor) HeartbeatReceived() {
	m.missedHeartbeats = 0
	m.msSinceHeartbeat = 0
}

// AdvanceTime accumulates elapsed wall-clock time; once HeartbeatTimeoutMS
// passes without a heartbeat, one miss is recorded and the window
// resets. The Link layer's retry sequence runs independently of this —
// this only counts misses toward the LinkLost threshold.
func (m *Monitor) AdvanceTime(deltaMS uint32) {
	m.msSinceHeartbeat += deltaMS
	if m.msSinceHeartbeat >= HeartbeatTimeoutMS {
		if m.missedHeartbeats < MaxMissedHeartbeats {
			m.missedHeartbeats++
		}
		m.msSinceHeartbeat = 0
	}
}

// Check evaluates all inputs against the priority order and returns the
// first fault found, or OK. Once latched, Check keeps returning the same
// fault until Reset is called. Check does no event bookkeeping of its
// own: a caller that calls it every tick sees the latched fault on every
// tick.
func (m *Monitor) Check() Status {
	if m.latched {
		return Fault(m.latchedKind)
	}

	switch {
	case !m.tempSensorValid:
		return m.latch(ThermistorFault)
	case m.lastTempX10 > MaxTemperatureC*10:
		return m.latch(OverTemperature)
	case m.motorStalled:
		return m.latch(MotorStall)
	case m.missedHeartbeats >= MaxMissedHeartbeats:
		return m.latch(LinkLost)
	default:
		return OK()
	}
}

func (m *Monitor) latch(kind ErrorKind) Status {
	m.latched = true
	m.latchedKind = kind
	return Fault(kind)
}

// Reset clears the latch, e.g. after AcknowledgeError returns to Idle
// (never for LinkLost, which only a power cycle clears).
func (m *Monitor) Reset() {
	m.latched = false
	m.motorStalled = false
	m.stallSampleRun = 0
	m.missedHeartbeats = 0
	m.msSinceHeartbeat = 0
}

// TemperatureC returns the last reading in whole degrees, if valid.
func (m *Monitor) TemperatureC() (int16, bool) {
	if !m.tempSensorValid {
		return 0, false
	}
	return m.lastTempX10 / 10, true
}

// IsLinkHealthy reports whether the heartbeat miss count is below the
// LinkLost threshold.
func (m *Monitor) IsLinkHealthy() bool {
	return m.missedHeartbeats < MaxMissedHeartbeats
}

// MissedHeartbeats returns the current consecutive-miss count.
func (m *Monitor) MissedHeartbeats() uint8 { return m.missedHeartbeats }
