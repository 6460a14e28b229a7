package link

import "time"

// PingInterval is the cadence at which the terminal is expected to send
// PING.
const PingInterval = time.Second

// RetryInterval is the spacing between unsolicited PONGs once the retry
// sequence starts.
const RetryInterval = 500 * time.Millisecond

// MaxRetries bounds the retry sequence before declaring the link lost.
const MaxRetries = 3

// missedWindow is how long without a PING before the retry sequence
// begins: three consecutive missed expected PINGs.
const missedWindow = 3 * PingInterval

type hbState int

const (
	hbNormal hbState = iota
	hbRetrying
)

// Heartbeat implements the heartbeat-supervision state machine from the
// link design: three missed PING windows start a retry sequence of up to
// three unsolicited PONGs 500ms apart, and a retry sequence that
// exhausts without a PING declares the link lost.
type Heartbeat struct {
	state       hbState
	havePing    bool
	lastPingAt  time.Duration
	retriesSent int
	lastRetryAt time.Duration
}

// NewHeartbeat returns a Heartbeat that has not yet seen a PING.
func NewHeartbeat() *Heartbeat { return &Heartbeat{} }

// OnPing records a valid PING arrival, clearing any in-progress retry
// sequence.
func (h *Heartbeat) OnPing(now time.Duration) {
	h.havePing = true
	h.lastPingAt = now
	h.state = hbNormal
	h.retriesSent = 0
}

// Tick advances the heartbeat supervisor. sendPong is true when an
// unsolicited PONG should be sent this tick; linkLost is true once the
// retry sequence has been exhausted without a PING arriving.
func (h *Heartbeat) Tick(now time.Duration) (sendPong bool, linkLost bool) {
	if !h.havePing {
		// Grace period before the first PING is expected at all.
		h.havePing = true
		h.lastPingAt = now
		return false, false
	}

	switch h.state {
	case hbNormal:
		if now-h.lastPingAt < missedWindow {
			return false, false
		}
		h.state = hbRetrying
		h.retriesSent = 1
		h.lastRetryAt = now
		return true, false

	case hbRetrying:
		if now-h.lastRetryAt < RetryInterval {
			return false, false
		}
		if h.retriesSent >= MaxRetries {
			return false, true
		}
		h.retriesSent++
		h.lastRetryAt = now
		return true, false
	}
	return false, false
}
