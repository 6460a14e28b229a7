// Package link implements the Link Layer: the framed byte protocol to
// the UI terminal, its inter-byte timeout, and heartbeat supervision. It
// owns the serial port exclusively (one RX path, one TX path) per the
// design's resource-ownership model.
package link

import (
	"time"

	"isochron/link/serialport"
	"isochron/protocol"
)

// InterByteTimeout bounds how long a partially-received frame may sit
// idle before the decoder resets to Idle.
const InterByteTimeout = 50 * time.Millisecond

// Link couples a serial port to the frame decoder and heartbeat
// supervisor.
type Link struct {
	port      serialport.Port
	decoder   *protocol.Decoder
	heartbeat *Heartbeat

	lastByteAt   time.Duration
	haveLastByte bool
	readBuf      [256]byte
}

// New builds a Link over the given port.
func New(port serialport.Port) *Link {
	return &Link{
		port:      port,
		decoder:   protocol.NewDecoder(),
		heartbeat: NewHeartbeat(),
	}
}

// PollInbound drains whatever bytes are currently available on the port
// (a non-blocking read bounded by the port's configured read timeout),
// feeds them through the frame decoder applying the inter-byte timeout,
// and returns every fully-decoded inbound command. Heartbeat PINGs are
// consumed here too: every one is recorded against the heartbeat
// supervisor and answered immediately with a PONG, per the wire
// protocol's "PONG replies every PING" rule — but still returned so the
// Controller can observe link activity if it wants to.
func (l *Link) PollInbound(now time.Duration) ([]protocol.InboundCommand, error) {
	n, err := l.port.Read(l.readBuf[:])
	if n == 0 {
		return nil, err
	}

	var out []protocol.InboundCommand
	for i := 0; i < n; i++ {
		b := l.readBuf[i]

		if l.decoder.InProgress() && l.haveLastByte && now-l.lastByteAt >= InterByteTimeout {
			l.decoder.Reset()
		}
		l.lastByteAt = now
		l.haveLastByte = true

		frame, ok, _ := l.decoder.Feed(b)
		if !ok {
			continue
		}

		cmd, decErr := protocol.DecodeInbound(frame)
		if decErr != nil {
			continue // unknown TYPE: dropped per the design, no upward report
		}
		if cmd.Kind == protocol.InboundPing {
			l.heartbeat.OnPing(now)
			_ = l.SendOutbound(protocol.OutboundCommand{Kind: protocol.OutboundPong})
		}
		out = append(out, cmd)
	}
	return out, err
}

// TickHeartbeat advances heartbeat supervision, sending an unsolicited
// PONG when the retry sequence calls for one. It reports linkLost once
// the retry sequence is exhausted without a PING — the caller (the
// Safety Monitor, via the Controller) is responsible for turning that
// into an ErrorDetected(LinkLost).
func (l *Link) TickHeartbeat(now time.Duration) (linkLost bool) {
	sendPong, lost := l.heartbeat.Tick(now)
	if sendPong {
		_ = l.SendOutbound(protocol.OutboundCommand{Kind: protocol.OutboundPong})
	}
	return lost
}

// SendOutbound encodes and writes a single outbound command.
func (l *Link) SendOutbound(cmd protocol.OutboundCommand) error {
	frame, err := protocol.EncodeOutbound(cmd)
	if err != nil {
		return err
	}
	encoded, err := frame.Encode()
	if err != nil {
		return err
	}
	_, err = l.port.Write(encoded)
	return err
}

// SendScreen writes a whole screen update (CLEAR, TEXT…, INVERT, …) as
// one coalesced write, matching the design's "outbound traffic is
// coalesced around state transitions" requirement.
func (l *Link) SendScreen(cmds []protocol.OutboundCommand) error {
	var buf []byte
	for _, cmd := range cmds {
		frame, err := protocol.EncodeOutbound(cmd)
		if err != nil {
			return err
		}
		encoded, err := frame.Encode()
		if err != nil {
			return err
		}
		buf = append(buf, encoded...)
	}
	_, err := l.port.Write(buf)
	return err
}

// Close releases the underlying port.
func (l *Link) Close() error {
	return l.port.Close()
}
