package link

import (
	"testing"
	"time"

	"isochron/link/serialport"
	"isochron/protocol"
)

func TestLinkPollInboundDecodesFrames(t *testing.T) {
	port := serialport.NewMockPort()
	pingFrame := protocol.EmptyFrame(protocol.MsgPing)
	encoded, _ := pingFrame.Encode()
	port.Feed(encoded)

	l := New(port)
	cmds, err := l.PollInbound(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Kind != protocol.InboundPing {
		t.Fatalf("expected one decoded PING, got %+v", cmds)
	}
}

func TestLinkPollInboundGarbageThenValidFrame(t *testing.T) {
	port := serialport.NewMockPort()
	// 0x00 0x55 are garbage, then a valid bad-checksum frame, then a good PING.
	stream := []byte{0x00, 0x55, 0xAA, 0x01, 0x01, 0x10, 0x11, 0xAA, 0x00, 0x02, 0x02}
	port.Feed(stream)

	l := New(port)
	cmds, err := l.PollInbound(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Kind != protocol.InboundPing {
		t.Fatalf("expected resync to a single decoded PING, got %+v", cmds)
	}
}

func TestLinkSendOutboundWritesEncodedFrame(t *testing.T) {
	port := serialport.NewMockPort()
	l := New(port)
	if err := l.SendOutbound(protocol.OutboundCommand{Kind: protocol.OutboundClear}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if port.Written.Len() == 0 {
		t.Fatalf("expected bytes written to the port")
	}
}

func TestLinkSendScreenCoalescesIntoOneWrite(t *testing.T) {
	port := serialport.NewMockPort()
	l := New(port)
	cmds := []protocol.OutboundCommand{
		{Kind: protocol.OutboundClear},
		{Kind: protocol.OutboundText, Row: 0, Col: 0, Text: "hello"},
		{Kind: protocol.OutboundInvert, Row: 0, StartCol: 0, EndCol: 5},
	}
	if err := l.SendScreen(cmds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if port.Written.Len() == 0 {
		t.Fatalf("expected bytes written for the whole screen")
	}
}

func TestLinkInterByteTimeoutResetsPartialFrame(t *testing.T) {
	port := serialport.NewMockPort()
	l := New(port)

	// Feed just the start + length + type of a frame, then let the gap
	// exceed the inter-byte timeout before the rest arrives.
	port.Feed([]byte{0xAA, 0x01, 0x01})
	if _, err := l.PollInbound(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Gap exceeds InterByteTimeout; decoder should reset to Idle.
	port.Feed([]byte{0x10, 0x11})
	if _, err := l.PollInbound(InterByteTimeout + time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.decoder.InProgress() {
		t.Fatalf("expected the stale partial frame to have been reset")
	}
}

func TestLinkTickHeartbeatSendsPongOnRetry(t *testing.T) {
	port := serialport.NewMockPort()
	l := New(port)
	l.heartbeat.OnPing(0)

	if lost := l.TickHeartbeat(3 * time.Second); lost {
		t.Fatalf("did not expect LinkLost on the first missed window")
	}
	if port.Written.Len() == 0 {
		t.Fatalf("expected an unsolicited PONG to have been sent")
	}
}
