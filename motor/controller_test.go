package motor

import (
	"testing"
	"time"

	"isochron/drivers"
)

func TestControllerRampsToTarget(t *testing.T) {
	stepper := drivers.NewMockStepper()
	c := NewController(stepper, 50)
	c.Enable(true)
	c.SetTarget(100, drivers.Clockwise)

	c.Poll(0)
	rpm := c.Poll(time.Second)
	if rpm == 0 || rpm >= 100 {
		t.Fatalf("expected partial ramp after 1s, got %d", rpm)
	}

	rpm = c.Poll(10 * time.Second)
	if rpm != 100 {
		t.Fatalf("expected to reach target 100, got %d", rpm)
	}
}

func TestControllerDeferredReversal(t *testing.T) {
	stepper := drivers.NewMockStepper()
	c := NewController(stepper, 100)
	c.Enable(true)
	c.SetTarget(100, drivers.Clockwise)
	c.Poll(0)
	c.Poll(5 * time.Second) // reach 100 cw

	if stepper.DirFlips != 0 {
		t.Fatalf("expected no direction flip while running clockwise, got %d", stepper.DirFlips)
	}

	// Request reversal to ccw while still spinning: direction must not
	// flip until RPM reaches zero.
	c.SetTarget(100, drivers.CounterClockwise)
	sawZero := false
	t0 := 5 * time.Second
	for i := 1; i <= 20; i++ {
		now := t0 + time.Duration(i)*100*time.Millisecond
		rpm := c.Poll(now)
		if rpm == 0 {
			sawZero = true
		}
		if stepper.Dir == drivers.CounterClockwise && rpm > 0 && !sawZero {
			t.Fatalf("direction flipped to ccw before RPM reached zero")
		}
	}
	if !sawZero {
		t.Fatalf("expected an intermediate tick at RPM=0 during reversal")
	}
	if stepper.Dir != drivers.CounterClockwise {
		t.Fatalf("expected final direction ccw, got %v", stepper.Dir)
	}
}

func TestControllerStallLatchesUntilDisabled(t *testing.T) {
	stepper := drivers.NewMockStepper()
	c := NewController(stepper, 50)
	c.Enable(true)
	c.SetTarget(50, drivers.Clockwise)
	c.Poll(0)

	stepper.Stalled = true
	c.Poll(time.Second)
	if !c.IsStalled() {
		t.Fatalf("expected stall to latch")
	}

	stepper.Stalled = false
	c.Poll(2 * time.Second)
	if !c.IsStalled() {
		t.Fatalf("stall should persist even after the driver clears its flag")
	}

	c.Enable(false)
	if c.IsStalled() {
		t.Fatalf("expected stall latch cleared by Enable(false)")
	}
}
