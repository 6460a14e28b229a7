// Package motor implements the driver-facing Motor Controller: it applies
// the motion planner's ramp to an abstract stepper driver and guarantees
// the direction field never flips while the motor is at speed.
package motor

import (
	"time"

	"isochron/drivers"
	"isochron/motion"
)

// Controller holds the current commanded RPM and direction and drives a
// drivers.StepperDriver toward a caller-set target.
type Controller struct {
	driver       drivers.StepperDriver
	accelRPMPerS uint32

	currentRPMx10 int32 // running value, ramped every Poll
	targetRPMx10  int32 // what Poll currently ramps toward (0 during a reversal)
	latchedRPMx10 int32 // the ultimately desired magnitude once any reversal completes

	dir             drivers.Direction
	pendingDir      drivers.Direction
	reversalPending bool

	lastPoll time.Duration
	polled   bool

	stalled bool
}

// NewController builds a Motor Controller bound to driver, ramping at
// accelRPMPerS (clamped into the planner's compile-time band).
func NewController(driver drivers.StepperDriver, accelRPMPerS uint32) *Controller {
	if accelRPMPerS < motion.DefaultAccelRPMPerS {
		accelRPMPerS = motion.DefaultAccelRPMPerS
	}
	if accelRPMPerS > motion.MaxAccelRPMPerS {
		accelRPMPerS = motion.MaxAccelRPMPerS
	}
	return &Controller{driver: driver, accelRPMPerS: accelRPMPerS}
}

// SetTarget latches a new target RPM and direction. If the direction
// reverses while the motor is still turning, the reversal is deferred:
// the controller first decelerates to zero, flips the direction field
// only once zero is reached, then ramps up to the latched target.
func (c *Controller) SetTarget(rpm uint16, dir drivers.Direction) {
	rpmx10 := int32(rpm) * 10

	if dir == c.dir || c.currentRPMx10 == 0 {
		if dir != c.dir {
			c.dir = dir
			c.driver.SetDirection(dir)
		}
		c.reversalPending = false
		c.latchedRPMx10 = rpmx10
		c.targetRPMx10 = rpmx10
		return
	}

	// Direction change requested while still spinning: force target to
	// zero first, flip direction only once Poll observes zero.
	c.latchedRPMx10 = rpmx10
	c.pendingDir = dir
	c.reversalPending = true
	c.targetRPMx10 = 0
}

// Enable toggles the driver. Disabling clears the stall latch and zeroes
// all commanded state, per the failure-mode contract: is_stalled() stays
// true only until enable(false).
func (c *Controller) Enable(on bool) {
	c.driver.Enable(on)
	if !on {
		c.stalled = false
		c.currentRPMx10 = 0
		c.targetRPMx10 = 0
		c.latchedRPMx10 = 0
		c.reversalPending = false
		c.polled = false
	}
}

// Poll advances the ramp by the elapsed time since the last Poll call and
// returns the newly commanded RPM. It must be called at least once per
// scheduling cycle while the motor is active.
func (c *Controller) Poll(now time.Duration) uint16 {
	var dt time.Duration
	if c.polled {
		dt = now - c.lastPoll
	}
	c.lastPoll = now
	c.polled = true

	c.currentRPMx10 = motion.StepRPMx10(c.currentRPMx10, c.targetRPMx10, c.accelRPMPerS, dt)

	if c.reversalPending && c.currentRPMx10 == 0 {
		c.dir = c.pendingDir
		c.driver.SetDirection(c.dir)
		c.reversalPending = false
		c.targetRPMx10 = c.latchedRPMx10
	}

	rpm := uint16(c.currentRPMx10 / 10)
	c.driver.SetRPM(rpm)

	if c.driver.IsStalled() {
		c.stalled = true
	}

	return rpm
}

// IsStalled reports whether the driver has signalled a stall since the
// last Enable(false).
func (c *Controller) IsStalled() bool { return c.stalled }

// CommandedRPM returns the current ramp value without advancing it.
func (c *Controller) CommandedRPM() uint16 { return uint16(c.currentRPMx10 / 10) }

// Direction returns the currently commanded direction.
func (c *Controller) Direction() drivers.Direction { return c.dir }
