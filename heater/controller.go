// Package heater implements the Heater Controller: bang-bang or
// time-proportioned PID control over an abstract on/off output and a
// temperature source, with a safety overlay that applies regardless of
// mode.
package heater

import (
	"isochron/config"
	"isochron/drivers"
)

// Controller wraps one of the two control modes and enforces the safety
// overlay: OFF whenever the caller reports the machine is not in a
// heat-permitted state, the sensor reports a fault, or the reading
// exceeds max_temp. These checks run inside the controller so it stays
// safe against caller mistakes.
type Controller struct {
	output drivers.HeaterOutput
	sensor drivers.TemperatureSensor

	mode     config.HeaterMode
	bangbang *BangBang
	pid      *PID

	maxTempCentiC int32
	targetCentiC  int32
	lastCommand   bool
}

// NewController builds a Controller for the given heater configuration.
func NewController(cfg config.HeaterConfig, output drivers.HeaterOutput, sensor drivers.TemperatureSensor) *Controller {
	c := &Controller{
		output:        output,
		sensor:        sensor,
		mode:          cfg.Mode,
		maxTempCentiC: int32(cfg.MaxTempC) * 100,
	}
	switch cfg.Mode {
	case config.BangBang:
		c.bangbang = NewBangBang(float64(cfg.HysteresisC))
	case config.PID:
		c.pid = NewPID(cfg.PID, cfg.DeadbandC, DefaultControlPeriod)
	}
	return c
}

// SetTargetC sets the target temperature in centi-Celsius.
func (c *Controller) SetTargetC(centiC int32) {
	c.targetCentiC = centiC
}

// Reset clears mode-specific control state (integral, hysteresis latch),
// used when (re-)entering a heat-permitted state.
func (c *Controller) Reset() {
	if c.bangbang != nil {
		c.bangbang.Reset()
	}
	if c.pid != nil {
		c.pid.Reset()
	}
}

// Update samples the temperature source, applies the safety overlay, runs
// the selected control mode, drives the output, and returns the commanded
// state. stateAllowsHeat must be true only while MachineState is Running
// or Autotuning.
func (c *Controller) Update(stateAllowsHeat bool) bool {
	tempCenti, fault := c.sensor.Read()

	if !stateAllowsHeat || fault || tempCenti > c.maxTempCentiC {
		c.output.SetOn(false)
		c.lastCommand = false
		return false
	}

	tempC := float64(tempCenti) / 100.0
	targetC := float64(c.targetCentiC) / 100.0

	var on bool
	switch c.mode {
	case config.BangBang:
		on = c.bangbang.Update(tempC, targetC)
	case config.PID:
		on = c.pid.Update(tempC, targetC)
	}

	c.output.SetOn(on)
	c.lastCommand = on
	return on
}

// LastCommand reports the most recently commanded state without
// re-sampling the sensor.
func (c *Controller) LastCommand() bool { return c.lastCommand }
