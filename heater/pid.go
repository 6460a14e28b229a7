package heater

import (
	"time"

	"isochron/config"
)

// PIDWindowS is the time-proportioning window length.
const PIDWindowS = 10

// DefaultControlPeriod is the PID sample period.
const DefaultControlPeriod = time.Second

// DefaultIntegralLimitC bounds the integral accumulator (in degree-seconds)
// to prevent windup.
const DefaultIntegralLimitC = 20.0

// PID is a time-proportioned P+I+D controller. Error is sampled at
// controlPeriod; the derivative term is computed on the sampled
// temperature (not on the error) to suppress setpoint kicks, per the
// design. Output is modulated as an ON/OFF duty within a PIDWindowS
// window: the duty fraction is recomputed once at the start of each
// window and held for that window's length, which is what lets the duty
// decision and the per-tick PID math run at different cadences.
type PID struct {
	kp, ki, kd float64
	deadbandC  float64

	controlPeriod time.Duration
	windowTicks   int
	tickInWindow  int
	onThisWindow  int

	integral  float64
	prevTempC float64
	havePrev  bool

	configured bool
}

// NewPID builds a PID from stored coefficients (scaled by 100) and a
// deadband in tenths of a degree. A PID with no configured coefficients
// always commands OFF, the safe default.
func NewPID(coeffs config.PIDCoefficients, deadbandTenths int16, controlPeriod time.Duration) *PID {
	if controlPeriod <= 0 {
		controlPeriod = DefaultControlPeriod
	}
	windowTicks := int(PIDWindowS * time.Second / controlPeriod)
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &PID{
		kp:            float64(coeffs.KpX100) / 100.0,
		ki:            float64(coeffs.KiX100) / 100.0,
		kd:            float64(coeffs.KdX100) / 100.0,
		deadbandC:     float64(deadbandTenths) / 10.0,
		controlPeriod: controlPeriod,
		windowTicks:   windowTicks,
		configured:    coeffs.IsConfigured(),
	}
}

// Reset clears accumulated integral/derivative/window state, e.g. when
// entering Running after being OFF.
func (p *PID) Reset() {
	p.integral = 0
	p.havePrev = false
	p.tickInWindow = 0
	p.onThisWindow = 0
}

// Update is called once per control period with the current temperature
// and target, both in whole Celsius with fractional precision. It
// returns whether the heater should be commanded ON for this tick.
func (p *PID) Update(tempC, targetC float64) bool {
	if !p.configured {
		return false
	}

	errC := targetC - tempC
	if errC > -p.deadbandC && errC < p.deadbandC {
		errC = 0
	}

	dtSeconds := p.controlPeriod.Seconds()
	p.integral += errC * dtSeconds
	if p.integral > DefaultIntegralLimitC {
		p.integral = DefaultIntegralLimitC
	} else if p.integral < -DefaultIntegralLimitC {
		p.integral = -DefaultIntegralLimitC
	}

	var dTempDt float64
	if p.havePrev {
		dTempDt = (tempC - p.prevTempC) / dtSeconds
	}
	p.prevTempC = tempC
	p.havePrev = true

	u := p.kp*errC + p.ki*p.integral - p.kd*dTempDt
	if u > 1 {
		u = 1
	} else if u < 0 {
		u = 0
	}

	if p.tickInWindow == 0 {
		onTicks := int(u * float64(p.windowTicks))
		if onTicks > p.windowTicks {
			onTicks = p.windowTicks
		}
		if onTicks < 0 {
			onTicks = 0
		}
		p.onThisWindow = onTicks
	}

	on := p.tickInWindow < p.onThisWindow
	p.tickInWindow++
	if p.tickInWindow >= p.windowTicks {
		p.tickInWindow = 0
	}
	return on
}
