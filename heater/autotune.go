package heater

import (
	"math"
	"time"

	"isochron/config"
	"isochron/drivers"
)

// MinPeaks/MaxPeaks bound how many oscillation peaks the relay test
// collects before (or must, by MaxPeaks) computing a result.
const (
	MinPeaks = 12
	MaxPeaks = 24
)

// AutotuneTimeout is the wall-clock abort bound.
const AutotuneTimeout = 20 * time.Minute

// AbortReason enumerates why an autotune run ended without a result. The
// Controller reports a failed run as the AutotuneAborted error kind
// without the reason; the reason is only available from Reason().
type AbortReason int

const (
	AbortNone AbortReason = iota
	AbortOverTemp
	AbortTimeout
	AbortSensorFault
	AbortNoOscillation
	AbortCancelled
)

// Phase is the autotune run's internal progress.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseHeating
	PhaseCycling
	PhaseComplete
	PhaseFailed
)

type sample struct {
	t time.Duration
	v float64
}

type peak struct {
	t    time.Duration
	high bool
	v    float64
}

// Autotune runs an Åström–Hägglund relay test and derives Ziegler–Nichols
// PID coefficients from the resulting oscillation.
type Autotune struct {
	sensor drivers.TemperatureSensor
	output drivers.HeaterOutput

	targetC     float64
	maxTempC    float64
	hysteresisC float64
	relayOn     bool

	phase  Phase
	reason AbortReason

	startTime time.Duration

	hist  []sample
	peaks []peak

	result config.PIDCoefficients
}

// NewAutotune builds an Autotune bound to the given sensor/output, with a
// relay target, an abort temperature, and the relay hysteresis band —
// all in whole Celsius.
func NewAutotune(sensor drivers.TemperatureSensor, output drivers.HeaterOutput, targetC, maxTempC, hysteresisC float64) *Autotune {
	return &Autotune{
		sensor:      sensor,
		output:      output,
		targetC:     targetC,
		maxTempC:    maxTempC,
		hysteresisC: hysteresisC,
	}
}

// Start begins the run: drive the heater ON and wait to enter the target
// zone before beginning the relay cycle.
func (a *Autotune) Start(now time.Duration) {
	a.phase = PhaseHeating
	a.startTime = now
	a.relayOn = true
	a.output.SetOn(true)
}

// Cancel aborts the run at the user's request.
func (a *Autotune) Cancel() {
	a.fail(AbortCancelled)
}

func (a *Autotune) fail(reason AbortReason) {
	a.phase = PhaseFailed
	a.reason = reason
	a.output.SetOn(false)
}

// Phase returns the current run phase.
func (a *Autotune) Phase() Phase { return a.phase }

// Reason returns the abort reason once Phase() == PhaseFailed.
func (a *Autotune) Reason() AbortReason { return a.reason }

// Result returns the derived PID coefficients once Phase() == PhaseComplete.
func (a *Autotune) Result() config.PIDCoefficients { return a.result }

// Update advances the run by one control-period sample and reports
// whether the run has finished (Complete or Failed).
func (a *Autotune) Update(now time.Duration) bool {
	if a.phase == PhaseComplete || a.phase == PhaseFailed {
		return true
	}

	if now-a.startTime > AutotuneTimeout {
		a.fail(AbortTimeout)
		return true
	}

	tempCenti, fault := a.sensor.Read()
	if fault {
		a.fail(AbortSensorFault)
		return true
	}
	tempC := float64(tempCenti) / 100.0
	if tempC > a.maxTempC {
		a.fail(AbortOverTemp)
		return true
	}

	switch a.phase {
	case PhaseHeating:
		a.output.SetOn(true)
		if tempC >= a.targetC {
			a.phase = PhaseCycling
			a.relayOn = false
			a.output.SetOn(false)
			a.hist = nil
		}
	case PhaseCycling:
		a.runCycling(now, tempC)
	}

	return a.phase == PhaseComplete || a.phase == PhaseFailed
}

func (a *Autotune) runCycling(now time.Duration, tempC float64) {
	if a.relayOn && tempC >= a.targetC+a.hysteresisC {
		a.relayOn = false
		a.output.SetOn(false)
	} else if !a.relayOn && tempC <= a.targetC-a.hysteresisC {
		a.relayOn = true
		a.output.SetOn(true)
	}

	a.detectPeak(now, tempC)

	if len(a.peaks) >= MinPeaks {
		a.calculateResult()
	} else if len(a.peaks) >= MaxPeaks {
		a.calculateResult()
	}
}

// detectPeak keeps a 3-sample sliding window and flags the middle sample
// as a peak when it is a strict local max or min.
func (a *Autotune) detectPeak(now time.Duration, tempC float64) {
	a.hist = append(a.hist, sample{t: now, v: tempC})
	if len(a.hist) < 3 {
		return
	}
	if len(a.hist) > 3 {
		a.hist = a.hist[len(a.hist)-3:]
	}

	prev, mid, next := a.hist[0], a.hist[1], a.hist[2]
	if mid.v > prev.v && mid.v > next.v {
		a.peaks = append(a.peaks, peak{t: mid.t, high: true, v: mid.v})
	} else if mid.v < prev.v && mid.v < next.v {
		a.peaks = append(a.peaks, peak{t: mid.t, high: false, v: mid.v})
	}
}

func (a *Autotune) calculateResult() {
	var highs, lows []peak
	for _, p := range a.peaks {
		if p.high {
			highs = append(highs, p)
		} else {
			lows = append(lows, p)
		}
	}
	if len(highs) < 2 || len(lows) < 2 {
		a.fail(AbortNoOscillation)
		return
	}

	avg := func(ps []peak) float64 {
		var sum float64
		for _, p := range ps {
			sum += p.v
		}
		return sum / float64(len(ps))
	}
	avgHigh := avg(highs)
	avgLow := avg(lows)
	amplitude := (avgHigh - avgLow) / 2

	periodS := averageInterval(highs, lows)

	if amplitude < 0.5 || periodS < 4 {
		a.fail(AbortNoOscillation)
		return
	}

	const relayAmplitude = 1.0 // full on/off duty, normalized
	ku := (4 * relayAmplitude) / (math.Pi * amplitude)

	kp := 0.6 * ku
	ki := 1.2 * ku / periodS
	kd := 0.075 * ku * periodS

	a.result = config.PIDCoefficients{
		KpX100: clampX100(kp),
		KiX100: clampX100(ki),
		KdX100: clampX100(kd),
	}
	a.phase = PhaseComplete
	a.output.SetOn(false)
}

// averageInterval estimates the oscillation period Pu by averaging
// consecutive same-type peak-to-peak intervals — high-to-high and
// low-to-low separately, then pooled. A high-to-low interval is only a
// half-period, so mixing the two in with all peaks in emission order
// would understate Pu by roughly half.
func averageInterval(highs, lows []peak) float64 {
	var total float64
	var count int
	accumulate := func(ps []peak) {
		for i := 1; i < len(ps); i++ {
			total += ps[i].t.Seconds() - ps[i-1].t.Seconds()
			count++
		}
	}
	accumulate(highs)
	accumulate(lows)
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func clampX100(v float64) int16 {
	x := v * 100
	if x > 32767 {
		return 32767
	}
	if x < -32768 {
		return -32768
	}
	return int16(x)
}
