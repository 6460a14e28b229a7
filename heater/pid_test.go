package heater

import (
	"testing"
	"time"

	"isochron/config"
)

func TestPIDUnconfiguredAlwaysOff(t *testing.T) {
	p := NewPID(config.PIDCoefficients{}, 0, time.Second)
	for i := 0; i < PIDWindowS*2; i++ {
		if on := p.Update(30, 55); on {
			t.Fatalf("unconfigured PID must never command ON")
		}
	}
}

func TestPIDWindowDutyHeldForWindow(t *testing.T) {
	coeffs := config.PIDCoefficients{KpX100: 100}
	p := NewPID(coeffs, 0, time.Second)

	var onCount int
	var decisions []bool
	for i := 0; i < PIDWindowS; i++ {
		on := p.Update(50, 55) // constant 5C error, full duty expected
		decisions = append(decisions, on)
		if on {
			onCount++
		}
	}
	if onCount != PIDWindowS {
		t.Fatalf("expected full duty (%d ticks) under large constant error, got %d", PIDWindowS, onCount)
	}
}

func TestPIDDeadbandSuppressesSmallError(t *testing.T) {
	coeffs := config.PIDCoefficients{KiX100: 10}
	p := NewPID(coeffs, 10, time.Second) // deadband 1.0C

	for i := 0; i < PIDWindowS; i++ {
		p.Update(54.5, 55) // 0.5C error, within deadband
	}
	if p.integral != 0 {
		t.Fatalf("expected deadband to zero the error and suppress integral accumulation, got %v", p.integral)
	}
}

func TestPIDIntegralClamped(t *testing.T) {
	coeffs := config.PIDCoefficients{KiX100: 1000}
	p := NewPID(coeffs, 0, time.Second)

	for i := 0; i < PIDWindowS*5; i++ {
		p.Update(0, 100)
	}
	if p.integral > DefaultIntegralLimitC {
		t.Fatalf("expected integral clamped to %v, got %v", DefaultIntegralLimitC, p.integral)
	}
}

func TestPIDResetClearsState(t *testing.T) {
	coeffs := config.PIDCoefficients{KiX100: 100}
	p := NewPID(coeffs, 0, time.Second)
	for i := 0; i < 3; i++ {
		p.Update(40, 55)
	}
	p.Reset()
	if p.integral != 0 || p.havePrev || p.tickInWindow != 0 {
		t.Fatalf("expected Reset to clear integral/derivative/window state")
	}
}
