package drivers

// PWMOutput is the raw actuator a DC motor adaptation drives: a duty
// cycle in percent, plus enable.
type PWMOutput interface {
	SetDutyPercent(percent uint8)
	Enable(on bool)
}

// DCMotor adapts a PWM-driven DC motor to the StepperDriver contract, per
// the design's resolution of the DC/AC adaptation question: RPM is mapped
// linearly onto duty cycle, entirely below the Motor Controller.
type DCMotor struct {
	pwm           PWMOutput
	maxRPM        uint16
	minDuty       uint8
	direction     Direction
	stallObserved bool
}

// NewDCMotor builds a DCMotor adaptation. maxRPM is the RPM value that
// maps to 100% duty; minDuty is the floor below which the motor stalls
// mechanically (sourced from the DC motor config section).
func NewDCMotor(pwm PWMOutput, maxRPM uint16, minDuty uint8) *DCMotor {
	return &DCMotor{pwm: pwm, maxRPM: maxRPM, minDuty: minDuty}
}

func (m *DCMotor) SetRPM(rpm uint16) {
	if rpm == 0 {
		m.pwm.SetDutyPercent(0)
		return
	}
	if rpm > m.maxRPM {
		rpm = m.maxRPM
	}
	duty := uint8(uint32(rpm) * 100 / uint32(m.maxRPM))
	if duty < m.minDuty {
		duty = m.minDuty
	}
	m.pwm.SetDutyPercent(duty)
}

func (m *DCMotor) SetDirection(dir Direction) { m.direction = dir }

func (m *DCMotor) Enable(on bool) { m.pwm.Enable(on) }

// IsStalled reports the flag last set by SetStallObserved (false until
// then): a DC motor adaptation has no stall silicon to observe, so faults
// arrive, if at all, through an external current-sense collaborator.
func (m *DCMotor) IsStalled() bool { return m.stallObserved }

// SetStallObserved lets a current-sense collaborator report a fault;
// nothing in this package calls it.
func (m *DCMotor) SetStallObserved(stalled bool) { m.stallObserved = stalled }
