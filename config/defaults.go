package config

// DefaultUIConfig mirrors the increments named in the design's external
// interfaces section.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		RPMStep:   10,
		TimeStepS: 30,
		TempStepC: 5,
	}
}

// DefaultHeaterConfig is the safe fallback for a heater section that fails
// to parse: bang-bang with a conservative max temperature, so a zeroed
// config never commands a dangerous target. Grounded on the teacher's
// applyDefaults discipline of always landing on a safe, fully-populated
// struct rather than leaving zero values to propagate.
func DefaultHeaterConfig(name string) HeaterConfig {
	return HeaterConfig{
		Name:        name,
		Mode:        BangBang,
		MaxTempC:    55,
		HysteresisC: 2,
		DeadbandC:   2, // tenths of a degree (0.2 C)
	}
}

// DefaultStepperMotorConfig is a conservative stand-in for an unparsed
// stepper section.
func DefaultStepperMotorConfig() StepperMotorConfig {
	return StepperMotorConfig{
		Microsteps:    16,
		GearRatio:     1.0,
		RunCurrentMA:  800,
		HoldCurrentMA: 400,
	}
}

// DefaultDCMotorConfig is a conservative stand-in for an unparsed DC
// motor section.
func DefaultDCMotorConfig() DCMotorConfig {
	return DCMotorConfig{
		PWMFrequencyHz: 20000,
		MinDutyPercent: 10,
		SoftStartMS:    250,
		SoftStopMS:     250,
	}
}

// DefaultACMotorConfig is a conservative stand-in for an unparsed AC
// motor section.
func DefaultACMotorConfig() ACMotorConfig {
	return ACMotorConfig{
		RelayType:        "mechanical",
		MinSwitchDelayMS: 500,
		Interlock:        true,
	}
}

// DefaultMachineConfig is what the core boots with if the external loader
// supplies nothing at all — no profiles, no programs, but a fully safe
// motor/heater/UI baseline. A config failure never prevents boot.
func DefaultMachineConfig() MachineConfig {
	return MachineConfig{
		MotorType: StepperMotor,
		Stepper:   DefaultStepperMotorConfig(),
		DC:        DefaultDCMotorConfig(),
		AC:        DefaultACMotorConfig(),
		UI:        DefaultUIConfig(),
	}
}
