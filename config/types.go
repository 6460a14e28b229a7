// Package config defines the typed configuration structs the core accepts
// from an external loader. Parsing configuration text is explicitly out of
// scope (see the design's external-interfaces section); this package only
// describes the shapes and their built-in defaults.
package config

// Limits enforced on the data model (see the design's invariants).
const (
	MaxLabelLen        = 16
	MaxProfiles        = 8
	MaxStepsPerProfile = 16
	MaxProfileRuntimeS = 90 * 60

	MinSegmentTimeS = 10

	MinRPM = 0
	MaxRPM = 250

	MinSpinoffLiftMM = 5
	MaxSpinoffLiftMM = 50
	MinSpinoffRPM    = 60
	MaxSpinoffRPM    = 200
	MinSpinoffTimeS  = 5
	MaxSpinoffTimeS  = 30

	MinTemperatureC = 30
	MaxTemperatureC = 50
)

// ProfileKind is the cleaning-stage category a Profile belongs to.
type ProfileKind int

const (
	Clean ProfileKind = iota
	Rinse
	Dry
)

func (k ProfileKind) String() string {
	switch k {
	case Clean:
		return "clean"
	case Rinse:
		return "rinse"
	case Dry:
		return "dry"
	default:
		return "unknown"
	}
}

// Direction is the basket's rotation sense.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
	Alternate
)

// SpinoffConfig describes the optional post-profile spin-off phase.
type SpinoffConfig struct {
	LiftMM uint16
	RPM    uint16
	TimeS  uint32
}

// Profile is a declarative description of behavior inside one jar.
type Profile struct {
	Label        string
	Kind         ProfileKind
	RPM          uint16
	DurationS    uint32
	Direction    Direction
	Iterations   uint8
	TemperatureC *int16 // required iff Kind == Dry, forbidden otherwise
	Spinoff      *SpinoffConfig
}

// ProgramStep is one (jar, profile) pair in a Program.
type ProgramStep struct {
	Jar     string
	Profile string
}

// Program is an ordered list of (jar-name, profile-name) steps.
type Program struct {
	Label string
	Steps []ProgramStep
}

// JarConfig names a jar position and, optionally, the heater that warms it.
type JarConfig struct {
	Name       string
	HeaterName string
}

// HeaterMode selects bang-bang or time-proportioned PID control.
type HeaterMode int

const (
	BangBang HeaterMode = iota
	PID
)

// PIDCoefficients are stored scaled by 100 to avoid floating point in the
// persisted/config representation; Kp = KpX100/100.0, and so on.
type PIDCoefficients struct {
	KpX100 int16
	KiX100 int16
	KdX100 int16
}

// IsConfigured reports whether any coefficient is non-zero.
func (c PIDCoefficients) IsConfigured() bool {
	return c.KpX100 != 0 || c.KiX100 != 0 || c.KdX100 != 0
}

// HeaterConfig is per-heater configuration.
type HeaterConfig struct {
	Name        string
	Mode        HeaterMode
	MaxTempC    int16
	HysteresisC int16 // bang-bang only
	PID         PIDCoefficients
	DeadbandC   int16 // tenths of a degree; PID only
}

// MotorType selects which driver adaptation backs the abstract stepper
// contract the core depends on (see the design's driver-boundary note).
type MotorType int

const (
	StepperMotor MotorType = iota
	DCMotor
	ACMotor
)

// StepperMotorConfig configures a real stepper driver.
type StepperMotorConfig struct {
	Microsteps    uint16
	GearRatio     float32
	RunCurrentMA  uint16
	HoldCurrentMA uint16
}

// DCMotorConfig configures a PWM-driven DC motor standing in for a stepper.
type DCMotorConfig struct {
	PWMFrequencyHz uint32
	MinDutyPercent uint8
	SoftStartMS    uint32
	SoftStopMS     uint32
}

// ACMotorConfig configures a relay-switched AC motor standing in for a
// stepper; RPM is necessarily on/off at this boundary (see the design's
// RPM-as-boolean note).
type ACMotorConfig struct {
	RelayType        string
	MinSwitchDelayMS uint32
	Interlock        bool
}

// UIConfig holds the increments the terminal uses when a user dials a
// parameter up or down.
type UIConfig struct {
	RPMStep   uint16
	TimeStepS uint32
	TempStepC int16
}

// MachineConfig is the top-level typed configuration handed to the core.
type MachineConfig struct {
	MotorType MotorType
	Stepper   StepperMotorConfig
	DC        DCMotorConfig
	AC        ACMotorConfig

	Heaters  []HeaterConfig
	Jars     []JarConfig
	Profiles []Profile
	Programs []Program
	UI       UIConfig
}
