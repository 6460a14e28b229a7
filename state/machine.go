// Package state owns the MachineState and the transition table that
// governs it. All motor, heater, and UI behavior is a function of the
// current state and an event; the table here is Controller (component
// 7 of the design): the single owner of runtime state.
package state

import "isochron/safety"

// MachineState enumerates every state the Controller can be in. Autotuning
// is a first-class state (not a Running variant): the heater's relay
// test runs independently of any profile, and folding it into Running
// would force every Running guard to special-case "unless autotuning,"
// which is worse than one extra state.
type MachineState int

const (
	Boot MachineState = iota
	Idle
	ProgramSelected
	AwaitingJar
	Running
	AwaitingSpinOff
	SpinOff
	Paused
	StepComplete
	ProgramComplete
	Autotuning
	ErrorState
)

func (s MachineState) String() string {
	switch s {
	case Boot:
		return "boot"
	case Idle:
		return "idle"
	case ProgramSelected:
		return "program_selected"
	case AwaitingJar:
		return "awaiting_jar"
	case Running:
		return "running"
	case AwaitingSpinOff:
		return "awaiting_spinoff"
	case SpinOff:
		return "spinoff"
	case Paused:
		return "paused"
	case StepComplete:
		return "step_complete"
	case ProgramComplete:
		return "program_complete"
	case Autotuning:
		return "autotuning"
	case ErrorState:
		return "error"
	default:
		return "unknown"
	}
}

// EventKind enumerates every event the Controller can consume.
type EventKind int

const (
	BootComplete EventKind = iota
	SelectProgram
	EditParameter
	ConfirmEdit
	Back
	Start
	Pause
	Resume
	Abort
	UserConfirm
	StepFinished
	ProfileFinished
	SpinOffFinished
	NextStep
	AcknowledgeError
	StartAutotune
	AutotuneComplete
	AutotuneFailed
	CancelAutotune
	ErrorDetected
)

// Event carries an EventKind plus whatever guard data that kind needs.
// Guards are explicit fields rather than hidden controller lookups, so
// Transition stays a pure function of (Status, Event).
type Event struct {
	Kind EventKind

	// ErrorKind is valid when Kind == ErrorDetected.
	ErrorKind safety.ErrorKind

	// SpinoffConfigured is valid when Kind == ProfileFinished: whether the
	// profile that just finished has a Spinoff section.
	SpinoffConfigured bool

	// LastStep is valid when Kind == NextStep: whether the step that just
	// completed was the program's final step.
	LastStep bool
}

// Status is the full MachineState, including the error kind when
// State == ErrorState.
type Status struct {
	State     MachineState
	ErrorKind safety.ErrorKind

	// ResumeState is valid when State == Paused: the state Resume
	// restores, either Running or SpinOff depending on which one Pause
	// was entered from.
	ResumeState MachineState
}

// BootStatus returns the power-on status.
func BootStatus() Status { return Status{State: Boot} }

// MotorAllowed reports whether the motor may be commanded non-zero in
// this state.
func (s Status) MotorAllowed() bool {
	return s.State == Running || s.State == SpinOff
}

// HeaterAllowed reports whether the heater may be commanded ON in this
// state — Running or Autotuning, never SpinOff (basket is out of
// solution) or any other state.
func (s Status) HeaterAllowed() bool {
	return s.State == Running || s.State == Autotuning
}

// IsError reports whether this status represents a fault.
func (s Status) IsError() bool { return s.State == ErrorState }

// IsTerminal reports whether this status requires explicit user action
// to leave (Idle counts as terminal in the sense that nothing is
// running, not that it's unreachable).
func (s Status) IsTerminal() bool {
	return s.State == Idle || s.State == ProgramComplete || s.State == ErrorState
}

// Transition computes the next status for (s, e). It never panics: any
// event not valid for the current state is ignored, returning s
// unchanged. Abort and ErrorDetected pre-empt every state per the
// design's cancellation model.
func (s Status) Transition(e Event) Status {
	switch e.Kind {
	case Abort:
		return Status{State: Idle}
	case ErrorDetected:
		return Status{State: ErrorState, ErrorKind: e.ErrorKind}
	}

	switch s.State {
	case Boot:
		if e.Kind == BootComplete {
			return Status{State: Idle}
		}

	case Idle:
		switch e.Kind {
		case SelectProgram:
			return Status{State: ProgramSelected}
		case StartAutotune:
			return Status{State: Autotuning}
		}

	case ProgramSelected:
		switch e.Kind {
		case Start:
			return Status{State: AwaitingJar}
		case Back:
			return Status{State: Idle}
			// EditParameter/ConfirmEdit are an internal sub-state of
			// ProgramSelected (session-only parameter edits); they never
			// change MachineState.
		}

	case AwaitingJar:
		if e.Kind == UserConfirm {
			return Status{State: Running}
		}

	case Running:
		switch e.Kind {
		case Pause:
			return Status{State: Paused, ResumeState: Running}
		case StepFinished:
			return Status{State: Running}
		case ProfileFinished:
			if e.SpinoffConfigured {
				return Status{State: AwaitingSpinOff}
			}
			return Status{State: StepComplete}
		}

	case AwaitingSpinOff:
		if e.Kind == UserConfirm {
			return Status{State: SpinOff}
		}

	case SpinOff:
		switch e.Kind {
		case Pause:
			return Status{State: Paused, ResumeState: SpinOff}
		case SpinOffFinished:
			return Status{State: StepComplete}
		}

	case Paused:
		if e.Kind == Resume {
			return Status{State: s.ResumeState}
		}

	case StepComplete:
		if e.Kind == NextStep {
			if e.LastStep {
				return Status{State: ProgramComplete}
			}
			return Status{State: Running}
		}

	case ProgramComplete:
		if e.Kind == SelectProgram {
			return Status{State: ProgramSelected}
		}

	case Autotuning:
		switch e.Kind {
		case AutotuneComplete, CancelAutotune:
			return Status{State: Idle}
		case AutotuneFailed:
			return Status{State: ErrorState, ErrorKind: safety.AutotuneAborted}
		}

	case ErrorState:
		if e.Kind == AcknowledgeError && s.ErrorKind.Recoverable() {
			return Status{State: Idle}
		}
	}

	return s
}
