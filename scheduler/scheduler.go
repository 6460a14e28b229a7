package scheduler

import "isochron/config"

// Phase is the scheduler's own execution phase for the single profile it
// currently owns. It is narrower than state.MachineState: the Controller
// maps Running/Paused here onto its own broader state, and owns
// everything about spin-off and step sequencing.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
)

// Event is what Tick hands back to the Controller.
type Event int

const (
	EventNone Event = iota
	EventStepFinished
	EventProfileFinished
)

// MotorCommand is the scheduler's opinion of what the motor should be
// doing right now; the Controller feeds it straight to the Motor
// Controller's SetTarget.
type MotorCommand struct {
	RPM       uint16
	Direction config.Direction
}

// StoppedMotorCommand is the zero-RPM command used whenever the scheduler
// is not actively running a segment.
func StoppedMotorCommand() MotorCommand {
	return MotorCommand{RPM: 0, Direction: config.Clockwise}
}

// Scheduler owns the segment list and elapsed-time counters for one
// profile's execution. It is a pure reducer over its own state plus the
// now/elapsed values the Controller feeds it; it holds no clock of its
// own.
type Scheduler struct {
	phase Phase

	segments        []Segment
	segmentIndex    int
	segmentElapsedS uint32
	profileElapsedS uint32
}

// New returns an idle Scheduler.
func New() *Scheduler {
	return &Scheduler{phase: PhaseIdle}
}

// Start expands the given profile into segments and begins running the
// first one. It fails only if GenerateSegments rejects the profile (zero
// iterations, or segment math that doesn't divide evenly) — callers are
// expected to validate profiles at config load time, so this should not
// trigger in practice.
func (s *Scheduler) Start(p config.Profile) error {
	segments, err := GenerateSegments(p)
	if err != nil {
		return err
	}
	s.segments = segments
	s.segmentIndex = 0
	s.segmentElapsedS = 0
	s.profileElapsedS = 0
	s.phase = PhaseRunning
	return nil
}

// Phase reports the scheduler's current phase.
func (s *Scheduler) Phase() Phase { return s.phase }

// MotorCommand is the target the motor controller should be driven
// toward right now.
func (s *Scheduler) MotorCommand() MotorCommand {
	if s.phase != PhaseRunning || s.segmentIndex >= len(s.segments) {
		return StoppedMotorCommand()
	}
	seg := s.segments[s.segmentIndex]
	return MotorCommand{RPM: seg.RPM, Direction: seg.Direction}
}

// Tick advances the running profile by elapsedS seconds and reports any
// segment/profile boundary crossed. It is a no-op (and returns
// EventNone) unless the scheduler is Running — in particular, the
// Controller simply stops calling Tick while Paused, which is what
// freezes the elapsed counters for a later Resume.
func (s *Scheduler) Tick(elapsedS uint32) Event {
	if s.phase != PhaseRunning || s.segmentIndex >= len(s.segments) {
		return EventNone
	}

	s.segmentElapsedS += elapsedS
	s.profileElapsedS += elapsedS

	seg := s.segments[s.segmentIndex]
	if s.segmentElapsedS < seg.DurationS {
		return EventNone
	}

	s.segmentIndex++
	s.segmentElapsedS = 0

	if s.segmentIndex >= len(s.segments) {
		s.phase = PhaseIdle
		return EventProfileFinished
	}
	return EventStepFinished
}

// Pause freezes the elapsed counters in place. Returns false if not
// currently Running.
func (s *Scheduler) Pause() bool {
	if s.phase != PhaseRunning {
		return false
	}
	s.phase = PhasePaused
	return true
}

// Resume continues from exactly where Pause left off. Returns false if
// not currently Paused.
func (s *Scheduler) Resume() bool {
	if s.phase != PhasePaused {
		return false
	}
	s.phase = PhaseRunning
	return true
}

// Abort resets all counters and the segment list without emitting an
// event.
func (s *Scheduler) Abort() {
	s.phase = PhaseIdle
	s.segments = nil
	s.segmentIndex = 0
	s.segmentElapsedS = 0
	s.profileElapsedS = 0
}

// TotalElapsedS is the elapsed time across the whole profile so far.
func (s *Scheduler) TotalElapsedS() uint32 { return s.profileElapsedS }

// SegmentRemainingS is the time left in the current segment.
func (s *Scheduler) SegmentRemainingS() uint32 {
	if s.segmentIndex >= len(s.segments) {
		return 0
	}
	seg := s.segments[s.segmentIndex]
	if s.segmentElapsedS >= seg.DurationS {
		return 0
	}
	return seg.DurationS - s.segmentElapsedS
}

// StepTotalS is the sum of all segment durations for the current
// profile (excluding any spin-off, which the Controller tracks
// separately).
func (s *Scheduler) StepTotalS() uint32 {
	var total uint32
	for _, seg := range s.segments {
		total += seg.DurationS
	}
	return total
}

// SegmentIndex is the index of the segment currently (or most recently)
// running.
func (s *Scheduler) SegmentIndex() int { return s.segmentIndex }

// Segments returns the current profile's derived segment list.
func (s *Scheduler) Segments() []Segment { return s.segments }
