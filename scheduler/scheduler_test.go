package scheduler

import (
	"testing"

	"isochron/config"
)

func TestSchedulerCreation(t *testing.T) {
	s := New()
	if s.Phase() != PhaseIdle {
		t.Fatalf("expected new scheduler to be Idle")
	}
	if cmd := s.MotorCommand(); cmd != StoppedMotorCommand() {
		t.Fatalf("expected stopped motor command, got %+v", cmd)
	}
}

func TestSchedulerStartAndRun(t *testing.T) {
	s := New()
	p := config.Profile{RPM: 120, DurationS: 60, Direction: config.Clockwise}
	if err := s.Start(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Phase() != PhaseRunning {
		t.Fatalf("expected Running after Start")
	}
	if cmd := s.MotorCommand(); cmd.RPM != 120 || cmd.Direction != config.Clockwise {
		t.Fatalf("unexpected motor command: %+v", cmd)
	}

	if ev := s.Tick(59); ev != EventNone {
		t.Fatalf("expected no event before segment boundary, got %v", ev)
	}
	if ev := s.Tick(1); ev != EventProfileFinished {
		t.Fatalf("expected ProfileFinished at final segment boundary, got %v", ev)
	}
	if s.Phase() != PhaseIdle {
		t.Fatalf("expected scheduler to return to Idle after ProfileFinished")
	}
}

func TestSchedulerStepFinishedBetweenSegments(t *testing.T) {
	s := New()
	p := config.Profile{RPM: 120, DurationS: 60, Direction: config.Alternate, Iterations: 3} // 6x10s
	if err := s.Start(p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ev := s.Tick(10)
	if ev != EventStepFinished {
		t.Fatalf("expected StepFinished at first segment boundary, got %v", ev)
	}
	if s.SegmentIndex() != 1 {
		t.Fatalf("expected segment index 1, got %d", s.SegmentIndex())
	}
	if cmd := s.MotorCommand(); cmd.Direction != config.CounterClockwise {
		t.Fatalf("expected second segment to be ccw, got %v", cmd.Direction)
	}
}

func TestSchedulerPauseFreezesAndResumePreserves(t *testing.T) {
	s := New()
	p := config.Profile{RPM: 120, DurationS: 30, Direction: config.Clockwise}
	s.Start(p)
	s.Tick(22)

	if !s.Pause() {
		t.Fatalf("expected Pause to succeed while Running")
	}
	if cmd := s.MotorCommand(); cmd != StoppedMotorCommand() {
		t.Fatalf("expected stopped motor command while Paused")
	}
	if ev := s.Tick(100); ev != EventNone {
		t.Fatalf("expected Tick to be a no-op while Paused")
	}
	if rem := s.SegmentRemainingS(); rem != 8 {
		t.Fatalf("expected 8s remaining frozen across pause, got %d", rem)
	}

	if !s.Resume() {
		t.Fatalf("expected Resume to succeed while Paused")
	}
	if cmd := s.MotorCommand(); cmd.RPM != 120 {
		t.Fatalf("expected motor command restored on resume")
	}
	if ev := s.Tick(8); ev != EventProfileFinished {
		t.Fatalf("expected the remaining 8s to complete the segment, got %v", ev)
	}
}

func TestSchedulerAbortResetsSilently(t *testing.T) {
	s := New()
	p := config.Profile{RPM: 120, DurationS: 60, Direction: config.Clockwise}
	s.Start(p)
	s.Tick(10)

	s.Abort()
	if s.Phase() != PhaseIdle {
		t.Fatalf("expected Idle after Abort")
	}
	if s.TotalElapsedS() != 0 || s.SegmentIndex() != 0 {
		t.Fatalf("expected all counters reset after Abort")
	}
}

func TestSchedulerIntrospection(t *testing.T) {
	s := New()
	p := config.Profile{RPM: 120, DurationS: 60, Direction: config.Alternate, Iterations: 3}
	s.Start(p)

	if total := s.StepTotalS(); total != 60 {
		t.Fatalf("expected StepTotalS 60, got %d", total)
	}
	s.Tick(5)
	if s.TotalElapsedS() != 5 {
		t.Fatalf("expected TotalElapsedS 5, got %d", s.TotalElapsedS())
	}
	if rem := s.SegmentRemainingS(); rem != 5 {
		t.Fatalf("expected 5s remaining in first 10s segment, got %d", rem)
	}
}
