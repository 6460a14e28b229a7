package state

import (
	"errors"
	"time"

	"isochron/config"
	"isochron/drivers"
	"isochron/heater"
	"isochron/link"
	"isochron/motor"
	"isochron/protocol"
	"isochron/safety"
	"isochron/scheduler"
	"isochron/telemetry"
)

var (
	ErrUnknownProgram = errors.New("state: unknown program")
	ErrNoProgram      = errors.New("state: no program selected")
)

// execContext tracks the Controller's own notion of "where in the
// program are we" — the scheduler only ever knows about the one profile
// it's currently running.
type execContext struct {
	program   config.Program
	stepIndex int
}

func (e *execContext) lastStep() bool {
	return e.stepIndex >= len(e.program.Steps)-1
}

// Controller is the top-level orchestrator: it owns Status, the program
// selection, and wires the Scheduler, Motor Controller, per-jar Heater
// Controllers, Safety Monitor, and Link together every tick. This is
// component 7 of the design, the only component with no peers above it.
type Controller struct {
	status Status

	profiles map[string]config.Profile
	jars     map[string]config.JarConfig
	programs map[string]config.Program
	heaters  map[string]*heater.Controller

	exec *execContext

	sched   *scheduler.Scheduler
	motorC  *motor.Controller
	safety  *safety.Monitor
	lk      *link.Link
	autotun *heater.Autotune
}

// NewController wires a Controller over its dependencies. profiles, jars,
// and programs are indexed by label/name; heaters is indexed by
// HeaterConfig.Name and may be nil for jars with no heater.
func NewController(
	profiles []config.Profile,
	jars []config.JarConfig,
	programs []config.Program,
	heaters map[string]*heater.Controller,
	motorC *motor.Controller,
	mon *safety.Monitor,
	lk *link.Link,
) *Controller {
	c := &Controller{
		status:   BootStatus(),
		profiles: make(map[string]config.Profile, len(profiles)),
		jars:     make(map[string]config.JarConfig, len(jars)),
		programs: make(map[string]config.Program, len(programs)),
		heaters:  heaters,
		sched:    scheduler.New(),
		motorC:   motorC,
		safety:   mon,
		lk:       lk,
	}
	for _, p := range profiles {
		c.profiles[p.Label] = p
	}
	for _, j := range jars {
		c.jars[j.Name] = j
	}
	for _, p := range programs {
		c.programs[p.Label] = p
	}
	return c
}

// Status returns the current machine status.
func (c *Controller) Status() Status { return c.status }

// apply runs e through the transition table, installs the result, and
// records the crossing for post-mortem analysis. apply has no time source,
// so the recorded clock value is always 0.
func (c *Controller) apply(e Event) Status {
	from := c.status
	c.status = c.status.Transition(e)
	if c.status != from {
		telemetry.RecordTransition(0, uint8(from.State), uint8(e.Kind), uint8(c.status.State))
	}
	return c.status
}

// BootComplete transitions Boot -> Idle once startup diagnostics pass.
func (c *Controller) BootComplete() Status {
	return c.apply(Event{Kind: BootComplete})
}

// SelectProgram loads a program by label and moves to ProgramSelected.
func (c *Controller) SelectProgram(label string) error {
	prog, ok := c.programs[label]
	if !ok {
		return ErrUnknownProgram
	}
	c.exec = &execContext{program: prog, stepIndex: 0}
	c.apply(Event{Kind: SelectProgram})
	return nil
}

// Start begins the selected program's first step, moving to AwaitingJar
// so the operator can confirm the basket is in the right jar before the
// motor and heater are armed.
func (c *Controller) Start() error {
	if c.exec == nil {
		return ErrNoProgram
	}
	if err := c.armStep(); err != nil {
		return err
	}
	c.apply(Event{Kind: Start})
	return nil
}

// armStep loads the current step's profile into the scheduler and sets
// the matching heater's target, without yet allowing the motor/heater to
// run — that's gated on MotorAllowed/HeaterAllowed via Status.
func (c *Controller) armStep() error {
	step := c.exec.program.Steps[c.exec.stepIndex]
	profile, ok := c.profiles[step.Profile]
	if !ok {
		c.apply(Event{Kind: ErrorDetected, ErrorKind: safety.InvalidProfile})
		return ErrUnknownProgram
	}
	if err := c.sched.Start(profile); err != nil {
		c.apply(Event{Kind: ErrorDetected, ErrorKind: safety.InvalidProfile})
		return err
	}
	if h := c.heaterFor(step.Jar); h != nil {
		h.Reset()
		if profile.TemperatureC != nil {
			h.SetTargetC(int32(*profile.TemperatureC) * 100)
		} else {
			h.SetTargetC(0)
		}
	}
	return nil
}

func (c *Controller) heaterFor(jarName string) *heater.Controller {
	jar, ok := c.jars[jarName]
	if !ok || jar.HeaterName == "" {
		return nil
	}
	return c.heaters[jar.HeaterName]
}

// ConfirmJar is the UserConfirm event from AwaitingJar or AwaitingSpinOff.
func (c *Controller) ConfirmJar() {
	c.apply(Event{Kind: UserConfirm})
}

// Pause/Resume mirror the operator's pause control. Pause is valid from
// Running or SpinOff; Resume restores whichever of those it was entered
// from, so pausing mid-spin-off doesn't drop back into Running.
func (c *Controller) Pause()  { c.apply(Event{Kind: Pause}) }
func (c *Controller) Resume() { c.apply(Event{Kind: Resume}) }

// Abort returns to Idle immediately, from any state.
func (c *Controller) Abort() {
	c.sched.Abort()
	c.apply(Event{Kind: Abort})
}

// AcknowledgeError clears a recoverable fault back to Idle.
func (c *Controller) AcknowledgeError() {
	if c.apply(Event{Kind: AcknowledgeError}).State == Idle {
		c.safety.Reset()
	}
}

// StartAutotune begins a relay autotune against the given heater, sensor,
// and target — valid only from Idle.
func (c *Controller) StartAutotune(a *heater.Autotune, now time.Duration) {
	if c.status.State != Idle {
		return
	}
	c.autotun = a
	c.autotun.Start(now)
	c.apply(Event{Kind: StartAutotune})
}

// CancelAutotune aborts an in-progress autotune.
func (c *Controller) CancelAutotune() {
	if c.autotun != nil {
		c.autotun.Cancel()
	}
	c.apply(Event{Kind: CancelAutotune})
}

// Tick is the single per-scheduling-cycle entry point: it services the
// link (inbound commands, heartbeat bookkeeping), checks safety first (so
// a fault commands everything off within this cycle, never a later one),
// advances whichever subsystem the current state permits, and drives the
// motor and heater outputs.
func (c *Controller) Tick(elapsedS uint32, now time.Duration) {
	c.pollLink(elapsedS, now)

	if st := c.safety.Check(); st.Faulted {
		c.apply(Event{Kind: ErrorDetected, ErrorKind: st.Kind})
	}

	switch c.status.State {
	case Running:
		ev := c.sched.Tick(elapsedS)
		switch ev {
		case scheduler.EventStepFinished:
			c.apply(Event{Kind: StepFinished})
		case scheduler.EventProfileFinished:
			step := c.exec.program.Steps[c.exec.stepIndex]
			profile := c.profiles[step.Profile]
			c.apply(Event{Kind: ProfileFinished, SpinoffConfigured: profile.Spinoff != nil})
		}

	case StepComplete:
		// Held until NextStep is driven externally (UI dismiss prompt).

	case Autotuning:
		if c.autotun != nil && c.autotun.Update(now) {
			switch c.autotun.Phase() {
			case heater.PhaseComplete:
				c.apply(Event{Kind: AutotuneComplete})
			case heater.PhaseFailed:
				if c.autotun.Reason() != heater.AbortCancelled {
					c.apply(Event{Kind: AutotuneFailed})
				}
			}
		}
	}

	c.driveOutputs(now)
}

// NextStep advances past a completed step, landing on Running (next
// step armed) or ProgramComplete.
func (c *Controller) NextStep() {
	if c.status.State != StepComplete || c.exec == nil {
		return
	}
	last := c.exec.lastStep()
	if !last {
		c.exec.stepIndex++
		_ = c.armStep()
	}
	c.apply(Event{Kind: NextStep, LastStep: last})
}

// FinishSpinOff completes the manual spin-off handshake.
func (c *Controller) FinishSpinOff() {
	c.apply(Event{Kind: SpinOffFinished})
}

// pollLink drains inbound terminal commands, feeds the Safety Monitor's
// heartbeat bookkeeping, and lets the link's own heartbeat supervisor
// decide whether to send an unsolicited PONG or declare the link lost —
// the two heartbeat trackers run independently (link.Heartbeat owns the
// retry/PONG sequence, safety.Monitor owns the LinkLost fault threshold)
// and are kept in sync here rather than merged into one.
func (c *Controller) pollLink(elapsedS uint32, now time.Duration) {
	cmds, _ := c.lk.PollInbound(now)
	for _, cmd := range cmds {
		if cmd.Kind == protocol.InboundPing {
			c.safety.HeartbeatReceived()
		}
	}
	c.DeliverInbound(cmds)

	if c.lk.TickHeartbeat(now) {
		// AdvanceTime records at most one miss per call, so report each
		// missed window separately to reach the LinkLost threshold now.
		for i := uint8(0); i < safety.MaxMissedHeartbeats; i++ {
			c.safety.AdvanceTime(safety.HeartbeatTimeoutMS)
		}
	} else {
		c.safety.AdvanceTime(elapsedS * 1000)
	}
}

// driveOutputs pushes the motor and heater commands appropriate for the
// current status, regardless of which branch above produced it — this is
// the one place the MotorAllowed/HeaterAllowed guards are enforced.
func (c *Controller) driveOutputs(now time.Duration) {
	if c.status.MotorAllowed() {
		cmd := c.motorCommand()
		c.motorC.SetTarget(cmd.RPM, driverDirection(cmd.Direction))
	} else {
		c.motorC.SetTarget(0, c.motorC.Direction())
	}
	c.motorC.Poll(now)

	step, haveStep := c.currentStep()
	if !haveStep {
		return
	}
	if h := c.heaterFor(step.Jar); h != nil {
		h.Update(c.status.HeaterAllowed())
	}
}

func (c *Controller) motorCommand() scheduler.MotorCommand {
	if c.status.State == SpinOff && c.exec != nil {
		step := c.exec.program.Steps[c.exec.stepIndex]
		profile := c.profiles[step.Profile]
		if profile.Spinoff != nil {
			return scheduler.MotorCommand{RPM: profile.Spinoff.RPM, Direction: config.Clockwise}
		}
	}
	return c.sched.MotorCommand()
}

func (c *Controller) currentStep() (config.ProgramStep, bool) {
	if c.exec == nil || c.exec.stepIndex >= len(c.exec.program.Steps) {
		return config.ProgramStep{}, false
	}
	return c.exec.program.Steps[c.exec.stepIndex], true
}

// driverDirection maps a config.Direction onto the driver boundary's
// Direction. Segments are always resolved to Clockwise/CounterClockwise
// by the scheduler before reaching here — Alternate never appears.
func driverDirection(d config.Direction) drivers.Direction {
	if d == config.CounterClockwise {
		return drivers.CounterClockwise
	}
	return drivers.Clockwise
}

// DeliverInbound consumes terminal commands decoded by the Link layer,
// translating the two physical controls that have state-machine meaning:
// a click confirms whatever the current state is waiting on, and a long
// press always aborts. Every other encoder event (CW/CCW, parameter
// editing) belongs to UI-only sub-state outside the Controller's scope.
func (c *Controller) DeliverInbound(cmds []protocol.InboundCommand) {
	for _, cmd := range cmds {
		if cmd.Kind != protocol.InboundInput {
			continue
		}
		switch cmd.Event {
		case protocol.EncoderLongPress:
			c.Abort()
		case protocol.EncoderClick:
			switch c.status.State {
			case AwaitingJar, AwaitingSpinOff:
				c.ConfirmJar()
			case StepComplete:
				c.NextStep()
			}
		}
	}
}
