// Package engine holds the interval timer state machine. It has no clock of
// its own: callers drive it with Tick once per second and apply user commands
// in between. An Engine is not safe for concurrent use.
package engine

import "github.com/fakeyudi/intervals/internal/plan"

// DefaultPreCueWindow is how many trailing seconds of a step emit pre-cues.
const DefaultPreCueWindow = 3

// Options configures an Engine.
type Options struct {
	// Countdown makes Start enter StatusCountdown instead of StatusRunning;
	// BeginRunning then completes the transition.
	Countdown bool
	// PreCueWindow is the number of final seconds of each step that emit
	// EventPreCue. Zero disables pre-cues; negative selects the default.
	PreCueWindow int
}

// State is a snapshot of the engine. Snapshots are comparable values.
type State struct {
	Status    Status
	Outcome   Outcome
	Index     int // len(plan) once finished
	Remaining int
	Elapsed   int
	Total     int
	Begun     bool
}

// Engine steps through a plan one second at a time.
// Every operation that does not apply to the current status is a no-op that
// returns nil and leaves the state untouched.
type Engine struct {
	steps     []plan.Step
	total     int
	opts      Options
	status    Status
	outcome   Outcome
	index     int
	remaining int
	elapsed   int
	begun     bool
}

// New creates an idle engine over steps. The slice is not copied; callers
// must not modify it afterwards.
func New(steps []plan.Step, opts Options) *Engine {
	if opts.PreCueWindow < 0 {
		opts.PreCueWindow = DefaultPreCueWindow
	}
	return &Engine{
		steps:  steps,
		total:  plan.Total(steps),
		opts:   opts,
		status: StatusIdle,
	}
}

// Steps returns the plan the engine runs.
func (e *Engine) Steps() []plan.Step { return e.steps }

// Status returns the current status.
func (e *Engine) Status() Status { return e.status }

// Outcome reports whether a finished run completed or was ended early.
func (e *Engine) Outcome() Outcome { return e.outcome }

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() State {
	return State{
		Status:    e.status,
		Outcome:   e.outcome,
		Index:     e.index,
		Remaining: e.remaining,
		Elapsed:   e.elapsed,
		Total:     e.total,
		Begun:     e.begun,
	}
}

// Current returns the step being played, or false once finished or for an
// empty plan.
func (e *Engine) Current() (plan.Step, bool) {
	if e.index < 0 || e.index >= len(e.steps) {
		return plan.Step{}, false
	}
	return e.steps[e.index], true
}

// Next returns the step after the current one, if any.
func (e *Engine) Next() (plan.Step, bool) {
	i := e.index + 1
	if i < 0 || i >= len(e.steps) {
		return plan.Step{}, false
	}
	return e.steps[i], true
}

// Start leaves StatusIdle. With a countdown configured the engine waits in
// StatusCountdown for BeginRunning; otherwise it is running immediately.
// An empty plan finishes at once as completed.
func (e *Engine) Start() []Event {
	if e.status != StatusIdle {
		return nil
	}
	if len(e.steps) == 0 {
		return e.finish(OutcomeCompleted, EventCompleted)
	}
	e.begin()
	if e.opts.Countdown {
		e.status = StatusCountdown
		return []Event{e.event(EventCountdownStarted)}
	}
	e.status = StatusRunning
	return []Event{e.event(EventStarted)}
}

// BeginRunning ends the pre-run countdown.
func (e *Engine) BeginRunning() []Event {
	if e.status != StatusCountdown {
		return nil
	}
	e.status = StatusRunning
	return []Event{e.event(EventStarted)}
}

// Tick accounts for one second of running time.
func (e *Engine) Tick() []Event {
	if e.status != StatusRunning {
		return nil
	}
	e.remaining--
	e.elapsed++
	if e.remaining > 0 {
		if e.remaining <= e.opts.PreCueWindow {
			return []Event{e.event(EventPreCue)}
		}
		return nil
	}
	return e.advance()
}

// Pause freezes a running engine.
func (e *Engine) Pause() []Event {
	if e.status != StatusRunning {
		return nil
	}
	e.status = StatusPaused
	return []Event{e.event(EventPaused)}
}

// Resume continues a paused engine.
func (e *Engine) Resume() []Event {
	if e.status != StatusPaused {
		return nil
	}
	e.status = StatusRunning
	return []Event{e.event(EventResumed)}
}

// Skip abandons the rest of the current step. The skipped seconds count as
// elapsed so elapsed time stays in step with the plan. The engine keeps its
// running or paused status unless the skip finishes the plan.
func (e *Engine) Skip() []Event {
	if e.status != StatusRunning && e.status != StatusPaused {
		return nil
	}
	e.elapsed += e.remaining
	e.remaining = 0
	return e.advance()
}

// End stops the run early. It applies to every status except StatusFinished.
func (e *Engine) End() []Event {
	if e.status == StatusFinished {
		return nil
	}
	return e.finish(OutcomeEnded, EventEnded)
}

func (e *Engine) begin() {
	if e.begun {
		return
	}
	e.begun = true
	e.index = 0
	e.remaining = e.steps[0].Duration
}

func (e *Engine) advance() []Event {
	if e.index+1 < len(e.steps) {
		e.index++
		e.remaining = e.steps[e.index].Duration
		return []Event{e.event(EventStepAdvanced)}
	}
	return e.finish(OutcomeCompleted, EventCompleted)
}

func (e *Engine) finish(outcome Outcome, typ EventType) []Event {
	e.status = StatusFinished
	e.outcome = outcome
	if outcome == OutcomeCompleted {
		e.index = len(e.steps)
		e.remaining = 0
	}
	return []Event{e.event(typ)}
}

func (e *Engine) event(typ EventType) Event {
	return Event{
		Type:      typ,
		Status:    e.status,
		StepIndex: e.index,
		Remaining: e.remaining,
		Elapsed:   e.elapsed,
	}
}
