package engine

// Status is the engine's run state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusCountdown Status = "countdown"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusFinished  Status = "finished"
)

// Outcome tells how a finished run ended.
type Outcome string

const (
	OutcomeNone      Outcome = ""          // not finished yet
	OutcomeCompleted Outcome = "completed" // every step ran or was skipped
	OutcomeEnded     Outcome = "ended"     // stopped early by the user
)

// EventType defines the type of engine event.
type EventType string

const (
	EventCountdownStarted EventType = "countdown_started"
	EventStarted          EventType = "started"
	EventPreCue           EventType = "pre_cue"
	EventStepAdvanced     EventType = "step_advanced"
	EventPaused           EventType = "paused"
	EventResumed          EventType = "resumed"
	EventCompleted        EventType = "completed"
	EventEnded            EventType = "ended"
)

// Event records a transition or cue point produced by an engine operation.
type Event struct {
	Type      EventType `json:"type"`
	Status    Status    `json:"status"`
	StepIndex int       `json:"step_index"`
	Remaining int       `json:"remaining"`
	Elapsed   int       `json:"elapsed"`
}
