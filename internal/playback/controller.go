// Package playback runs a session's plan against a clock. It owns the timer
// engine, turns engine events into audio cues, and publishes a Display after
// every change so screens and remote clients can follow along.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fakeyudi/intervals/internal/audio"
	"github.com/fakeyudi/intervals/internal/clock"
	"github.com/fakeyudi/intervals/internal/engine"
	"github.com/fakeyudi/intervals/internal/plan"
	"github.com/fakeyudi/intervals/internal/session"
)

// ErrEmptyPlan is returned by Start when the session has no timed steps.
var ErrEmptyPlan = errors.New("session has no timed steps")

// DefaultCountdownFrom is the first number of the pre-run countdown.
const DefaultCountdownFrom = 3

// CueSink receives cues to play. Dispatch must not block.
type CueSink interface {
	Dispatch(cue audio.Cue)
}

// Usage records that a session was run.
type Usage interface {
	MarkUsed(id string, at time.Time) error
}

// Getter loads sessions by id.
type Getter interface {
	Get(id string) (*session.Session, error)
}

// Load fetches the session to play. A missing session yields an error
// wrapping session.ErrNotFound.
func Load(store Getter, id string) (*session.Session, error) {
	s, err := store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", id, err)
	}
	return s, nil
}

// Options configures a Controller.
type Options struct {
	// Countdown plays a CountdownFrom..1 sequence before the first step.
	Countdown     bool
	CountdownFrom int
	// PreCueWindow is passed to the engine; negative selects its default.
	PreCueWindow int
	TickInterval time.Duration
}

// Deps are the controller's collaborators. Every field is optional.
type Deps struct {
	Clock clock.Clock
	Cues  CueSink
	Usage Usage
	Log   *slog.Logger
	Now   func() time.Time
}

// Update is published to subscribers after every state change.
type Update struct {
	Events  []engine.Event `json:"events,omitempty"`
	Display Display        `json:"display"`
}

type nopCues struct{}

func (nopCues) Dispatch(audio.Cue) {}

// Controller drives one run of a session. Its methods are safe for concurrent
// use; each command is applied atomically with respect to clock ticks.
type Controller struct {
	mu        sync.Mutex
	sess      *session.Session
	eng       *engine.Engine
	opts      Options
	deps      Deps
	countdown int
	gen       uint64
	cancel    clock.CancelFunc
	subs      []chan Update
	closed    bool
}

// New prepares a controller for sess. The run does not begin until Start.
func New(sess *session.Session, opts Options, deps Deps) *Controller {
	if opts.CountdownFrom <= 0 {
		opts.CountdownFrom = DefaultCountdownFrom
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if deps.Clock == nil {
		deps.Clock = clock.Ticker{}
	}
	if deps.Cues == nil {
		deps.Cues = nopCues{}
	}
	if deps.Log == nil {
		deps.Log = slog.New(slog.DiscardHandler)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	steps := plan.Build(sess)
	return &Controller{
		sess: sess,
		eng:  engine.New(steps, engine.Options{Countdown: opts.Countdown, PreCueWindow: opts.PreCueWindow}),
		opts: opts,
		deps: deps,
	}
}

// Session returns the session being played.
func (c *Controller) Session() *session.Session { return c.sess }

// Steps returns the flattened plan.
func (c *Controller) Steps() []plan.Step { return c.eng.Steps() }

// Display returns the current display state.
func (c *Controller) Display() Display {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayLocked()
}

// Status returns the engine status.
func (c *Controller) Status() engine.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eng.Status()
}

// Subscribe returns a channel receiving an Update after every change. Sends
// never block: a subscriber that falls more than buffer updates behind misses
// updates. The channel is closed by Close.
func (c *Controller) Subscribe(buffer int) <-chan Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan Update, buffer)
	if c.closed {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Unsubscribe stops updates to ch and closes it. Unknown channels are ignored.
func (c *Controller) Unsubscribe(ch <-chan Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sub := range c.subs {
		if sub == ch {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Start begins the run, through the countdown when configured. It returns
// ErrEmptyPlan for a session without timed steps and is a no-op once started.
func (c *Controller) Start() error {
	c.mu.Lock()
	started, err := c.startLocked()
	c.mu.Unlock()
	if started {
		c.markUsed()
	}
	return err
}

func (c *Controller) startLocked() (bool, error) {
	if c.closed || c.eng.Status() != engine.StatusIdle {
		return false, nil
	}
	if len(c.eng.Steps()) == 0 {
		return false, ErrEmptyPlan
	}

	evs := c.eng.Start()
	if c.eng.Status() == engine.StatusCountdown {
		c.countdown = c.opts.CountdownFrom
		c.deps.Cues.Dispatch(audio.CueCountdown)
	}
	c.applyLocked(evs)
	return true, nil
}

// markUsed runs outside the lock; the store may touch the disk.
func (c *Controller) markUsed() {
	id := c.sess.ID
	c.deps.Log.Info("run started", "session_id", id, "countdown", c.opts.Countdown)
	if c.deps.Usage != nil && id != "" {
		if err := c.deps.Usage.MarkUsed(id, c.deps.Now()); err != nil {
			c.deps.Log.Warn("could not record session use", "session_id", id, "error", err)
		}
	}
}

// Pause freezes a running session.
func (c *Controller) Pause() {
	c.command(c.eng.Pause)
}

// Resume continues a paused session.
func (c *Controller) Resume() {
	c.command(c.eng.Resume)
}

// Skip moves straight to the next step.
func (c *Controller) Skip() {
	c.command(c.eng.Skip)
}

// End stops the run early.
func (c *Controller) End() {
	c.command(c.eng.End)
}

// Toggle starts an idle run, pauses a running one and resumes a paused one.
// The status check and the command happen under one lock.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	switch c.eng.Status() {
	case engine.StatusIdle:
		started, err := c.startLocked()
		c.mu.Unlock()
		if started {
			c.markUsed()
		}
		return err
	case engine.StatusRunning:
		c.commandLocked(c.eng.Pause)
	case engine.StatusPaused:
		c.commandLocked(c.eng.Resume)
	}
	c.mu.Unlock()
	return nil
}

// Close stops the clock and closes every subscriber channel. The engine
// keeps its last state; further commands are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopClockLocked()
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

func (c *Controller) command(op func() []engine.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commandLocked(op)
}

func (c *Controller) commandLocked(op func() []engine.Event) {
	if c.closed {
		return
	}
	if evs := op(); evs != nil {
		c.applyLocked(evs)
	}
}

// onTick handles one clock period. Callbacks from a cancelled clock carry an
// old generation and are dropped.
func (c *Controller) onTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	switch c.eng.Status() {
	case engine.StatusCountdown:
		c.countdown--
		if c.countdown > 0 {
			c.deps.Cues.Dispatch(audio.CueCountdown)
			c.publishLocked(nil)
			return
		}
		c.applyLocked(c.eng.BeginRunning())
	case engine.StatusRunning:
		c.applyLocked(c.eng.Tick())
	}
}

// applyLocked plays the cues for evs, keeps the clock in step with the
// engine status and publishes the result.
func (c *Controller) applyLocked(evs []engine.Event) {
	for _, ev := range evs {
		switch ev.Type {
		case engine.EventStarted, engine.EventResumed:
			c.deps.Cues.Dispatch(audio.CueStart)
		case engine.EventPreCue:
			c.deps.Cues.Dispatch(audio.CuePreWarning)
		case engine.EventStepAdvanced:
			c.deps.Cues.Dispatch(audio.CueStepAdvance)
		case engine.EventCompleted:
			c.deps.Cues.Dispatch(audio.CueCompletion)
			c.deps.Log.Info("run completed", "session_id", c.sess.ID, "elapsed", ev.Elapsed)
		case engine.EventEnded:
			c.deps.Log.Info("run ended early", "session_id", c.sess.ID, "elapsed", ev.Elapsed)
		}
	}

	switch c.eng.Status() {
	case engine.StatusCountdown, engine.StatusRunning:
		if c.cancel == nil {
			c.startClockLocked()
		}
	default:
		c.stopClockLocked()
	}
	c.publishLocked(evs)
}

func (c *Controller) startClockLocked() {
	c.gen++
	gen := c.gen
	c.cancel = c.deps.Clock.Every(c.opts.TickInterval, func() { c.onTick(gen) })
}

func (c *Controller) stopClockLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) publishLocked(evs []engine.Event) {
	u := Update{Events: evs, Display: c.displayLocked()}
	for _, ch := range c.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
