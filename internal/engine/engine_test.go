package engine

import (
	"testing"

	"github.com/fakeyudi/intervals/internal/plan"
	"pgregory.net/rapid"
)

func steps(durations ...int) []plan.Step {
	out := make([]plan.Step, 0, len(durations))
	for i, d := range durations {
		out = append(out, plan.Step{
			ItemID:      "item",
			Set:         i + 1,
			TotalSets:   len(durations),
			Description: "step",
			Duration:    d,
		})
	}
	return out
}

func types(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Type)
	}
	return out
}

func TestStartWithoutCountdown(t *testing.T) {
	e := New(steps(10, 20), Options{})
	evs := e.Start()
	if len(evs) != 1 || evs[0].Type != EventStarted {
		t.Fatalf("Start events = %v", types(evs))
	}
	st := e.Snapshot()
	if st.Status != StatusRunning || st.Remaining != 10 || st.Index != 0 || st.Total != 30 {
		t.Errorf("unexpected state after Start: %+v", st)
	}
}

func TestStartWithCountdown(t *testing.T) {
	e := New(steps(10), Options{Countdown: true})
	if evs := e.Start(); len(evs) != 1 || evs[0].Type != EventCountdownStarted {
		t.Fatalf("Start events = %v", types(evs))
	}
	if e.Status() != StatusCountdown {
		t.Fatalf("status = %s, want countdown", e.Status())
	}
	if evs := e.Tick(); evs != nil {
		t.Errorf("Tick during countdown emitted %v", types(evs))
	}
	if evs := e.BeginRunning(); len(evs) != 1 || evs[0].Type != EventStarted {
		t.Fatalf("BeginRunning events = %v", types(evs))
	}
	if e.Snapshot().Remaining != 10 {
		t.Errorf("remaining = %d, want 10", e.Snapshot().Remaining)
	}
}

func TestStartTwiceIsNoop(t *testing.T) {
	e := New(steps(5), Options{})
	e.Start()
	e.Tick()
	before := e.Snapshot()
	if evs := e.Start(); evs != nil {
		t.Errorf("second Start emitted %v", types(evs))
	}
	if e.Snapshot() != before {
		t.Errorf("second Start changed state")
	}
}

func TestEmptyPlanFinishesImmediately(t *testing.T) {
	e := New(nil, Options{Countdown: true})
	evs := e.Start()
	if len(evs) != 1 || evs[0].Type != EventCompleted {
		t.Fatalf("Start events = %v", types(evs))
	}
	if e.Status() != StatusFinished || e.Outcome() != OutcomeCompleted {
		t.Errorf("state = %+v", e.Snapshot())
	}
	if _, ok := e.Current(); ok {
		t.Error("Current reported a step for an empty plan")
	}
	if _, ok := e.Next(); ok {
		t.Error("Next reported a step for an empty plan")
	}
}

func TestSingleStepTicksToFinished(t *testing.T) {
	const duration = 7
	e := New(steps(duration), Options{})
	e.Start()
	for i := 1; i < duration; i++ {
		e.Tick()
		if e.Status() != StatusRunning {
			t.Fatalf("finished early after %d ticks", i)
		}
	}
	evs := e.Tick()
	if len(evs) != 1 || evs[0].Type != EventCompleted {
		t.Fatalf("final tick events = %v", types(evs))
	}
	st := e.Snapshot()
	if st.Status != StatusFinished || st.Elapsed != duration || st.Outcome != OutcomeCompleted {
		t.Errorf("final state = %+v", st)
	}
	if evs := e.Tick(); evs != nil {
		t.Errorf("Tick after finish emitted %v", types(evs))
	}
}

func TestTickAdvancesSteps(t *testing.T) {
	e := New(steps(2, 3), Options{PreCueWindow: 0})
	e.Start()
	e.Tick()
	evs := e.Tick()
	if len(evs) != 1 || evs[0].Type != EventStepAdvanced {
		t.Fatalf("events at boundary = %v", types(evs))
	}
	if evs[0].StepIndex != 1 || evs[0].Remaining != 3 || evs[0].Elapsed != 2 {
		t.Errorf("step_advanced event = %+v", evs[0])
	}
	cur, ok := e.Current()
	if !ok || cur.Set != 2 {
		t.Errorf("Current = %+v, %v", cur, ok)
	}
	if _, ok := e.Next(); ok {
		t.Error("Next should be empty on the last step")
	}
}

func TestPreCueWindow(t *testing.T) {
	e := New(steps(6), Options{PreCueWindow: 3})
	e.Start()
	var cued []int
	for e.Status() == StatusRunning {
		for _, ev := range e.Tick() {
			if ev.Type == EventPreCue {
				cued = append(cued, ev.Remaining)
			}
		}
	}
	want := []int{3, 2, 1}
	if len(cued) != len(want) {
		t.Fatalf("pre-cues at %v, want %v", cued, want)
	}
	for i := range want {
		if cued[i] != want[i] {
			t.Fatalf("pre-cues at %v, want %v", cued, want)
		}
	}
}

func TestNegativePreCueWindowUsesDefault(t *testing.T) {
	e := New(steps(10), Options{PreCueWindow: -1})
	e.Start()
	count := 0
	for e.Status() == StatusRunning {
		for _, ev := range e.Tick() {
			if ev.Type == EventPreCue {
				count++
			}
		}
	}
	if count != DefaultPreCueWindow {
		t.Errorf("got %d pre-cues, want %d", count, DefaultPreCueWindow)
	}
}

func TestPauseThenTickIsNoop(t *testing.T) {
	e := New(steps(30, 30), Options{})
	e.Start()
	e.Tick()
	e.Tick()
	if evs := e.Pause(); len(evs) != 1 || evs[0].Type != EventPaused {
		t.Fatalf("Pause events = %v", types(evs))
	}
	before := e.Snapshot()
	if evs := e.Tick(); evs != nil {
		t.Errorf("Tick while paused emitted %v", types(evs))
	}
	if after := e.Snapshot(); after != before {
		t.Errorf("Tick while paused changed state: %+v -> %+v", before, after)
	}
	if evs := e.Resume(); len(evs) != 1 || evs[0].Type != EventResumed {
		t.Fatalf("Resume events = %v", types(evs))
	}
	e.Tick()
	if got := e.Snapshot().Elapsed; got != 3 {
		t.Errorf("elapsed after resume = %d, want 3", got)
	}
}

func TestInvalidTransitionsAreNoops(t *testing.T) {
	e := New(steps(5), Options{Countdown: true})
	idle := e.Snapshot()
	for name, op := range map[string]func() []Event{
		"Tick":         e.Tick,
		"Pause":        e.Pause,
		"Resume":       e.Resume,
		"Skip":         e.Skip,
		"BeginRunning": e.BeginRunning,
	} {
		if evs := op(); evs != nil {
			t.Errorf("%s while idle emitted %v", name, types(evs))
		}
		if e.Snapshot() != idle {
			t.Errorf("%s while idle changed state", name)
		}
	}

	e.Start()
	e.BeginRunning()
	if evs := e.Resume(); evs != nil {
		t.Errorf("Resume while running emitted %v", types(evs))
	}

	e.End()
	finished := e.Snapshot()
	for name, op := range map[string]func() []Event{
		"Start":  e.Start,
		"Tick":   e.Tick,
		"Pause":  e.Pause,
		"Resume": e.Resume,
		"Skip":   e.Skip,
		"End":    e.End,
	} {
		if evs := op(); evs != nil {
			t.Errorf("%s after finish emitted %v", name, types(evs))
		}
		if e.Snapshot() != finished {
			t.Errorf("%s after finish changed state", name)
		}
	}
}

func TestEndIsDistinguishedFromCompletion(t *testing.T) {
	e := New(steps(10, 10), Options{})
	e.Start()
	e.Tick()
	evs := e.End()
	if len(evs) != 1 || evs[0].Type != EventEnded {
		t.Fatalf("End events = %v", types(evs))
	}
	st := e.Snapshot()
	if st.Status != StatusFinished || st.Outcome != OutcomeEnded {
		t.Errorf("state after End = %+v", st)
	}
	if st.Elapsed != 1 {
		t.Errorf("elapsed = %d, want 1", st.Elapsed)
	}
}

func TestEndFromIdleAndCountdown(t *testing.T) {
	e := New(steps(10), Options{})
	if evs := e.End(); len(evs) != 1 || e.Outcome() != OutcomeEnded {
		t.Errorf("End from idle: events %v outcome %q", types(evs), e.Outcome())
	}

	e = New(steps(10), Options{Countdown: true})
	e.Start()
	if evs := e.End(); len(evs) != 1 || e.Outcome() != OutcomeEnded {
		t.Errorf("End from countdown: events %v outcome %q", types(evs), e.Outcome())
	}
}

func TestSkipWhilePausedStaysPaused(t *testing.T) {
	e := New(steps(10, 20), Options{})
	e.Start()
	e.Tick()
	e.Pause()
	evs := e.Skip()
	if len(evs) != 1 || evs[0].Type != EventStepAdvanced {
		t.Fatalf("Skip events = %v", types(evs))
	}
	st := e.Snapshot()
	if st.Status != StatusPaused || st.Index != 1 || st.Remaining != 20 || st.Elapsed != 10 {
		t.Errorf("state after paused skip = %+v", st)
	}
}

// Feature: intervals, Property 8: N skips finish an N-step plan with elapsed equal to the total
func TestPropertySkipToEnd(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		durations := rapid.SliceOfN(rapid.IntRange(1, 3600), 1, 20).Draw(t, "durations")
		ticks := rapid.IntRange(0, durations[0]-1).Draw(t, "ticks")
		pause := rapid.Bool().Draw(t, "pause")

		e := New(steps(durations...), Options{})
		e.Start()
		for i := 0; i < ticks; i++ {
			e.Tick()
		}
		if pause {
			e.Pause()
		}
		for i := 0; i < len(durations); i++ {
			if e.Status() == StatusFinished {
				t.Fatalf("finished after %d skips, want %d", i, len(durations))
			}
			e.Skip()
		}
		st := e.Snapshot()
		if st.Status != StatusFinished || st.Outcome != OutcomeCompleted {
			t.Fatalf("state after %d skips = %+v", len(durations), st)
		}
		if st.Elapsed != st.Total {
			t.Fatalf("elapsed %d != total %d", st.Elapsed, st.Total)
		}
	})
}

// Feature: intervals, Property 9: ticking a plan to completion takes exactly its total duration
func TestPropertyTickToEnd(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		durations := rapid.SliceOfN(rapid.IntRange(1, 120), 1, 10).Draw(t, "durations")
		e := New(steps(durations...), Options{})
		e.Start()
		ticks := 0
		for e.Status() == StatusRunning {
			e.Tick()
			ticks++
		}
		if ticks != plan.Total(e.Steps()) {
			t.Fatalf("took %d ticks, want %d", ticks, plan.Total(e.Steps()))
		}
		if e.Snapshot().Elapsed != ticks {
			t.Fatalf("elapsed %d != ticks %d", e.Snapshot().Elapsed, ticks)
		}
	})
}
