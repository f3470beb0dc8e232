package playback

import (
	"github.com/fakeyudi/intervals/internal/engine"
	"github.com/fakeyudi/intervals/internal/plan"
	"github.com/fakeyudi/intervals/internal/timecode"
)

// NoNextStep is the next-step description shown on the last step.
const NoNextStep = "Finished!"

// Display is everything a screen needs to render the current moment of a run.
type Display struct {
	SessionID   string         `json:"session_id"`
	SessionName string         `json:"session_name"`
	Status      engine.Status  `json:"status"`
	Outcome     engine.Outcome `json:"outcome,omitempty"`
	Countdown   int            `json:"countdown,omitempty"`

	StepIndex int        `json:"step_index"`
	StepCount int        `json:"step_count"`
	Current   *plan.Step `json:"current,omitempty"`
	Next      *plan.Step `json:"next,omitempty"`

	Description     string `json:"description"`
	Remaining       int    `json:"remaining"`
	RemainingText   string `json:"remaining_text"`
	Set             int    `json:"set"`
	TotalSets       int    `json:"total_sets"`
	ShowSets        bool   `json:"show_sets"`
	Pace            string `json:"pace,omitempty"`
	NextDescription string `json:"next_description"`
	HasNext         bool   `json:"has_next"`

	Elapsed     int     `json:"elapsed"`
	Total       int     `json:"total"`
	ElapsedText string  `json:"elapsed_text"`
	TotalText   string  `json:"total_text"`
	Progress    float64 `json:"progress"`
	Percent     int     `json:"percent"`
}

func (c *Controller) displayLocked() Display {
	st := c.eng.Snapshot()
	d := Display{
		SessionID:       c.sess.ID,
		SessionName:     c.sess.Name,
		Status:          st.Status,
		Outcome:         st.Outcome,
		StepIndex:       st.Index,
		StepCount:       len(c.eng.Steps()),
		Remaining:       st.Remaining,
		RemainingText:   timecode.Format(st.Remaining),
		NextDescription: NoNextStep,
		Elapsed:         st.Elapsed,
		Total:           st.Total,
		ElapsedText:     timecode.Format(st.Elapsed),
		TotalText:       timecode.Format(st.Total),
	}
	if st.Status == engine.StatusCountdown {
		d.Countdown = c.countdown
	}

	if cur, ok := c.eng.Current(); ok {
		d.Current = &cur
		d.Description = cur.Description
		d.Set = cur.Set
		d.TotalSets = cur.TotalSets
		d.ShowSets = cur.TotalSets > 1
		if c.sess.ShowPace && cur.Speed > 0 {
			d.Pace = timecode.Pace(cur.Speed)
		}
		if !st.Begun {
			d.Remaining = cur.Duration
			d.RemainingText = timecode.Format(cur.Duration)
		}
	}
	if next, ok := c.eng.Next(); ok {
		d.Next = &next
		d.NextDescription = next.Label()
		d.HasNext = true
	}

	if st.Total > 0 {
		d.Progress = float64(st.Elapsed) / float64(st.Total)
		d.Progress = min(max(d.Progress, 0), 1)
		d.Percent = st.Elapsed * 100 / st.Total
		d.Percent = min(max(d.Percent, 0), 100)
	}
	return d
}
