// Package plan flattens a nested workout session into the ordered list of
// timed steps that playback runs through.
package plan

import "github.com/fakeyudi/intervals/internal/session"

// Step is one concrete timed unit of a plan. Steps are values; a built plan
// is never mutated.
type Step struct {
	ItemID    string `json:"itemId"`
	SubItemID string `json:"subItemId,omitempty"` // empty for the item's own segment
	Set       int    `json:"set"`                 // 1-based
	TotalSets int    `json:"totalSets"`
	// Kind is the parent item's label, used when a step has no description.
	Kind        session.Kind `json:"kind"`
	Description string       `json:"description"`
	Speed       float64      `json:"speed"`
	Incline     float64      `json:"incline"`
	Duration    int          `json:"duration"` // seconds, always > 0
	Color       string       `json:"color"`
}

// Label is the text shown for the step: its description, or the item kind
// when the description is empty.
func (s Step) Label() string {
	if s.Description != "" {
		return s.Description
	}
	return string(s.Kind)
}

// Build expands s into its steps. For each item, in order, and each set of
// that item: the item's own segment (if timed), then each timed sub-item
// unless it is omitted from the last set. Build is pure; calling it twice on
// an unchanged session yields equal plans.
func Build(s *session.Session) []Step {
	steps := []Step{}
	if s == nil {
		return steps
	}
	for _, item := range s.Items {
		for set := 1; set <= item.Sets; set++ {
			if item.Duration > 0 {
				steps = append(steps, Step{
					ItemID:      item.ID,
					Set:         set,
					TotalSets:   item.Sets,
					Kind:        item.Kind,
					Description: item.Description,
					Speed:       item.Speed,
					Incline:     item.Incline,
					Duration:    item.Duration,
					Color:       item.Color,
				})
			}
			for _, sub := range item.SubItems {
				if sub.OmitInLastSet && set == item.Sets {
					continue
				}
				if sub.Duration <= 0 {
					continue
				}
				color := sub.Color
				if color == "" {
					color = item.Color
				}
				steps = append(steps, Step{
					ItemID:      item.ID,
					SubItemID:   sub.ID,
					Set:         set,
					TotalSets:   item.Sets,
					Kind:        item.Kind,
					Description: sub.Description,
					Speed:       sub.Speed,
					Incline:     sub.Incline,
					Duration:    sub.Duration,
					Color:       color,
				})
			}
		}
	}
	return steps
}

// Total is the summed duration of steps in seconds.
func Total(steps []Step) int {
	total := 0
	for _, st := range steps {
		total += st.Duration
	}
	return total
}
