package session

import (
	"errors"
	"fmt"
	"time"
)

// Kind labels a top-level item. It only drives colours and labels; it has no
// effect on how a session is sequenced.
type Kind string

const (
	KindWarmUp   Kind = "Warm-up"
	KindWorkOut  Kind = "Work-out"
	KindCoolDown Kind = "Cool-down"

	// kindAction is the label older exports used for KindWorkOut.
	kindAction Kind = "Action"
)

// Kinds lists the accepted item kinds in display order.
var Kinds = []Kind{KindWarmUp, KindWorkOut, KindCoolDown}

// Session is a complete, persisted workout definition.
// JSON field names match the browser app's localStorage export.
type Session struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	ShowPace    bool       `json:"showPace" yaml:"showPace"`
	Items       []Item     `json:"items" yaml:"items"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"createdAt"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty" yaml:"lastUsedAt,omitempty"`
	// TotalTime is derived from Items and recomputed by Normalize.
	TotalTime int `json:"totalTime" yaml:"totalTime"`
}

// Item is a top-level phase of a session, repeated over Sets.
type Item struct {
	ID          string    `json:"id" yaml:"id"`
	Kind        Kind      `json:"type" yaml:"type"`
	Description string    `json:"description" yaml:"description"`
	Speed       float64   `json:"speed" yaml:"speed"`
	Incline     float64   `json:"incline" yaml:"incline"`
	Duration    int       `json:"timer" yaml:"timer"` // seconds; 0 means the item has no own segment
	Sets        int       `json:"sets" yaml:"sets"`
	Color       string    `json:"color" yaml:"color"`
	SubItems    []SubItem `json:"subItems" yaml:"subItems"`
}

// SubItem is a timed segment inside every set of its parent item.
type SubItem struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Speed       float64 `json:"speed" yaml:"speed"`
	Incline     float64 `json:"incline" yaml:"incline"`
	Duration    int     `json:"timer" yaml:"timer"`
	Color       string  `json:"color" yaml:"color"`
	// OmitInLastSet drops the sub-item from the parent's final set.
	OmitInLastSet bool `json:"omitForLastSet" yaml:"omitForLastSet"`
}

// Normalize fills absent collections with empty slices, maps legacy kind
// labels and recomputes TotalTime. It is safe to call more than once.
func (s *Session) Normalize() {
	if s.Items == nil {
		s.Items = []Item{}
	}
	for i := range s.Items {
		item := &s.Items[i]
		if item.SubItems == nil {
			item.SubItems = []SubItem{}
		}
		if item.Kind == kindAction {
			item.Kind = KindWorkOut
		}
	}
	s.TotalTime = TotalSeconds(s)
}

// Validate reports every problem that would make the session unusable.
func (s *Session) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	for i, item := range s.Items {
		prefix := fmt.Sprintf("item %d", i+1)
		if !validKind(item.Kind) {
			errs = append(errs, fmt.Errorf("%s: unknown type %q", prefix, item.Kind))
		}
		if item.Sets < 1 {
			errs = append(errs, fmt.Errorf("%s: sets must be at least 1, got %d", prefix, item.Sets))
		}
		if item.Duration < 0 {
			errs = append(errs, fmt.Errorf("%s: duration must not be negative", prefix))
		}
		if item.Speed < 0 || item.Incline < 0 {
			errs = append(errs, fmt.Errorf("%s: speed and incline must not be negative", prefix))
		}
		for j, sub := range item.SubItems {
			subPrefix := fmt.Sprintf("%s sub-item %d", prefix, j+1)
			if sub.Duration < 0 {
				errs = append(errs, fmt.Errorf("%s: duration must not be negative", subPrefix))
			}
			if sub.Speed < 0 || sub.Incline < 0 {
				errs = append(errs, fmt.Errorf("%s: speed and incline must not be negative", subPrefix))
			}
		}
	}
	return errors.Join(errs...)
}

// TotalSeconds is the playing time of s: every timed item segment once per
// set, every timed sub-item once per set except where it is omitted from the
// last set.
func TotalSeconds(s *Session) int {
	total := 0
	for _, item := range s.Items {
		if item.Sets <= 0 {
			continue
		}
		if item.Duration > 0 {
			total += item.Duration * item.Sets
		}
		for _, sub := range item.SubItems {
			if sub.Duration <= 0 {
				continue
			}
			times := item.Sets
			if sub.OmitInLastSet {
				times--
			}
			total += sub.Duration * times
		}
	}
	return total
}

func validKind(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return k == kindAction
}
