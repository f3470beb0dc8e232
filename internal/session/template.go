package session

import (
	"time"

	"github.com/google/uuid"
)

// Palettes holds the colours offered for each item kind.
var Palettes = map[Kind][]string{
	KindWarmUp: {
		"#FBBF24", "#F59E0B", "#D97706", "#FB923C", "#F97316", "#EA580C",
	},
	KindWorkOut: {
		"#74A257", "#36903D", "#007C28", "#00681A", "#00550E", "#004200",
		"#C45151", "#B52F2F", "#A00000", "#8B0000", "#760000", "#610000",
	},
	KindCoolDown: {
		"#60A5FA", "#3B82F6", "#2563EB",
	},
}

// DefaultColor returns the first palette colour for k, or "" for unknown kinds.
func DefaultColor(k Kind) string {
	if k == kindAction {
		k = KindWorkOut
	}
	if p := Palettes[k]; len(p) > 0 {
		return p[0]
	}
	return ""
}

// Default returns the starter session offered when a user creates a new one:
// 10 minutes warm-up, 30 minutes work-out, 10 minutes cool-down.
func Default(name string, now time.Time) *Session {
	item := func(k Kind, seconds int) Item {
		return Item{
			ID:       uuid.New().String(),
			Kind:     k,
			Duration: seconds,
			Sets:     1,
			Color:    DefaultColor(k),
			SubItems: []SubItem{},
		}
	}
	s := &Session{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now.UTC(),
		Items: []Item{
			item(KindWarmUp, 600),
			item(KindWorkOut, 1800),
			item(KindCoolDown, 600),
		},
	}
	s.Normalize()
	return s
}

// AssignIDs gives the session and every item and sub-item an id if it lacks one.
func AssignIDs(s *Session) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	for i := range s.Items {
		if s.Items[i].ID == "" {
			s.Items[i].ID = uuid.New().String()
		}
		for j := range s.Items[i].SubItems {
			if s.Items[i].SubItems[j].ID == "" {
				s.Items[i].SubItems[j].ID = uuid.New().String()
			}
		}
	}
}

// Duplicate returns a deep copy of s with fresh ids, a "(Copy)" name and a new
// creation time. The copy has never been used.
func Duplicate(s *Session, now time.Time) *Session {
	dup := *s
	dup.ID = ""
	dup.Name = s.Name + " (Copy)"
	dup.CreatedAt = now.UTC()
	dup.LastUsedAt = nil
	dup.Items = make([]Item, len(s.Items))
	for i, item := range s.Items {
		item.ID = ""
		subs := make([]SubItem, len(item.SubItems))
		for j, sub := range item.SubItems {
			sub.ID = ""
			subs[j] = sub
		}
		item.SubItems = subs
		dup.Items[i] = item
	}
	AssignIDs(&dup)
	dup.Normalize()
	return &dup
}
