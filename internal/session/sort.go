package session

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SortKey selects the field sessions are ordered by in listings.
type SortKey string

const (
	SortLastUsed SortKey = "last-used"
	SortCreated  SortKey = "created"
	SortDuration SortKey = "duration"
	SortName     SortKey = "name"
)

// ParseSortKey validates a user-supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortLastUsed, SortCreated, SortDuration, SortName:
		return k, nil
	case "":
		return SortLastUsed, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want last-used, created, duration or name)", s)
	}
}

// Sort orders sessions in place. Sessions never used sort as if last used at
// the Unix epoch. Ties keep their relative order.
func Sort(sessions []*Session, key SortKey, asc bool) {
	less := func(a, b *Session) bool {
		switch key {
		case SortCreated:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortDuration:
			return a.TotalTime < b.TotalTime
		case SortName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		default:
			return lastUsed(a).Before(lastUsed(b))
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if asc {
			return less(sessions[i], sessions[j])
		}
		return less(sessions[j], sessions[i])
	})
}

func lastUsed(s *Session) time.Time {
	if s.LastUsedAt == nil {
		return time.Unix(0, 0)
	}
	return *s.LastUsedAt
}
