package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fakeyudi/intervals/internal/session"
)

// findSession resolves ref to a stored session. ref may be a full id or a
// prefix that matches exactly one session.
func findSession(store session.Store, ref string) (*session.Session, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, fmt.Errorf("empty session id: %w", session.ErrNotFound)
	}
	s, err := store.Get(ref)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, err
	}

	all, err := store.List()
	if err != nil {
		return nil, err
	}
	var matches []*session.Session
	for _, candidate := range all {
		if strings.HasPrefix(candidate.ID, ref) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%q: %w", ref, session.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, withExitCode(exitInvalidUsage, fmt.Errorf("%q matches %d sessions, use more of the id", ref, len(matches)))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
