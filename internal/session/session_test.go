package session_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fakeyudi/intervals/internal/session"
)

func TestDefaultTemplate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s := session.Default("My First Workout", now)

	if len(s.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(s.Items))
	}
	wantKinds := []session.Kind{session.KindWarmUp, session.KindWorkOut, session.KindCoolDown}
	wantDur := []int{600, 1800, 600}
	for i, item := range s.Items {
		if item.Kind != wantKinds[i] || item.Duration != wantDur[i] || item.Sets != 1 {
			t.Errorf("item %d = %+v", i, item)
		}
		if item.Color != session.DefaultColor(item.Kind) {
			t.Errorf("item %d color = %q", i, item.Color)
		}
	}
	if s.TotalTime != 3000 {
		t.Errorf("TotalTime = %d, want 3000", s.TotalTime)
	}
	if !s.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v", s.CreatedAt)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("default session should validate: %v", err)
	}
}

func TestTotalSecondsWithOmittedSubItem(t *testing.T) {
	s := &session.Session{Items: []session.Item{{
		Kind: session.KindWarmUp, Duration: 600, Sets: 2,
		SubItems: []session.SubItem{{Duration: 90, OmitInLastSet: true}},
	}}}
	if got := session.TotalSeconds(s); got != 1290 {
		t.Errorf("TotalSeconds = %d, want 1290", got)
	}
}

func TestTotalSecondsIgnoresZeroSets(t *testing.T) {
	s := &session.Session{Items: []session.Item{
		{Duration: 600, Sets: 0, SubItems: []session.SubItem{{Duration: 30}}},
		{Duration: 60, Sets: 1},
	}}
	if got := session.TotalSeconds(s); got != 60 {
		t.Errorf("TotalSeconds = %d, want 60", got)
	}
}

func TestNormalize(t *testing.T) {
	s := &session.Session{Items: []session.Item{{Kind: "Action", Duration: 30, Sets: 2}}}
	s.Normalize()
	if s.Items[0].Kind != session.KindWorkOut {
		t.Errorf("Kind = %q, want %q", s.Items[0].Kind, session.KindWorkOut)
	}
	if s.Items[0].SubItems == nil {
		t.Error("SubItems should be an empty slice")
	}
	if s.TotalTime != 60 {
		t.Errorf("TotalTime = %d, want 60", s.TotalTime)
	}

	empty := &session.Session{}
	empty.Normalize()
	if empty.Items == nil {
		t.Error("Items should be an empty slice")
	}
}

func TestValidate(t *testing.T) {
	s := &session.Session{
		Items: []session.Item{
			{Kind: "Stretch", Sets: 0, Duration: -1},
			{Kind: session.KindWarmUp, Sets: 1, SubItems: []session.SubItem{{Duration: -5, Speed: -1}}},
		},
	}
	err := s.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		"name is required",
		`item 1: unknown type "Stretch"`,
		"item 1: sets must be at least 1",
		"item 1: duration must not be negative",
		"item 2 sub-item 1: duration must not be negative",
		"item 2 sub-item 1: speed and incline must not be negative",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestDuplicate(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	orig := session.Default("Tempo", now)
	orig.Items[1].SubItems = []session.SubItem{{ID: "sub-1", Duration: 60}}
	used := now.Add(time.Hour)
	orig.LastUsedAt = &used

	later := now.Add(24 * time.Hour)
	dup := session.Duplicate(orig, later)

	if dup.ID == orig.ID || dup.ID == "" {
		t.Errorf("expected a fresh id, got %q", dup.ID)
	}
	if dup.Name != "Tempo (Copy)" {
		t.Errorf("Name = %q", dup.Name)
	}
	if !dup.CreatedAt.Equal(later) || dup.LastUsedAt != nil {
		t.Errorf("CreatedAt = %v LastUsedAt = %v", dup.CreatedAt, dup.LastUsedAt)
	}
	if dup.Items[1].SubItems[0].ID == "sub-1" || dup.Items[0].ID == orig.Items[0].ID {
		t.Error("expected item and sub-item ids to be regenerated")
	}

	// Mutating the copy must not touch the original.
	dup.Items[1].SubItems[0].Duration = 999
	if orig.Items[1].SubItems[0].Duration != 60 {
		t.Error("duplicate shares sub-item storage with the original")
	}
	if dup.TotalTime != orig.TotalTime {
		t.Errorf("TotalTime = %d, want %d", dup.TotalTime, orig.TotalTime)
	}
}

func TestSort(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	used := base.Add(48 * time.Hour)
	a := &session.Session{Name: "alpha", CreatedAt: base, TotalTime: 300}
	b := &session.Session{Name: "Bravo", CreatedAt: base.Add(time.Hour), TotalTime: 100, LastUsedAt: &used}
	c := &session.Session{Name: "charlie", CreatedAt: base.Add(2 * time.Hour), TotalTime: 200}

	names := func(ss []*session.Session) string {
		var out []string
		for _, s := range ss {
			out = append(out, s.Name)
		}
		return strings.Join(out, ",")
	}

	cases := []struct {
		key  session.SortKey
		asc  bool
		want string
	}{
		{session.SortLastUsed, false, "Bravo,alpha,charlie"},
		{session.SortCreated, false, "charlie,Bravo,alpha"},
		{session.SortCreated, true, "alpha,Bravo,charlie"},
		{session.SortDuration, true, "Bravo,charlie,alpha"},
		{session.SortName, true, "alpha,Bravo,charlie"},
	}
	for _, tc := range cases {
		list := []*session.Session{a, b, c}
		session.Sort(list, tc.key, tc.asc)
		if got := names(list); got != tc.want {
			t.Errorf("Sort(%s, asc=%v) = %s, want %s", tc.key, tc.asc, got, tc.want)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := session.ParseSortKey(""); err != nil || k != session.SortLastUsed {
		t.Errorf("ParseSortKey(\"\") = %q, %v", k, err)
	}
	if k, err := session.ParseSortKey("Duration"); err != nil || k != session.SortDuration {
		t.Errorf("ParseSortKey(Duration) = %q, %v", k, err)
	}
	if _, err := session.ParseSortKey("colour"); err == nil {
		t.Error("expected error for unknown key")
	}
}
