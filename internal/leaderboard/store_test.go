package leaderboard

import (
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "leaderboard.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndTop(t *testing.T) {
	s := tempStore(t)

	for i := 0; i < 3; i++ {
		if err := s.Record("Alice", Win); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := s.Record("Bob", Win); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record("Bob", Loss); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record("Carol", Tie); err != nil {
		t.Fatalf("record: %v", err)
	}

	top := s.Top(10)
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	if top[0].Name != "Alice" || top[0].Wins != 3 || top[0].Streak != 3 {
		t.Fatalf("unexpected leader: %+v", top[0])
	}
	if top[1].Name != "Bob" || top[1].Wins != 1 || top[1].Losses != 1 || top[1].Streak != 0 {
		t.Fatalf("unexpected runner-up: %+v", top[1])
	}
	if top[2].Name != "Carol" || top[2].Ties != 1 {
		t.Fatalf("unexpected third entry: %+v", top[2])
	}
}

func TestStreakResetsOnNonWin(t *testing.T) {
	s := tempStore(t)
	for _, o := range []Outcome{Win, Win, Loss, Win, Tie} {
		if err := s.Record("Alice", o); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	top := s.Top(1)
	if len(top) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(top))
	}
	if top[0].Wins != 3 || top[0].Losses != 1 || top[0].Ties != 1 {
		t.Fatalf("unexpected totals: %+v", top[0])
	}
	if top[0].Streak != 0 {
		t.Fatalf("tie should reset the streak, got %d", top[0].Streak)
	}
}

func TestTopOrdersByWinsThenStreak(t *testing.T) {
	s := tempStore(t)
	// Same win count; Dana's wins are consecutive and current.
	for _, o := range []Outcome{Win, Win, Loss} {
		_ = s.Record("Erin", o)
	}
	for _, o := range []Outcome{Loss, Win, Win} {
		_ = s.Record("Dana", o)
	}
	top := s.Top(2)
	if len(top) != 2 || top[0].Name != "Dana" {
		t.Fatalf("streak should break the wins tie, got %+v", top)
	}
}

func TestTopRespectsLimit(t *testing.T) {
	s := tempStore(t)
	for _, name := range []string{"a", "b", "c", "d"} {
		_ = s.Record(name, Win)
	}
	if got := len(s.Top(2)); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
	if got := len(s.Top(0)); got != 0 {
		t.Fatalf("Top(0) should be empty, got %d entries", got)
	}
}

func TestRecordTrimsAndCapsName(t *testing.T) {
	s := tempStore(t)
	if err := s.Record("  Alice  ", Win); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Record(strings.Repeat("x", 100), Win); err != nil {
		t.Fatalf("record: %v", err)
	}
	top := s.Top(10)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	for _, e := range top {
		if e.Name != "Alice" && len([]rune(e.Name)) != maxNameLen {
			t.Fatalf("unexpected stored name %q", e.Name)
		}
	}
}

func TestRecordIgnoresEmptyName(t *testing.T) {
	s := tempStore(t)
	if err := s.Record("   ", Win); err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := len(s.Top(10)); got != 0 {
		t.Fatalf("blank names must not be stored, got %d entries", got)
	}
}

func TestRecordRejectsUnknownOutcome(t *testing.T) {
	s := tempStore(t)
	if err := s.Record("Alice", Outcome("draw")); err == nil {
		t.Fatal("unknown outcome should error")
	}
}

func TestNilStoreNoOps(t *testing.T) {
	var s *Store
	if err := s.Record("Alice", Win); err != nil {
		t.Fatalf("nil store Record should no-op, got %v", err)
	}
	if got := s.Top(10); len(got) != 0 {
		t.Fatalf("nil store Top should be empty, got %v", got)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("nil store Close should no-op, got %v", err)
	}
}

func TestOpenEmptyPathFails(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
