package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperengineering/finquest/internal/types"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "finquest.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleStreak(id string) types.Streak {
	return types.Streak{
		ID:            id,
		Title:         "Cut coffee",
		Description:   "Stop buying coffee for 10 days",
		Category:      "Food & Dining",
		Savings:       45,
		Period:        "10 days",
		Duration:      10,
		CurrentStreak: 1,
		MaxStreak:     1,
		Status:        types.StreakActive,
		StartDay:      2,
		CreatedAt:     time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func sampleGoal(id string) types.Goal {
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return types.Goal{
		ID:            id,
		Title:         "Emergency Fund",
		Category:      "emergency_fund",
		TargetAmount:  100,
		CurrentAmount: 4.5,
		TargetDate:    created.Add(90 * 24 * time.Hour),
		Status:        types.GoalActive,
		StartDay:      2,
		CreatedAt:     created,
		UpdatedAt:     created,
		LinkedStreaks: []types.StreakRef{{ID: "s1", Title: "Cut coffee", Category: "Food & Dining"}},
		Progress:      types.Progress{ProgressPercentage: 4.5, DaysRemaining: 90, OnTrack: false},
	}
}

func TestNewSQLiteStore_FreshDatabaseLoadsEmptyState(t *testing.T) {
	s := newTestStore(t)

	state, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if state.CurrentDay != 0 {
		t.Errorf("CurrentDay = %d, want 0", state.CurrentDay)
	}
	if len(state.Streaks) != 0 || len(state.Goals) != 0 {
		t.Errorf("expected empty collections, got %d streaks %d goals", len(state.Streaks), len(state.Goals))
	}
}

func TestNewSQLiteStore_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "finquest.db")

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()
}

func TestCommit_RoundTripsStreaksGoalsAndClock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Given: a streak with nullable stamps and a raw strategy, plus a goal
	st := sampleStreak("s1")
	end := 5
	st.EndDay = &end
	st.LastCompletedDate = &end
	st.Status = types.StreakCompleted
	st.LinkedGoalID = "g1"
	st.LinkedGoalTitle = "Emergency Fund"
	st.Strategy = json.RawMessage(`{"name":"cold turkey"}`)
	day := 7

	// When: committed and reloaded
	err := s.Commit(ctx, &Changeset{
		CurrentDay: &day,
		Streaks:    []types.Streak{st},
		Goals:      []types.Goal{sampleGoal("g1")},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	state, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Then: everything comes back as written
	if state.CurrentDay != 7 {
		t.Errorf("CurrentDay = %d, want 7", state.CurrentDay)
	}
	if len(state.Streaks) != 1 {
		t.Fatalf("len(Streaks) = %d, want 1", len(state.Streaks))
	}
	got := state.Streaks[0]
	if got.Status != types.StreakCompleted || got.EndDay == nil || *got.EndDay != 5 {
		t.Errorf("streak status/endDay not persisted: %+v", got)
	}
	if got.LinkedGoalID != "g1" || got.LinkedGoalTitle != "Emergency Fund" {
		t.Errorf("streak link not persisted: %+v", got)
	}
	if string(got.Strategy) != `{"name":"cold turkey"}` {
		t.Errorf("Strategy = %s", got.Strategy)
	}
	if !got.CreatedAt.Equal(st.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, st.CreatedAt)
	}

	if len(state.Goals) != 1 {
		t.Fatalf("len(Goals) = %d, want 1", len(state.Goals))
	}
	g := state.Goals[0]
	want := sampleGoal("g1")
	if !g.TargetDate.Equal(want.TargetDate) {
		t.Errorf("TargetDate = %v, want %v", g.TargetDate, want.TargetDate)
	}
	if g.Progress != want.Progress {
		t.Errorf("Progress = %+v, want %+v", g.Progress, want.Progress)
	}
	if len(g.LinkedStreaks) != 1 || g.LinkedStreaks[0].Title != "Cut coffee" {
		t.Errorf("LinkedStreaks = %+v", g.LinkedStreaks)
	}
}

func TestCommit_UpsertKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Commit(ctx, &Changeset{Streaks: []types.Streak{sampleStreak("a"), sampleStreak("b")}}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// When: the first streak is updated after the second was inserted
	updated := sampleStreak("a")
	updated.CurrentStreak = 9
	updated.MaxStreak = 9
	if err := s.Commit(ctx, &Changeset{Streaks: []types.Streak{updated}}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	state, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Then: the update applied in place without reordering
	if len(state.Streaks) != 2 || state.Streaks[0].ID != "a" || state.Streaks[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", state.Streaks)
	}
	if state.Streaks[0].CurrentStreak != 9 {
		t.Errorf("CurrentStreak = %d, want 9", state.Streaks[0].CurrentStreak)
	}
}

func TestCommit_LedgerOverwritesSameDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Commit(ctx, &Changeset{Ledger: []types.LedgerEntry{
		{Day: 1, GoalID: "g1", Amount: 4.5},
		{Day: 2, GoalID: "g1", Amount: 9},
		{Day: 2, GoalID: "g2", Amount: 1},
	}})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := s.Commit(ctx, &Changeset{Ledger: []types.LedgerEntry{{Day: 2, GoalID: "g1", Amount: 13.5}}}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	ledger, err := s.GoalLedger(ctx, "g1")
	if err != nil {
		t.Fatalf("GoalLedger failed: %v", err)
	}

	if len(ledger) != 2 || ledger[1] != 4.5 || ledger[2] != 13.5 {
		t.Errorf("ledger = %v, want map[1:4.5 2:13.5]", ledger)
	}
}

func TestCommit_ResetClearsEverythingButClock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := 3

	err := s.Commit(ctx, &Changeset{
		CurrentDay: &day,
		Streaks:    []types.Streak{sampleStreak("s1")},
		Goals:      []types.Goal{sampleGoal("g1")},
		Ledger:     []types.LedgerEntry{{Day: 3, GoalID: "g1", Amount: 4.5}},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := s.Commit(ctx, &Changeset{Reset: true}); err != nil {
		t.Fatalf("reset Commit failed: %v", err)
	}

	state, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(state.Streaks) != 0 || len(state.Goals) != 0 {
		t.Errorf("expected empty collections after reset, got %d streaks %d goals", len(state.Streaks), len(state.Goals))
	}
	if state.CurrentDay != 3 {
		t.Errorf("CurrentDay = %d, want 3 (reset leaves the clock alone)", state.CurrentDay)
	}
	ledger, err := s.GoalLedger(ctx, "g1")
	if err != nil {
		t.Fatalf("GoalLedger failed: %v", err)
	}
	if len(ledger) != 0 {
		t.Errorf("ledger = %v, want empty", ledger)
	}
}

func TestCommit_FailureWritesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Given: a changeset whose goal violates the status CHECK constraint
	bad := sampleGoal("g1")
	bad.Status = "archived"
	day := 4

	// When: committed
	err := s.Commit(ctx, &Changeset{
		CurrentDay: &day,
		Streaks:    []types.Streak{sampleStreak("s1")},
		Goals:      []types.Goal{bad},
	})

	// Then: the error surfaces and no part of the changeset was applied
	if err == nil {
		t.Fatal("expected Commit to fail")
	}
	state, loadErr := s.Load(ctx)
	if loadErr != nil {
		t.Fatalf("Load failed: %v", loadErr)
	}
	if state.CurrentDay != 0 || len(state.Streaks) != 0 {
		t.Errorf("partial commit leaked: day=%d streaks=%d", state.CurrentDay, len(state.Streaks))
	}
}

func TestCommit_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Commit(ctx, &Changeset{Streaks: []types.Streak{sampleStreak("s1")}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestCommit_EmptyChangesetIsNoop(t *testing.T) {
	s := newTestStore(t)

	if err := s.Commit(context.Background(), &Changeset{}); err != nil {
		t.Errorf("Commit(empty) = %v, want nil", err)
	}
	if err := s.Commit(context.Background(), nil); err != nil {
		t.Errorf("Commit(nil) = %v, want nil", err)
	}
}
