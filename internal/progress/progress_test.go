package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperengineering/finquest/internal/types"
)

var today = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func activeStreak(goalID string, savings float64, duration, current int) types.Streak {
	return types.Streak{
		ID:            "s-" + goalID,
		Savings:       savings,
		Duration:      duration,
		CurrentStreak: current,
		Status:        types.StreakActive,
		LinkedGoalID:  goalID,
	}
}

func linkedGoal(target float64, daysOut int) types.Goal {
	return types.Goal{
		ID:            "g1",
		TargetAmount:  target,
		TargetDate:    today.Add(time.Duration(daysOut) * 24 * time.Hour),
		Status:        types.GoalActive,
		LinkedStreaks: []types.StreakRef{{Title: "Cut coffee", Category: "Food & Dining"}},
	}
}

func TestContribution(t *testing.T) {
	tests := []struct {
		name     string
		savings  float64
		duration int
		current  int
		want     string
	}{
		{"proportional", 120, 60, 30, "60"},
		{"single completion", 45, 10, 1, "4.5"},
		{"exactly complete", 45, 10, 10, "45"},
		{"clamped past duration", 45, 10, 25, "45"},
		{"zero completions", 45, 10, 0, "0"},
		{"zero duration", 45, 0, 5, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := activeStreak("g1", tt.savings, tt.duration, tt.current)
			assert.Equal(t, tt.want, Contribution(s).String())
		})
	}
}

func TestRecompute_NoLinkedStreaks(t *testing.T) {
	// Given: a goal created without any streaks and a stale amount
	g := linkedGoal(100, 45)
	g.LinkedStreaks = nil
	g.CurrentAmount = 999

	// When: recomputed, even with a streak that points at it
	got := NewEngine(nil).Recompute(g, []types.Streak{activeStreak("g1", 120, 60, 30)}, today)

	// Then: nothing accrues and the goal counts as on track
	assert.Equal(t, 0.0, got.CurrentAmount)
	assert.Equal(t, 0.0, got.Progress.ProgressPercentage)
	assert.Equal(t, 45, got.Progress.DaysRemaining)
	assert.True(t, got.Progress.OnTrack)
}

func TestRecompute_SumsActiveLinkedStreaksOnly(t *testing.T) {
	g := linkedGoal(100, 90)

	ended := activeStreak("g1", 45, 10, 10)
	ended.ID = "ended"
	ended.Status = types.StreakCompleted

	elsewhere := activeStreak("g2", 45, 10, 10)

	got := NewEngine(nil).Recompute(g, []types.Streak{
		activeStreak("g1", 120, 60, 30),
		ended,
		elsewhere,
	}, today)

	assert.Equal(t, 60.0, got.CurrentAmount)
	assert.Equal(t, 60.0, got.Progress.ProgressPercentage)
	assert.Equal(t, 90, got.Progress.DaysRemaining)
	assert.False(t, got.Progress.OnTrack, "60 percent with 90 days left is below the slack threshold")
}

func TestRecompute_RoundsToCents(t *testing.T) {
	g := linkedGoal(30, 10)

	got := NewEngine(nil).Recompute(g, []types.Streak{activeStreak("g1", 10, 3, 1)}, today)

	assert.Equal(t, 3.33, got.CurrentAmount)
	assert.Equal(t, 11.1, got.Progress.ProgressPercentage)
}

func TestRecompute_PercentageCapsAt100(t *testing.T) {
	g := linkedGoal(50, 10)

	got := NewEngine(nil).Recompute(g, []types.Streak{activeStreak("g1", 120, 60, 60)}, today)

	assert.Equal(t, 120.0, got.CurrentAmount)
	assert.Equal(t, 100.0, got.Progress.ProgressPercentage)
	assert.True(t, got.Progress.OnTrack)
}

func TestRecompute_ZeroTargetYieldsZeroPercent(t *testing.T) {
	g := linkedGoal(0, 10)

	got := NewEngine(nil).Recompute(g, []types.Streak{activeStreak("g1", 45, 10, 5)}, today)

	assert.Equal(t, 22.5, got.CurrentAmount)
	assert.Equal(t, 0.0, got.Progress.ProgressPercentage)
}

func TestRecompute_PastTargetDateClampsDaysRemaining(t *testing.T) {
	g := linkedGoal(100, -5)

	got := NewEngine(nil).Recompute(g, []types.Streak{activeStreak("g1", 100, 10, 10)}, today)

	assert.Equal(t, 0, got.Progress.DaysRemaining)
	assert.True(t, got.Progress.OnTrack)
}

func TestRecompute_IsIdempotent(t *testing.T) {
	engine := NewEngine(nil)
	streaks := []types.Streak{activeStreak("g1", 120, 60, 17)}

	first := engine.Recompute(linkedGoal(100, 30), streaks, today)
	second := engine.Recompute(first, streaks, today)

	require.Equal(t, first, second)
}

func TestRecompute_UsesInjectedPolicy(t *testing.T) {
	var gotPercent float64
	var gotDays int
	policy := func(percent float64, days int) bool {
		gotPercent, gotDays = percent, days
		return true
	}

	got := NewEngine(policy).Recompute(linkedGoal(100, 30), []types.Streak{activeStreak("g1", 10, 10, 1)}, today)

	assert.True(t, got.Progress.OnTrack)
	assert.Equal(t, 1.0, gotPercent)
	assert.Equal(t, 30, gotDays)
}

func TestLinearSlack(t *testing.T) {
	assert.True(t, LinearSlack(99, 30))
	assert.False(t, LinearSlack(98.99, 30))
	assert.True(t, LinearSlack(0, 3000))
	assert.True(t, LinearSlack(100, 0))
	assert.False(t, LinearSlack(99.99, 0))
}

func TestDaysRemaining_RoundsUpPartialDays(t *testing.T) {
	assert.Equal(t, 1, DaysRemaining(today.Add(time.Hour), today))
	assert.Equal(t, 0, DaysRemaining(today, today))
	assert.Equal(t, -1, DaysRemaining(today.Add(-25*time.Hour), today))
}
