// Package progress derives goal progress from the streaks linked to it.
// Every function here is pure: same goal, streaks and reference time in,
// same goal out.
package progress

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hyperengineering/finquest/internal/types"
)

var hundred = decimal.NewFromInt(100)

// OnTrackPolicy decides whether a goal is on pace given its completion
// percentage and the whole days left until its target date.
type OnTrackPolicy func(percent float64, daysRemaining int) bool

// LinearSlack allows one percentage point of shortfall per 30 remaining days.
func LinearSlack(percent float64, daysRemaining int) bool {
	return percent >= 100-float64(daysRemaining)/30
}

// Engine recomputes derived goal state.
type Engine struct {
	onTrack OnTrackPolicy
}

// NewEngine creates an Engine. A nil policy selects LinearSlack.
func NewEngine(policy OnTrackPolicy) *Engine {
	if policy == nil {
		policy = LinearSlack
	}
	return &Engine{onTrack: policy}
}

// Contribution returns the savings a streak has accrued so far:
// savings/duration per completion, never more than savings.
// Streaks without a positive duration accrue nothing.
func Contribution(s types.Streak) decimal.Decimal {
	if s.Duration <= 0 || s.CurrentStreak <= 0 {
		return decimal.Zero
	}
	savings := decimal.NewFromFloat(s.Savings)
	accrued := savings.
		Div(decimal.NewFromInt(int64(s.Duration))).
		Mul(decimal.NewFromInt(int64(s.CurrentStreak)))
	return decimal.Min(savings, accrued)
}

// Recompute returns g with CurrentAmount and Progress derived from the
// active streaks in candidates that link back to g. Candidates that are
// inactive or linked elsewhere are ignored. today is wall-clock time and
// only feeds days_remaining.
func (e *Engine) Recompute(g types.Goal, candidates []types.Streak, today time.Time) types.Goal {
	days := DaysRemaining(g.TargetDate, today)

	if len(g.LinkedStreaks) == 0 {
		g.CurrentAmount = 0
		g.Progress = types.Progress{
			ProgressPercentage: 0,
			DaysRemaining:      days,
			OnTrack:            true,
		}
		return g
	}

	total := decimal.Zero
	for _, s := range candidates {
		if !s.IsActive() || s.LinkedGoalID != g.ID {
			continue
		}
		total = total.Add(Contribution(s))
	}

	g.CurrentAmount = total.Round(2).InexactFloat64()
	percent := Percentage(g.CurrentAmount, g.TargetAmount)
	if days < 0 {
		days = 0
	}
	g.Progress = types.Progress{
		ProgressPercentage: percent,
		DaysRemaining:      days,
		OnTrack:            e.onTrack(percent, days),
	}
	return g
}

// Percentage returns current/target as a percentage capped at 100 and
// rounded to two places. A non-positive target yields 0.
func Percentage(current, target float64) float64 {
	if target <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(current).
		Div(decimal.NewFromFloat(target)).
		Mul(hundred)
	return decimal.Min(p, hundred).Round(2).InexactFloat64()
}

// DaysRemaining is the ceiling of the whole days between today and target.
// It is negative once the target date has passed.
func DaysRemaining(target, today time.Time) int {
	return int(math.Ceil(target.Sub(today).Hours() / 24))
}
