package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// StreakStatus is the lifecycle state of a streak.
type StreakStatus string

const (
	StreakActive    StreakStatus = "active"
	StreakCompleted StreakStatus = "completed"
)

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
)

// Streak is a time-boxed commitment to reduce spending in a category.
// CurrentStreak is allowed to exceed Duration; accrued savings are clamped instead.
type Streak struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	Savings           float64         `json:"savings"`
	Period            string          `json:"period,omitempty"`
	Duration          int             `json:"duration"`
	CurrentStreak     int             `json:"currentStreak"`
	MaxStreak         int             `json:"maxStreak"`
	Status            StreakStatus    `json:"status"`
	StartDay          int             `json:"startDay"`
	EndDay            *int            `json:"endDay,omitempty"`
	LastCompletedDate *int            `json:"lastCompletedDate,omitempty"`
	LinkedGoalID      string          `json:"linkedGoalId,omitempty"`
	LinkedGoalTitle   string          `json:"linkedGoalTitle,omitempty"`
	Strategy          json.RawMessage `json:"strategy,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// IsActive reports whether the streak still accrues savings.
func (s Streak) IsActive() bool {
	return s.Status == StreakActive
}

// StreakRef is the snapshot of a streak as proposed when a goal is created.
// ID may be empty when the client proposes a streak that was never started.
type StreakRef struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Savings     float64 `json:"savings"`
	Period      string  `json:"period,omitempty"`
	Duration    int     `json:"duration,omitempty"`
}

// Progress is the derived progress sub-record of a goal.
type Progress struct {
	ProgressPercentage float64 `json:"progress_percentage"`
	DaysRemaining      int     `json:"days_remaining"`
	OnTrack            bool    `json:"on_track"`
}

// Goal is a savings target whose progress is derived from linked streaks.
type Goal struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Priority      string      `json:"priority,omitempty"`
	TargetAmount  float64     `json:"target_amount"`
	CurrentAmount float64     `json:"current_amount"`
	TargetDate    time.Time   `json:"target_date"`
	Status        GoalStatus  `json:"status"`
	StartDay      int         `json:"start_day"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	LinkedStreaks []StreakRef `json:"linked_streaks"`
	Progress      Progress    `json:"progress"`
}

// IsActive reports whether the goal receives ledger snapshots.
func (g Goal) IsActive() bool {
	return g.Status == GoalActive
}

// LedgerEntry is the accrued amount of a goal on a simulated day.
type LedgerEntry struct {
	Day    int     `json:"day"`
	GoalID string  `json:"goal_id"`
	Amount float64 `json:"amount"`
}

// Point is one day-indexed sample of a trajectory series.
type Point struct {
	Day    int     `json:"day"`
	Amount float64 `json:"amount"`
}

// Trajectory holds the ideal and observed savings series of a goal.
type Trajectory struct {
	Ideal      []Point `json:"ideal"`
	Real       []Point `json:"real"`
	MaxDays    int     `json:"max_days"`
	CurrentDay int     `json:"current_day"`
}

// --- Requests ---

// NewStreak is the client-supplied description of a streak to start.
type NewStreak struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Savings     float64 `json:"savings"`
	Period      string  `json:"period"`
	Duration    int     `json:"duration"`
	Category    string  `json:"category"`
}

// StartStreakRequest is the body of POST /api/streaks/start.
type StartStreakRequest struct {
	Strategy   json.RawMessage `json:"strategy,omitempty"`
	StreakData NewStreak       `json:"streakData"`
}

// NewGoal is the client-supplied description of a goal.
type NewGoal struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Priority     string  `json:"priority,omitempty"`
	TargetAmount float64 `json:"target_amount"`
	TargetDate   string  `json:"target_date"`
}

// CreateGoalRequest is the body of POST /api/goals.
type CreateGoalRequest struct {
	GoalData        NewGoal     `json:"goalData"`
	SelectedStreaks []StreakRef `json:"selectedStreaks"`
}

// --- Responses ---

// StreakResponse wraps a single streak.
type StreakResponse struct {
	Success bool    `json:"success"`
	Streak  *Streak `json:"streak"`
}

// GoalResponse wraps a single goal.
type GoalResponse struct {
	Success bool  `json:"success"`
	Goal    *Goal `json:"goal"`
}

// DayResponse reports the simulated day counter.
type DayResponse struct {
	Success    bool `json:"success"`
	CurrentDay int  `json:"currentDay"`
}

// TrajectoryResponse is the body of GET /api/goals/{id}/trajectory.
type TrajectoryResponse struct {
	Success    bool       `json:"success"`
	Goal       *Goal      `json:"goal"`
	Trajectory Trajectory `json:"trajectory"`
}

// ResetResponse reports collection sizes after a reset.
type ResetResponse struct {
	Success      bool `json:"success"`
	GoalsCount   int  `json:"goals_count"`
	StreaksCount int  `json:"streaks_count"`
}

// DuplicateStreakResponse is the 400 body returned for an active duplicate.
type DuplicateStreakResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	AdvisorModel string `json:"advisor_model"`
	GoalCount    int    `json:"goal_count"`
	StreakCount  int    `json:"streak_count"`
	CurrentDay   int    `json:"current_day"`
}

// dateLayouts are the accepted target_date encodings, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a client-supplied date in RFC 3339 or plain calendar form.
// Dates without a zone are interpreted as UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
