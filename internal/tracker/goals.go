package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hyperengineering/finquest/internal/events"
	"github.com/hyperengineering/finquest/internal/store"
	"github.com/hyperengineering/finquest/internal/trajectory"
	"github.com/hyperengineering/finquest/internal/types"
)

// defaultStreakDuration applies to proposed streaks that arrive without a
// duration when a goal synthesises them.
const defaultStreakDuration = 30

// CreateGoal creates a goal and links each selected streak to it. A
// selection resolves to an existing streak by id, then to an active streak
// with the same title and category, and otherwise becomes a new active
// streak with no completions. A streak previously linked elsewhere moves to
// the new goal, and its former goal is recomputed.
func (t *Tracker) CreateGoal(ctx context.Context, req types.CreateGoalRequest) (*types.Goal, error) {
	targetDate, err := types.ParseDate(req.GoalData.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("%w: target_date: %v", ErrInvalidGoal, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var created types.Goal
	err = t.mutate(ctx, func(next *state, cs *store.Changeset) error {
		now := t.stamp()
		day := next.clock.Now()
		data := req.GoalData

		created = types.Goal{
			ID:            t.newID(),
			Title:         data.Title,
			Description:   data.Description,
			Category:      data.Category,
			Priority:      data.Priority,
			TargetAmount:  data.TargetAmount,
			TargetDate:    targetDate,
			Status:        types.GoalActive,
			StartDay:      day,
			CreatedAt:     now,
			UpdatedAt:     now,
			LinkedStreaks: slices.Clone(req.SelectedStreaks),
		}
		if created.LinkedStreaks == nil {
			created.LinkedStreaks = []types.StreakRef{}
		}

		// Goals that lose a streak to this one need a fresh recompute.
		orphaned := make(map[string]struct{})

		for _, ref := range req.SelectedStreaks {
			s, found := t.resolveStreak(next, ref)
			if !found {
				s = types.Streak{
					ID:          t.newID(),
					Title:       ref.Title,
					Description: ref.Description,
					Category:    ref.Category,
					Savings:     ref.Savings,
					Period:      ref.Period,
					Duration:    ref.Duration,
					Status:      types.StreakActive,
					StartDay:    day,
					CreatedAt:   now,
				}
				if s.Duration <= 0 {
					s.Duration = defaultStreakDuration
				}
			}
			if s.LinkedGoalID != "" && s.LinkedGoalID != created.ID {
				orphaned[s.LinkedGoalID] = struct{}{}
			}
			s.LinkedGoalID = created.ID
			s.LinkedGoalTitle = created.Title

			if found {
				next.putStreak(s)
			} else {
				next.addStreak(s)
			}
			cs.Streaks = append(cs.Streaks, s)
		}

		created = t.engine.Recompute(created, next.linkedStreaks(created.ID), t.now())
		next.addGoal(created)
		cs.Goals = append(cs.Goals, created)

		for _, g := range next.goals {
			if _, ok := orphaned[g.ID]; !ok {
				continue
			}
			updated := t.recomputeGoal(next, g)
			next.putGoal(updated)
			cs.Goals = append(cs.Goals, updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("goal created",
		"component", "tracker",
		"goal_id", created.ID,
		"linked_streaks", len(created.LinkedStreaks),
		"current_amount", created.CurrentAmount,
	)
	t.publish(ctx, events.Event{Type: events.GoalCreated, Day: created.StartDay, GoalID: created.ID, Data: created})
	return &created, nil
}

// resolveStreak finds the existing streak a selection refers to.
func (t *Tracker) resolveStreak(st *state, ref types.StreakRef) (types.Streak, bool) {
	if ref.ID != "" {
		if s, ok := st.streak(ref.ID); ok {
			return s, true
		}
	}
	return st.activeDuplicate(ref.Title, ref.Category)
}

// GetGoal returns a goal by id.
func (t *Tracker) GetGoal(id string) (*types.Goal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.state.goal(id)
	if !ok {
		return nil, ErrGoalNotFound
	}
	return &g, nil
}

// ListGoals returns every goal in creation order.
func (t *Tracker) ListGoals() []types.Goal {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.Goal, len(t.state.goals))
	copy(out, t.state.goals)
	return out
}

// Trajectory projects the ideal and observed savings series for a goal.
func (t *Tracker) Trajectory(ctx context.Context, goalID string) (*types.Goal, types.Trajectory, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, ok := t.state.goal(goalID)
	if !ok {
		return nil, types.Trajectory{}, ErrGoalNotFound
	}

	ledger, err := t.store.GoalLedger(ctx, goalID)
	if err != nil {
		return nil, types.Trajectory{}, fmt.Errorf("read ledger: %w", err)
	}

	return &g, trajectory.Project(g, ledger, t.state.clock.Now()), nil
}

// ResetAll clears every goal and streak, and the ledger that describes
// them, in one transaction. The day counter is left as is.
func (t *Tracker) ResetAll(ctx context.Context) (goals, streaks int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	err = t.mutate(ctx, func(next *state, cs *store.Changeset) error {
		*next = *newState(&store.State{CurrentDay: next.clock.Now()})
		cs.Reset = true
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	slog.Warn("tracker state reset", "component", "tracker")
	t.publish(ctx, events.Event{Type: events.StateReset, Day: t.state.clock.Now()})
	return len(t.state.goals), len(t.state.streaks), nil
}
