package tracker

import (
	"context"
	"log/slog"

	"github.com/hyperengineering/finquest/internal/events"
	"github.com/hyperengineering/finquest/internal/store"
	"github.com/hyperengineering/finquest/internal/types"
)

// StartStreak creates an active streak with one completion recorded.
// It returns a *DuplicateError if an active streak already has the same
// title and category; nothing is written in that case.
func (t *Tracker) StartStreak(ctx context.Context, req types.StartStreakRequest) (*types.Streak, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var created types.Streak
	err := t.mutate(ctx, func(next *state, cs *store.Changeset) error {
		data := req.StreakData
		if existing, dup := next.activeDuplicate(data.Title, data.Category); dup {
			return &DuplicateError{Existing: existing}
		}

		created = types.Streak{
			ID:            t.newID(),
			Title:         data.Title,
			Description:   data.Description,
			Category:      data.Category,
			Savings:       data.Savings,
			Period:        data.Period,
			Duration:      data.Duration,
			CurrentStreak: 1,
			MaxStreak:     1,
			Status:        types.StreakActive,
			StartDay:      next.clock.Now(),
			Strategy:      req.Strategy,
			CreatedAt:     t.stamp(),
		}
		next.addStreak(created)
		cs.Streaks = append(cs.Streaks, created)

		t.recomputeAll(next, cs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("streak started",
		"component", "tracker",
		"streak_id", created.ID,
		"category", created.Category,
		"day", created.StartDay,
	)
	t.publish(ctx, events.Event{Type: events.StreakStarted, Day: created.StartDay, StreakID: created.ID, Data: created})
	return &created, nil
}

// CompleteStreak records one more completion on an active streak and
// recomputes every goal. A missing streak yields ErrStreakNotFound; an
// inactive one is returned unchanged without writing anything.
func (t *Tracker) CompleteStreak(ctx context.Context, id string) (*types.Streak, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.state.streak(id)
	if !ok {
		return nil, ErrStreakNotFound
	}
	if !current.IsActive() {
		return &current, nil
	}

	var updated types.Streak
	err := t.mutate(ctx, func(next *state, cs *store.Changeset) error {
		day := next.clock.Now()
		updated = current
		updated.CurrentStreak++
		updated.MaxStreak = max(updated.MaxStreak, updated.CurrentStreak)
		updated.LastCompletedDate = &day
		next.putStreak(updated)
		cs.Streaks = append(cs.Streaks, updated)

		t.recomputeAll(next, cs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("streak completed",
		"component", "tracker",
		"streak_id", id,
		"current_streak", updated.CurrentStreak,
		"day", *updated.LastCompletedDate,
	)
	t.publish(ctx, events.Event{Type: events.StreakCompleted, Day: *updated.LastCompletedDate, StreakID: id, GoalID: updated.LinkedGoalID})
	return &updated, nil
}

// SkipStreak acknowledges a day without a completion. Streak state never
// changes; skipping does not penalise progress.
func (t *Tracker) SkipStreak(ctx context.Context, id string) (*types.Streak, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.state.streak(id)
	if !ok {
		return nil, ErrStreakNotFound
	}
	if current.IsActive() {
		t.publish(ctx, events.Event{Type: events.StreakSkipped, Day: t.state.clock.Now(), StreakID: id})
	}
	return &current, nil
}

// EndStreak marks a streak completed and stamps its end day. Ended streaks
// stop contributing to their goal, so linked goals are recomputed and the
// ledger is snapshotted. Ending an already completed streak is a no-op.
func (t *Tracker) EndStreak(ctx context.Context, id string) (*types.Streak, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current, ok := t.state.streak(id)
	if !ok {
		return nil, ErrStreakNotFound
	}
	if !current.IsActive() {
		return &current, nil
	}

	var updated types.Streak
	err := t.mutate(ctx, func(next *state, cs *store.Changeset) error {
		day := next.clock.Now()
		updated = current
		updated.Status = types.StreakCompleted
		updated.EndDay = &day
		next.putStreak(updated)
		cs.Streaks = append(cs.Streaks, updated)

		t.recomputeAll(next, cs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("streak ended",
		"component", "tracker",
		"streak_id", id,
		"current_streak", updated.CurrentStreak,
		"day", *updated.EndDay,
	)
	t.publish(ctx, events.Event{Type: events.StreakEnded, Day: *updated.EndDay, StreakID: id, GoalID: updated.LinkedGoalID})
	return &updated, nil
}

// GetStreak returns a streak by id.
func (t *Tracker) GetStreak(id string) (*types.Streak, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.state.streak(id)
	if !ok {
		return nil, ErrStreakNotFound
	}
	return &s, nil
}

// ListStreaks returns every streak in creation order.
func (t *Tracker) ListStreaks() []types.Streak {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]types.Streak, len(t.state.streaks))
	copy(out, t.state.streaks)
	return out
}
