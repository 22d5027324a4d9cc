package tracker

import (
	"context"
	"log/slog"

	"github.com/hyperengineering/finquest/internal/events"
	"github.com/hyperengineering/finquest/internal/store"
)

// CurrentDay returns the simulated day counter.
func (t *Tracker) CurrentDay() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.clock.Now()
}

// AdvanceDay moves the clock forward one day, recomputes every goal and
// snapshots the ledger for the new day.
func (t *Tracker) AdvanceDay(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var day int
	err := t.mutate(ctx, func(next *state, cs *store.Changeset) error {
		day = next.clock.Advance()
		cs.CurrentDay = &day
		t.recomputeAll(next, cs)
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("day advanced", "component", "tracker", "day", day)
	t.publish(ctx, events.Event{Type: events.ClockAdvanced, Day: day})
	return day, nil
}

// ResetDay rewinds the clock to day 0. Goals, streaks and the ledger are
// kept.
func (t *Tracker) ResetDay(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.mutate(ctx, func(next *state, cs *store.Changeset) error {
		next.clock.Reset()
		day := next.clock.Now()
		cs.CurrentDay = &day
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info("day reset", "component", "tracker")
	t.publish(ctx, events.Event{Type: events.ClockReset, Day: 0})
	return 0, nil
}
