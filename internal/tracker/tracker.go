// Package tracker owns streaks, goals, the simulated clock and the daily
// savings ledger. Every mutation runs under one lock: the change and its
// cascading recompute are built on a copy of the state, committed to the
// store in a single transaction, and only then made visible.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/finquest/internal/events"
	"github.com/hyperengineering/finquest/internal/progress"
	"github.com/hyperengineering/finquest/internal/store"
	"github.com/hyperengineering/finquest/internal/types"
)

// Options configures a Tracker. Zero values select the defaults.
type Options struct {
	// OnTrack decides goal pacing; defaults to progress.LinearSlack.
	OnTrack progress.OnTrackPolicy
	// Publisher receives committed events; defaults to events.NoopPublisher.
	Publisher events.Publisher
	// Now supplies wall-clock time; defaults to time.Now.
	Now func() time.Time
	// NewID generates record ids; defaults to ULIDs.
	NewID func() string
}

// Tracker is the streak store, goal store and progress orchestrator.
type Tracker struct {
	mu     sync.Mutex
	store  store.Store
	engine *progress.Engine
	events events.Publisher
	now    func() time.Time
	newID  func() string
	state  *state
}

// New loads persisted state from s and returns a ready Tracker.
func New(ctx context.Context, s store.Store, opts Options) (*Tracker, error) {
	loaded, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	t := &Tracker{
		store:  s,
		engine: progress.NewEngine(opts.OnTrack),
		events: opts.Publisher,
		now:    opts.Now,
		newID:  opts.NewID,
		state:  newState(loaded),
	}
	if t.events == nil {
		t.events = events.NoopPublisher{}
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newID == nil {
		t.newID = func() string { return ulid.Make().String() }
	}

	slog.Info("tracker loaded",
		"component", "tracker",
		"day", loaded.CurrentDay,
		"streaks", len(loaded.Streaks),
		"goals", len(loaded.Goals),
	)
	return t, nil
}

// mutate runs fn against a copy of the state and commits the resulting
// changeset. The live state is replaced only if the commit succeeds.
// Callers hold t.mu.
func (t *Tracker) mutate(ctx context.Context, fn func(next *state, cs *store.Changeset) error) error {
	next := t.state.clone()
	cs := &store.Changeset{}
	if err := fn(next, cs); err != nil {
		return err
	}
	if err := t.store.Commit(ctx, cs); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	t.state = next
	return nil
}

// stamp returns the wall-clock time at the precision the store keeps.
func (t *Tracker) stamp() time.Time {
	return t.now().UTC().Truncate(time.Second)
}

// recomputeGoal refreshes one goal from its indexed streaks. UpdatedAt
// moves only when the derived values change, so repeated recomputes with
// no streak mutation leave the goal untouched.
func (t *Tracker) recomputeGoal(st *state, g types.Goal) types.Goal {
	out := t.engine.Recompute(g, st.linkedStreaks(g.ID), t.now())
	if out.CurrentAmount != g.CurrentAmount || out.Progress != g.Progress {
		out.UpdatedAt = t.stamp()
	}
	return out
}

// recomputeAll refreshes every goal and records a ledger entry for each
// active goal on the current day.
func (t *Tracker) recomputeAll(st *state, cs *store.Changeset) {
	day := st.clock.Now()
	for _, g := range st.goals {
		updated := t.recomputeGoal(st, g)
		st.putGoal(updated)
		cs.Goals = append(cs.Goals, updated)
		if updated.IsActive() {
			cs.Ledger = append(cs.Ledger, types.LedgerEntry{
				Day:    day,
				GoalID: updated.ID,
				Amount: updated.CurrentAmount,
			})
		}
	}
}

// RecomputeAll recomputes every goal and snapshots the ledger for the
// current day.
func (t *Tracker) RecomputeAll(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.mutate(ctx, func(next *state, cs *store.Changeset) error {
		t.recomputeAll(next, cs)
		return nil
	})
	if err != nil {
		return err
	}
	t.publish(ctx, events.Event{Type: events.GoalsRecomputed, Day: t.state.clock.Now()})
	return nil
}

// Stats reports collection sizes and the current day.
func (t *Tracker) Stats() (goals, streaks, day int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.state.goals), len(t.state.streaks), t.state.clock.Now()
}

// publish sends ev after a commit. Delivery failures are logged and never
// undo or fail the mutation.
func (t *Tracker) publish(ctx context.Context, ev events.Event) {
	if ev.At.IsZero() {
		ev.At = t.now().UTC()
	}
	if err := t.events.Publish(ctx, ev); err != nil {
		slog.Warn("event publish failed",
			"component", "tracker",
			"event", ev.Type,
			"error", err,
		)
	}
}
