package store

import (
	"context"

	"github.com/hyperengineering/finquest/internal/types"
)

// Store is the persistence contract for tracker state. It behaves as a
// key-value snapshot store: Load returns everything current, Commit applies
// one mutation atomically, and the ledger is read per goal on demand.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Commit(ctx context.Context, cs *Changeset) error
	GoalLedger(ctx context.Context, goalID string) (map[int]float64, error)
	Close() error
}

// State is the persisted current state, in insertion order.
type State struct {
	CurrentDay int
	Streaks    []types.Streak
	Goals      []types.Goal
}

// Changeset describes one mutation. Commit applies it in a single
// transaction: Reset first, then the clock, upserts and ledger writes.
type Changeset struct {
	// Reset clears streaks, goals and the ledger.
	Reset bool
	// CurrentDay, when set, replaces the stored day counter.
	CurrentDay *int
	Streaks    []types.Streak
	Goals      []types.Goal
	// Ledger entries overwrite any existing entry for the same (day, goal).
	Ledger []types.LedgerEntry
}

// Empty reports whether the changeset would write nothing.
func (cs *Changeset) Empty() bool {
	return !cs.Reset && cs.CurrentDay == nil &&
		len(cs.Streaks) == 0 && len(cs.Goals) == 0 && len(cs.Ledger) == 0
}
