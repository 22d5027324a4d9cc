package tracker

import (
	"errors"
	"fmt"

	"github.com/hyperengineering/finquest/internal/types"
)

var (
	ErrStreakNotFound  = errors.New("streak not found")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrDuplicateStreak = errors.New("duplicate active streak")
	ErrInvalidGoal     = errors.New("invalid goal")
)

// DuplicateError reports the active streak that blocked a start.
// errors.Is(err, ErrDuplicateStreak) holds for every DuplicateError.
type DuplicateError struct {
	Existing types.Streak
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("an active streak %q in category %q already exists (id %s)",
		e.Existing.Title, e.Existing.Category, e.Existing.ID)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateStreak
}
