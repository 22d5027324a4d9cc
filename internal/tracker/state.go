package tracker

import (
	"slices"

	"github.com/hyperengineering/finquest/internal/clock"
	"github.com/hyperengineering/finquest/internal/store"
	"github.com/hyperengineering/finquest/internal/types"
)

// state is the in-memory working set. Mutations run against a clone and
// replace the live state only after the store commits.
type state struct {
	clock     *clock.Clock
	streaks   []types.Streak
	streakPos map[string]int
	goals     []types.Goal
	goalPos   map[string]int
	// byGoal indexes goal id to the ids of streaks linked to it, so a
	// recompute touches only the goal's own streaks.
	byGoal map[string][]string
}

func newState(loaded *store.State) *state {
	st := &state{
		clock:     clock.New(loaded.CurrentDay),
		streakPos: make(map[string]int, len(loaded.Streaks)),
		goalPos:   make(map[string]int, len(loaded.Goals)),
		byGoal:    make(map[string][]string),
	}
	for _, s := range loaded.Streaks {
		st.addStreak(s)
	}
	for _, g := range loaded.Goals {
		st.addGoal(g)
	}
	return st
}

func (st *state) clone() *state {
	c := &state{
		clock:     clock.New(st.clock.Now()),
		streaks:   slices.Clone(st.streaks),
		streakPos: make(map[string]int, len(st.streakPos)),
		goals:     slices.Clone(st.goals),
		goalPos:   make(map[string]int, len(st.goalPos)),
		byGoal:    make(map[string][]string, len(st.byGoal)),
	}
	for k, v := range st.streakPos {
		c.streakPos[k] = v
	}
	for k, v := range st.goalPos {
		c.goalPos[k] = v
	}
	for k, v := range st.byGoal {
		c.byGoal[k] = slices.Clone(v)
	}
	return c
}

func (st *state) streak(id string) (types.Streak, bool) {
	i, ok := st.streakPos[id]
	if !ok {
		return types.Streak{}, false
	}
	return st.streaks[i], true
}

func (st *state) goal(id string) (types.Goal, bool) {
	i, ok := st.goalPos[id]
	if !ok {
		return types.Goal{}, false
	}
	return st.goals[i], true
}

func (st *state) addStreak(s types.Streak) {
	st.streakPos[s.ID] = len(st.streaks)
	st.streaks = append(st.streaks, s)
	if s.LinkedGoalID != "" {
		st.byGoal[s.LinkedGoalID] = append(st.byGoal[s.LinkedGoalID], s.ID)
	}
}

// putStreak replaces an existing streak, keeping the link index in step.
func (st *state) putStreak(s types.Streak) {
	i := st.streakPos[s.ID]
	prev := st.streaks[i].LinkedGoalID
	st.streaks[i] = s
	if prev == s.LinkedGoalID {
		return
	}
	if prev != "" {
		st.byGoal[prev] = slices.DeleteFunc(st.byGoal[prev], func(id string) bool { return id == s.ID })
		if len(st.byGoal[prev]) == 0 {
			delete(st.byGoal, prev)
		}
	}
	if s.LinkedGoalID != "" {
		st.byGoal[s.LinkedGoalID] = append(st.byGoal[s.LinkedGoalID], s.ID)
	}
}

func (st *state) addGoal(g types.Goal) {
	st.goalPos[g.ID] = len(st.goals)
	st.goals = append(st.goals, g)
}

func (st *state) putGoal(g types.Goal) {
	st.goals[st.goalPos[g.ID]] = g
}

// linkedStreaks returns the streaks indexed under goalID.
func (st *state) linkedStreaks(goalID string) []types.Streak {
	ids := st.byGoal[goalID]
	out := make([]types.Streak, 0, len(ids))
	for _, id := range ids {
		if s, ok := st.streak(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// activeDuplicate finds an active streak with the same title and category.
func (st *state) activeDuplicate(title, category string) (types.Streak, bool) {
	for _, s := range st.streaks {
		if s.IsActive() && s.Title == title && s.Category == category {
			return s, true
		}
	}
	return types.Streak{}, false
}
