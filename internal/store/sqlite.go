package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperengineering/finquest/internal/types"
	_ "modernc.org/sqlite"
)

// Compile-time interface check
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists tracker state in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore instance.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps every Commit strictly serialised.
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const streakColumns = `id, title, description, category, savings, period, duration,
	current_streak, max_streak, status, start_day, end_day, last_completed_day,
	linked_goal_id, linked_goal_title, strategy, created_at`

const goalColumns = `id, title, description, category, priority, target_amount,
	current_amount, target_date, status, start_day, linked_streaks,
	progress_percentage, days_remaining, on_track, created_at, updated_at`

// Load reads the clock, every streak and every goal in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) (*State, error) {
	state := &State{}

	err := s.db.QueryRowContext(ctx, `SELECT current_day FROM clock WHERE id = 1`).Scan(&state.CurrentDay)
	if err == sql.ErrNoRows {
		return nil, ErrClockMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read clock: %w", err)
	}

	streaks, err := s.loadStreaks(ctx)
	if err != nil {
		return nil, err
	}
	state.Streaks = streaks

	goals, err := s.loadGoals(ctx)
	if err != nil {
		return nil, err
	}
	state.Goals = goals

	return state, nil
}

func (s *SQLiteStore) loadStreaks(ctx context.Context) ([]types.Streak, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+streakColumns+` FROM streaks ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query streaks: %w", err)
	}
	defer rows.Close()

	var streaks []types.Streak
	for rows.Next() {
		st, err := scanStreak(rows)
		if err != nil {
			return nil, fmt.Errorf("scan streak: %w", err)
		}
		streaks = append(streaks, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streaks: %w", err)
	}
	return streaks, nil
}

func (s *SQLiteStore) loadGoals(ctx context.Context) ([]types.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []types.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

// Commit applies cs in one transaction. Nothing is written if any step fails.
func (s *SQLiteStore) Commit(ctx context.Context, cs *Changeset) error {
	if cs == nil || cs.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if cs.Reset {
		for _, table := range []string{"daily_savings", "goals", "streaks"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
	}

	if cs.CurrentDay != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE clock SET current_day = ? WHERE id = 1`, *cs.CurrentDay); err != nil {
			return fmt.Errorf("update clock: %w", err)
		}
	}

	for i := range cs.Streaks {
		if err := upsertStreak(ctx, tx, &cs.Streaks[i]); err != nil {
			return fmt.Errorf("upsert streak %s: %w", cs.Streaks[i].ID, err)
		}
	}

	for i := range cs.Goals {
		if err := upsertGoal(ctx, tx, &cs.Goals[i]); err != nil {
			return fmt.Errorf("upsert goal %s: %w", cs.Goals[i].ID, err)
		}
	}

	if len(cs.Ledger) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO daily_savings (day, goal_id, amount) VALUES (?, ?, ?)
			ON CONFLICT (day, goal_id) DO UPDATE SET amount = excluded.amount
		`)
		if err != nil {
			return fmt.Errorf("prepare ledger statement: %w", err)
		}
		defer stmt.Close()

		for _, e := range cs.Ledger {
			if _, err := stmt.ExecContext(ctx, e.Day, e.GoalID, e.Amount); err != nil {
				return fmt.Errorf("write ledger day %d goal %s: %w", e.Day, e.GoalID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GoalLedger returns the goal's accrued amount keyed by simulated day.
func (s *SQLiteStore) GoalLedger(ctx context.Context, goalID string) (map[int]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, amount FROM daily_savings WHERE goal_id = ? ORDER BY day ASC
	`, goalID)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	ledger := make(map[int]float64)
	for rows.Next() {
		var day int
		var amount float64
		if err := rows.Scan(&day, &amount); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		ledger[day] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return ledger, nil
}

func upsertStreak(ctx context.Context, tx *sql.Tx, st *types.Streak) error {
	var strategy sql.NullString
	if len(st.Strategy) > 0 {
		strategy = sql.NullString{String: string(st.Strategy), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO streaks (`+streakColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			savings = excluded.savings,
			period = excluded.period,
			duration = excluded.duration,
			current_streak = excluded.current_streak,
			max_streak = excluded.max_streak,
			status = excluded.status,
			end_day = excluded.end_day,
			last_completed_day = excluded.last_completed_day,
			linked_goal_id = excluded.linked_goal_id,
			linked_goal_title = excluded.linked_goal_title,
			strategy = excluded.strategy
	`,
		st.ID, st.Title, st.Description, st.Category, st.Savings, st.Period, st.Duration,
		st.CurrentStreak, st.MaxStreak, string(st.Status), st.StartDay,
		nullableInt(st.EndDay), nullableInt(st.LastCompletedDate),
		st.LinkedGoalID, st.LinkedGoalTitle, strategy,
		st.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func upsertGoal(ctx context.Context, tx *sql.Tx, g *types.Goal) error {
	linked := g.LinkedStreaks
	if linked == nil {
		linked = []types.StreakRef{}
	}
	linkedJSON, err := json.Marshal(linked)
	if err != nil {
		return fmt.Errorf("marshal linked streaks: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			priority = excluded.priority,
			target_amount = excluded.target_amount,
			current_amount = excluded.current_amount,
			target_date = excluded.target_date,
			status = excluded.status,
			linked_streaks = excluded.linked_streaks,
			progress_percentage = excluded.progress_percentage,
			days_remaining = excluded.days_remaining,
			on_track = excluded.on_track,
			updated_at = excluded.updated_at
	`,
		g.ID, g.Title, g.Description, g.Category, g.Priority, g.TargetAmount,
		g.CurrentAmount, g.TargetDate.UTC().Format(time.RFC3339), string(g.Status), g.StartDay,
		string(linkedJSON), g.Progress.ProgressPercentage, g.Progress.DaysRemaining,
		g.Progress.OnTrack, g.CreatedAt.UTC().Format(time.RFC3339), g.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// scanStreak scans a row into a Streak, restoring nullable day stamps.
func scanStreak(scanner interface{ Scan(...any) error }) (*types.Streak, error) {
	var st types.Streak
	var status, createdAt string
	var endDay, lastCompleted sql.NullInt64
	var strategy sql.NullString

	err := scanner.Scan(
		&st.ID, &st.Title, &st.Description, &st.Category, &st.Savings, &st.Period, &st.Duration,
		&st.CurrentStreak, &st.MaxStreak, &status, &st.StartDay, &endDay, &lastCompleted,
		&st.LinkedGoalID, &st.LinkedGoalTitle, &strategy, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	st.Status = types.StreakStatus(status)
	st.EndDay = intFromNull(endDay)
	st.LastCompletedDate = intFromNull(lastCompleted)
	if strategy.Valid && strategy.String != "" {
		st.Strategy = json.RawMessage(strategy.String)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		st.CreatedAt = t
	}
	return &st, nil
}

// scanGoal scans a row into a Goal, decoding the linked streak snapshot.
func scanGoal(scanner interface{ Scan(...any) error }) (*types.Goal, error) {
	var g types.Goal
	var status, targetDate, linkedJSON, createdAt, updatedAt string

	err := scanner.Scan(
		&g.ID, &g.Title, &g.Description, &g.Category, &g.Priority, &g.TargetAmount,
		&g.CurrentAmount, &targetDate, &status, &g.StartDay, &linkedJSON,
		&g.Progress.ProgressPercentage, &g.Progress.DaysRemaining, &g.Progress.OnTrack,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Status = types.GoalStatus(status)
	if err := json.Unmarshal([]byte(linkedJSON), &g.LinkedStreaks); err != nil {
		return nil, fmt.Errorf("%w: goal %s linked streaks: %v", ErrInvalidRecord, g.ID, err)
	}

	t, err := time.Parse(time.RFC3339, targetDate)
	if err != nil {
		return nil, fmt.Errorf("%w: goal %s target date: %v", ErrInvalidRecord, g.ID, err)
	}
	g.TargetDate = t
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		g.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		g.UpdatedAt = t
	}
	return &g, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
