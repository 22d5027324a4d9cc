package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/finquest/internal/advisor"
	"github.com/hyperengineering/finquest/internal/banking"
	"github.com/hyperengineering/finquest/internal/tracker"
	"github.com/hyperengineering/finquest/internal/types"
	"github.com/hyperengineering/finquest/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler implements the API handlers
type Handler struct {
	tracker    *tracker.Tracker
	advisor    advisor.Generator
	fetcher    banking.Fetcher
	classifier banking.Classifier
	version    string
}

// NewHandler creates a new Handler
func NewHandler(t *tracker.Tracker, gen advisor.Generator, f banking.Fetcher, c banking.Classifier, version string) *Handler {
	return &Handler{
		tracker:    t,
		advisor:    gen,
		fetcher:    f,
		classifier: c,
		version:    version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeBody decodes a JSON request body into v. It writes a 400 problem
// and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request: %s", err.Error()))
		return false
	}
	return true
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	goals, streaks, day := h.tracker.Stats()

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		AdvisorModel: h.advisor.ModelName(),
		GoalCount:    goals,
		StreakCount:  streaks,
		CurrentDay:   day,
	})
}

// --- Streaks ---

// ListStreaks handles GET /api/streaks
func (h *Handler) ListStreaks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.ListStreaks())
}

// StartStreak handles POST /api/streaks/start
func (h *Handler) StartStreak(w http.ResponseWriter, r *http.Request) {
	var req types.StartStreakRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if errs := validation.ValidateStartStreak(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	s, err := h.tracker.StartStreak(r.Context(), req)
	if err != nil {
		var dup *tracker.DuplicateError
		if errors.As(err, &dup) {
			writeJSON(w, http.StatusBadRequest, types.DuplicateStreakResponse{
				Error: "Duplicate streak",
				Message: fmt.Sprintf("You already have an active %q streak in %s. End it before starting it again.",
					dup.Existing.Title, dup.Existing.Category),
			})
			return
		}
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.StreakResponse{Success: true, Streak: s})
}

// streakAction adapts a tracker streak operation to a handler. Unknown
// streak ids are a no-op and answer with a null streak.
func (h *Handler) streakAction(action string, fn func(ctx context.Context, id string) (*types.Streak, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s, err := fn(r.Context(), id)
		if errors.Is(err, tracker.ErrStreakNotFound) {
			slog.Debug("streak action on unknown streak",
				"component", "api",
				"action", action,
				"streak_id", id,
			)
			writeJSON(w, http.StatusOK, types.StreakResponse{Success: true})
			return
		}
		if err != nil {
			MapTrackerError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, types.StreakResponse{Success: true, Streak: s})
	}
}

// CompleteStreak handles POST /api/streaks/{id}/complete
func (h *Handler) CompleteStreak(w http.ResponseWriter, r *http.Request) {
	h.streakAction("complete", h.tracker.CompleteStreak)(w, r)
}

// SkipStreak handles POST /api/streaks/{id}/skip
func (h *Handler) SkipStreak(w http.ResponseWriter, r *http.Request) {
	h.streakAction("skip", h.tracker.SkipStreak)(w, r)
}

// EndStreak handles POST /api/streaks/{id}/end
func (h *Handler) EndStreak(w http.ResponseWriter, r *http.Request) {
	h.streakAction("end", h.tracker.EndStreak)(w, r)
}

// --- Goals ---

// CreateGoal handles POST /api/goals
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req types.CreateGoalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if errs := validation.ValidateCreateGoal(req); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	g, err := h.tracker.CreateGoal(r.Context(), req)
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, types.GoalResponse{Success: true, Goal: g})
}

// ListGoals handles GET /api/goals
func (h *Handler) ListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.ListGoals())
}

// GetGoal handles GET /api/goals/{id}
func (h *Handler) GetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := h.tracker.GetGoal(chi.URLParam(r, "id"))
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.GoalResponse{Success: true, Goal: g})
}

// GoalTrajectory handles GET /api/goals/{id}/trajectory
func (h *Handler) GoalTrajectory(w http.ResponseWriter, r *http.Request) {
	g, traj, err := h.tracker.Trajectory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.TrajectoryResponse{Success: true, Goal: g, Trajectory: traj})
}

// --- Day clock ---

// GetDay handles GET /api/day
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.DayResponse{Success: true, CurrentDay: h.tracker.CurrentDay()})
}

// AdvanceDay handles POST /api/day/advance
func (h *Handler) AdvanceDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.tracker.AdvanceDay(r.Context())
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DayResponse{Success: true, CurrentDay: day})
}

// ResetDay handles POST /api/day/reset
func (h *Handler) ResetDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.tracker.ResetDay(r.Context())
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.DayResponse{Success: true, CurrentDay: day})
}

// ResetAll handles POST /api/reset
func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	goals, streaks, err := h.tracker.ResetAll(r.Context())
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.ResetResponse{Success: true, GoalsCount: goals, StreaksCount: streaks})
}

// --- Banking and insights ---

// transactions fetches and categorises the current customer's
// transactions. Fetch failures fall back to the sandbox data set; only a
// missing identity is reported to the caller.
func (h *Handler) transactions(r *http.Request) (string, []types.Transaction, error) {
	customerID, err := CustomerIDFromContext(r.Context())
	if err != nil {
		return "", nil, banking.ErrUnknownCustomer
	}

	txs, err := h.fetcher.FetchTransactions(r.Context(), customerID)
	if errors.Is(err, banking.ErrUnknownCustomer) {
		return "", nil, err
	}
	if err != nil {
		slog.Warn("transaction fetch failed, serving sandbox data",
			"component", "api",
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		txs = banking.DemoTransactions()
	}

	return customerID, banking.Categorize(h.classifier, txs), nil
}

// Transactions handles GET /api/transactions
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	customerID, txs, err := h.transactions(r)
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.TransactionsResponse{
		Success:      true,
		CustomerID:   customerID,
		Transactions: txs,
	})
}

// DashboardData handles GET /api/analytics/dashboard-data
func (h *Handler) DashboardData(w http.ResponseWriter, r *http.Request) {
	_, txs, err := h.transactions(r)
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, banking.Dashboard(txs, h.tracker.ListGoals()))
}

// Recommendations handles GET /api/ai/recommendations
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	_, txs, err := h.transactions(r)
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	recs, err := h.advisor.Generate(r.Context(), banking.Summarize(txs))
	if err != nil {
		slog.Warn("recommendations unavailable, serving defaults",
			"component", "api",
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		recs = advisor.Default()
	}

	writeJSON(w, http.StatusOK, recs)
}

// WhatIf handles POST /api/what-if/{id}. The path id names the
// recommendation when the body does not.
func (h *Handler) WhatIf(w http.ResponseWriter, r *http.Request) {
	var req types.WhatIfRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid what-if data"})
		return
	}
	if errs := validation.ValidateWhatIf(req); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid what-if data"})
		return
	}
	if req.Recommendation == "" {
		req.Recommendation = chi.URLParam(r, "id")
	}

	_, txs, err := h.transactions(r)
	if err != nil {
		MapTrackerError(w, r, err)
		return
	}

	result := banking.WhatIf(banking.Summarize(txs), req)
	slog.Debug("what-if simulated",
		"component", "api",
		"action", "what_if",
		"recommendation", result.Recommendation,
		"monthly_impact", result.Impact.MonthlyImpact,
	)
	writeJSON(w, http.StatusOK, result)
}
