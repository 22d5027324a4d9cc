package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterOptions configures cross-cutting router behaviour.
type RouterOptions struct {
	// CORSOrigin is echoed in Access-Control-Allow-Origin.
	CORSOrigin string
	// APIKey guards the customer-scoped routes; empty disables the check.
	APIKey string
	// CustomerID is the customer every authenticated request resolves to.
	CustomerID string
}

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(CORSMiddleware(opts.CORSOrigin))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/streaks", func(r chi.Router) {
			r.Get("/", h.ListStreaks)
			r.Post("/start", h.StartStreak)
			r.Post("/{id}/complete", h.CompleteStreak)
			r.Post("/{id}/skip", h.SkipStreak)
			r.Post("/{id}/end", h.EndStreak)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", h.ListGoals)
			r.Post("/", h.CreateGoal)
			r.Get("/{id}", h.GetGoal)
			r.Get("/{id}/trajectory", h.GoalTrajectory)
		})

		r.Get("/day", h.GetDay)
		r.Post("/day/advance", h.AdvanceDay)
		r.Post("/day/reset", h.ResetDay)
		r.Post("/reset", h.ResetAll)

		// Customer-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(CurrentUserMiddleware(opts.APIKey, opts.CustomerID))
			r.Get("/transactions", h.Transactions)
			r.Get("/analytics/dashboard-data", h.DashboardData)
			r.Get("/ai/recommendations", h.Recommendations)
			r.Post("/what-if/", h.WhatIf)
			r.Post("/what-if/{id}", h.WhatIf)
		})
	})

	return r
}
