// Package advisor produces spending-cut recommendations and product
// suggestions from a customer's spending summary.
package advisor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hyperengineering/finquest/internal/types"
)

// ErrUpstreamUnavailable wraps failures of the remote generator.
var ErrUpstreamUnavailable = errors.New("recommendation service unavailable")

// Generator produces recommendations for a spending summary.
type Generator interface {
	Generate(ctx context.Context, summary types.SpendingSummary) (*types.Recommendations, error)
	ModelName() string
}

// Compile-time interface checks
var (
	_ Generator = (*Fallback)(nil)
	_ Generator = Static{}
)

// Static always returns the built-in recommendations.
type Static struct{}

// Generate returns the built-in recommendations.
func (Static) Generate(context.Context, types.SpendingSummary) (*types.Recommendations, error) {
	return Default(), nil
}

// ModelName identifies the static generator.
func (Static) ModelName() string { return "static" }

// Fallback serves the built-in recommendations whenever the primary
// generator fails, so callers never see an upstream error.
type Fallback struct {
	primary Generator
}

// WithFallback wraps primary. A nil primary always falls back.
func WithFallback(primary Generator) *Fallback {
	if primary == nil {
		primary = Static{}
	}
	return &Fallback{primary: primary}
}

// Generate calls the primary generator and substitutes Default on error.
func (f *Fallback) Generate(ctx context.Context, summary types.SpendingSummary) (*types.Recommendations, error) {
	recs, err := f.primary.Generate(ctx, summary)
	if err != nil {
		slog.Warn("recommendation generator failed, serving defaults",
			"component", "advisor",
			"model", f.primary.ModelName(),
			"error", err,
		)
		return Default(), nil
	}
	return recs, nil
}

// ModelName reports the primary generator's model.
func (f *Fallback) ModelName() string {
	return f.primary.ModelName()
}

// Default returns the built-in recommendations.
func Default() *types.Recommendations {
	return &types.Recommendations{
		Recommendations: []types.Recommendation{
			{
				Title:       "Cut coffee",
				Description: "Stop buying coffee for 10 days",
				Savings:     45,
				Period:      "10 days",
				Category:    "Food & Dining",
				Reason:      "You spend $45/month on coffee. Making coffee at home could save this amount.",
			},
			{
				Title:       "Remove Netflix subscription",
				Description: "Cancel Netflix to save $120/year",
				Savings:     120,
				Period:      "year",
				Category:    "Entertainment",
				Reason:      "You can use free alternatives or share accounts to save money.",
			},
		},
		FinancialProducts: []types.FinancialProduct{
			{
				Title:       "Chase Sapphire Preferred",
				Category:    "Credit Card",
				Benefit:     "3x points on dining",
				Description: "Perfect for your high dining expenses",
			},
		},
	}
}
