package banking

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hyperengineering/finquest/internal/types"
)

const (
	monthsPerYear = 12

	goalAccelerationText = "This could help you reach your goals 2-3 months earlier"
	noAccelerationText   = "No change to your goal timeline"
)

// yearly reports whether period describes an annual amount.
func yearly(period string) bool {
	return strings.Contains(strings.ToLower(period), "year")
}

// WhatIf projects the customer's monthly savings if req's cut were made.
// Current savings are income minus expenses from summary; the cut is
// normalised to a monthly amount before being added.
func WhatIf(summary types.SpendingSummary, req types.WhatIfRequest) types.WhatIfResult {
	savings := decimal.NewFromFloat(req.Savings)
	months := decimal.NewFromInt(monthsPerYear)

	monthly := savings
	if yearly(req.Period) {
		monthly = savings.Div(months)
	}

	income := decimal.NewFromFloat(summary.MonthlyIncome)
	current := income.Sub(decimal.NewFromFloat(summary.MonthlyExpenses))
	next := current.Add(monthly)

	rate := decimal.Zero
	if income.IsPositive() {
		rate = next.Div(income).Mul(hundred)
	}

	acceleration := noAccelerationText
	if monthly.IsPositive() {
		acceleration = goalAccelerationText
	}

	return types.WhatIfResult{
		Recommendation:     req.Recommendation,
		CurrentSavings:     current.Round(2).InexactFloat64(),
		NewSavings:         next.Round(2).InexactFloat64(),
		AdditionalSavings:  monthly.Round(2).InexactFloat64(),
		CurrentSavingsRate: summary.SavingsRate,
		NewSavingsRate:     rate.Round(1).InexactFloat64(),
		Impact: types.WhatIfImpact{
			MonthlyImpact:    monthly.Round(2).InexactFloat64(),
			YearlyImpact:     monthly.Mul(months).Round(2).InexactFloat64(),
			GoalAcceleration: acceleration,
		},
	}
}
