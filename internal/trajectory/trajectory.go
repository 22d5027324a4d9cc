// Package trajectory builds the ideal and observed savings curves of a goal.
package trajectory

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/hyperengineering/finquest/internal/types"
)

const (
	// lookaheadDays extends the chart past the goal's nominal duration.
	lookaheadDays = 2
	// minChartDays keeps short goals plottable.
	minChartDays = 30
)

// Duration is the goal length in whole days from creation to target date,
// never less than one.
func Duration(g types.Goal) int {
	days := int(math.Ceil(g.TargetDate.Sub(g.CreatedAt).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Project returns the ideal straight-line series and the observed series
// for g. ledger maps absolute simulated days to the goal's accrued amount.
// Missing ledger days carry the previous value forward; day 0 is always 0.
func Project(g types.Goal, ledger map[int]float64, currentDay int) types.Trajectory {
	duration := Duration(g)
	maxDays := duration + lookaheadDays
	if maxDays < minChartDays {
		maxDays = minChartDays
	}

	perDay := decimal.NewFromFloat(g.TargetAmount).Div(decimal.NewFromInt(int64(duration)))
	ideal := make([]types.Point, 0, maxDays+1)
	for day := 0; day <= maxDays; day++ {
		amount := perDay.Mul(decimal.NewFromInt(int64(min(day, duration))))
		ideal = append(ideal, types.Point{Day: day, Amount: amount.Round(2).InexactFloat64()})
	}

	span := min(currentDay-g.StartDay, maxDays)
	observed := []types.Point{{Day: 0, Amount: 0}}
	last := 0.0
	for day := 1; day <= span; day++ {
		if v, ok := ledger[g.StartDay+day]; ok {
			last = v
		}
		observed = append(observed, types.Point{Day: day, Amount: last})
	}

	return types.Trajectory{
		Ideal:      ideal,
		Real:       observed,
		MaxDays:    maxDays,
		CurrentDay: currentDay,
	}
}
