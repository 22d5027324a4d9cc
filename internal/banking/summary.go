package banking

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/hyperengineering/finquest/internal/progress"
	"github.com/hyperengineering/finquest/internal/types"
)

const (
	recentTransactionLimit = 4
	recentGoalLimit        = 3
)

var hundred = decimal.NewFromInt(100)

// totals splits categorised transactions into income and spending.
// Spending is reported as a positive amount per category.
func totals(txs []types.Transaction) (income, spent decimal.Decimal, byCategory map[string]decimal.Decimal) {
	byCategory = make(map[string]decimal.Decimal)
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		if amount.IsPositive() {
			income = income.Add(amount)
			continue
		}
		abs := amount.Abs()
		spent = spent.Add(abs)
		byCategory[tx.Category] = byCategory[tx.Category].Add(abs)
	}
	return income, spent, byCategory
}

// Summarize aggregates categorised transactions for the recommendation
// generator. SavingsRate is the share of income not spent, in percent.
func Summarize(txs []types.Transaction) types.SpendingSummary {
	income, spent, byCategory := totals(txs)

	categories := make(map[string]float64, len(byCategory))
	for c, v := range byCategory {
		categories[c] = v.Round(2).InexactFloat64()
	}

	rate := decimal.Zero
	if income.IsPositive() {
		rate = income.Sub(spent).Div(income).Mul(hundred)
	}

	return types.SpendingSummary{
		TotalSpending:    spent.Round(2).InexactFloat64(),
		MonthlyIncome:    income.Round(2).InexactFloat64(),
		MonthlyExpenses:  spent.Round(2).InexactFloat64(),
		SavingsRate:      rate.Round(2).InexactFloat64(),
		Categories:       categories,
		TransactionCount: len(txs),
	}
}

// Financial totals the transactions for the dashboard.
func Financial(txs []types.Transaction) types.FinancialSummary {
	income, spent, _ := totals(txs)
	return types.FinancialSummary{
		TotalSpent:       spent.Round(2).InexactFloat64(),
		TotalIncome:      income.Round(2).InexactFloat64(),
		NetAmount:        income.Sub(spent).Round(2).InexactFloat64(),
		TransactionCount: len(txs),
	}
}

// Goals totals goal targets and accrued amounts. OverallProgress is the
// accrued share of all targets, capped at 100.
func Goals(goals []types.Goal) types.GoalsSummary {
	var sum types.GoalsSummary
	target, current := decimal.Zero, decimal.Zero
	for _, g := range goals {
		sum.TotalGoals++
		switch g.Status {
		case types.GoalActive:
			sum.ActiveGoals++
		case types.GoalCompleted:
			sum.CompletedGoals++
		}
		target = target.Add(decimal.NewFromFloat(g.TargetAmount))
		current = current.Add(decimal.NewFromFloat(g.CurrentAmount))
	}
	sum.TotalTargetAmount = target.Round(2).InexactFloat64()
	sum.TotalCurrentAmount = current.Round(2).InexactFloat64()
	sum.OverallProgress = progress.Percentage(sum.TotalCurrentAmount, sum.TotalTargetAmount)
	return sum
}

// Dashboard assembles the analytics dashboard from categorised
// transactions and the current goals.
func Dashboard(txs []types.Transaction, goals []types.Goal) types.DashboardData {
	recentTx := append([]types.Transaction{}, txs...)
	slices.SortStableFunc(recentTx, func(a, b types.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	recentTx = recentTx[:min(len(recentTx), recentTransactionLimit)]

	recentGoals := append([]types.Goal{}, goals...)
	slices.SortStableFunc(recentGoals, func(a, b types.Goal) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	recentGoals = recentGoals[:min(len(recentGoals), recentGoalLimit)]

	return types.DashboardData{
		FinancialSummary: Financial(txs),
		GoalsSummary:     Goals(goals),
		RecentActivity: types.RecentActivity{
			RecentTransactions: recentTx,
			RecentGoals:        recentGoals,
		},
	}
}
