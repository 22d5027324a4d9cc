package types

import "time"

// Transaction type values.
const (
	TransactionDebit  = "debit"
	TransactionCredit = "credit"
)

// Transaction is one banking record of the current customer. Negative
// amounts are spending, positive amounts are income.
type Transaction struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	MerchantName string    `json:"merchant_name,omitempty"`
	Amount       float64   `json:"amount"`
	Type         string    `json:"type"`
	Category     string    `json:"category"`
	BankCategory []string  `json:"bank_category,omitempty"`
	Date         time.Time `json:"date"`
}

// SpendingSummary aggregates a customer's transactions for the
// recommendation generator.
type SpendingSummary struct {
	TotalSpending    float64            `json:"total_spending"`
	MonthlyIncome    float64            `json:"monthly_income"`
	MonthlyExpenses  float64            `json:"monthly_expenses"`
	SavingsRate      float64            `json:"savings_rate"`
	Categories       map[string]float64 `json:"categories"`
	TransactionCount int                `json:"transaction_count"`
}

// Recommendation is a suggested spending cut. Its shape matches a streak
// proposal so clients can start it directly.
type Recommendation struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Savings     float64 `json:"savings"`
	Period      string  `json:"period"`
	Category    string  `json:"category"`
	Reason      string  `json:"reason"`
}

// FinancialProduct is a suggested card or account.
type FinancialProduct struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Benefit     string `json:"benefit"`
	Description string `json:"description"`
}

// Recommendations is the body of GET /api/ai/recommendations.
type Recommendations struct {
	Recommendations   []Recommendation   `json:"recommendations"`
	FinancialProducts []FinancialProduct `json:"financial_products"`
}

// FinancialSummary totals the transaction window shown on the dashboard.
type FinancialSummary struct {
	TotalSpent       float64 `json:"total_spent_30_days"`
	TotalIncome      float64 `json:"total_income_30_days"`
	NetAmount        float64 `json:"net_amount"`
	TransactionCount int     `json:"transaction_count"`
}

// GoalsSummary totals every goal.
type GoalsSummary struct {
	TotalGoals         int     `json:"total_goals"`
	ActiveGoals        int     `json:"active_goals"`
	CompletedGoals     int     `json:"completed_goals"`
	TotalTargetAmount  float64 `json:"total_target_amount"`
	TotalCurrentAmount float64 `json:"total_current_amount"`
	OverallProgress    float64 `json:"overall_progress"`
}

// RecentActivity lists the newest transactions and goals.
type RecentActivity struct {
	RecentTransactions []Transaction `json:"recent_transactions"`
	RecentGoals        []Goal        `json:"recent_goals"`
}

// DashboardData is the body of GET /api/analytics/dashboard-data.
type DashboardData struct {
	FinancialSummary FinancialSummary `json:"financial_summary"`
	GoalsSummary     GoalsSummary     `json:"goals_summary"`
	RecentActivity   RecentActivity   `json:"recent_activity"`
}

// TransactionsResponse is the body of GET /api/transactions.
type TransactionsResponse struct {
	Success      bool          `json:"success"`
	CustomerID   string        `json:"customer_id"`
	Transactions []Transaction `json:"transactions"`
}

// WhatIfRequest proposes saving Savings every Period. A period mentioning
// "year" is spread over twelve months; anything else is monthly.
type WhatIfRequest struct {
	Recommendation string  `json:"recommendation"`
	Savings        float64 `json:"savings"`
	Period         string  `json:"period"`
}

// WhatIfImpact is the monthly and yearly effect of a what-if scenario.
type WhatIfImpact struct {
	MonthlyImpact    float64 `json:"monthly_impact"`
	YearlyImpact     float64 `json:"yearly_impact"`
	GoalAcceleration string  `json:"goal_acceleration"`
}

// WhatIfResult compares monthly savings before and after a proposed cut.
// Savings rates are percentages of monthly income.
type WhatIfResult struct {
	Recommendation     string       `json:"recommendation"`
	CurrentSavings     float64      `json:"current_savings"`
	NewSavings         float64      `json:"new_savings"`
	AdditionalSavings  float64      `json:"additional_savings"`
	CurrentSavingsRate float64      `json:"current_savings_rate"`
	NewSavingsRate     float64      `json:"new_savings_rate"`
	Impact             WhatIfImpact `json:"impact"`
}

// ErrorResponse is the plain error body used where clients expect the
// original demo server's shape.
type ErrorResponse struct {
	Error string `json:"error"`
}
