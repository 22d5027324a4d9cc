// Package banking supplies the current customer's transactions, assigns
// each one a spending category and aggregates them for the dashboard and
// the recommendation generator.
package banking

import (
	"context"
	"errors"
	"time"

	"github.com/hyperengineering/finquest/internal/types"
)

// ErrUnknownCustomer is returned when no customer identity was supplied.
var ErrUnknownCustomer = errors.New("unknown customer")

// Fetcher retrieves a customer's transactions from a banking source.
type Fetcher interface {
	FetchTransactions(ctx context.Context, customerID string) ([]types.Transaction, error)
}

// Compile-time interface check
var _ Fetcher = DemoFetcher{}

// DemoFetcher serves a fixed sandbox data set for every customer.
type DemoFetcher struct{}

// FetchTransactions returns a fresh copy of the sandbox transactions.
func (DemoFetcher) FetchTransactions(ctx context.Context, customerID string) ([]types.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if customerID == "" {
		return nil, ErrUnknownCustomer
	}
	return DemoTransactions(), nil
}

// DemoTransactions returns the sandbox data set, uncategorised.
func DemoTransactions() []types.Transaction {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	return []types.Transaction{
		{ID: "1", Description: "Coffee Shop", MerchantName: "Starbucks", Amount: -4.50, Type: types.TransactionDebit, Date: at("2024-01-15T10:30:00Z")},
		{ID: "2", Description: "Salary", Amount: 1500.00, Type: types.TransactionCredit, Date: at("2024-01-01T09:00:00Z")},
		{ID: "3", Description: "Grocery Store", MerchantName: "Whole Foods", Amount: -75.00, Type: types.TransactionDebit, BankCategory: []string{"Food and Drink", "Groceries"}, Date: at("2024-01-14T15:20:00Z")},
		{ID: "4", Description: "Netflix Subscription", Amount: -15.99, Type: types.TransactionDebit, Date: at("2024-01-01T00:00:00Z")},
		{ID: "5", Description: "Movie Theater", Amount: -12.00, Type: types.TransactionDebit, Date: at("2024-01-13T19:30:00Z")},
		{ID: "6", Description: "Uber Ride", Amount: -8.50, Type: types.TransactionDebit, Date: at("2024-01-12T18:45:00Z")},
		{ID: "7", Description: "Amazon Purchase", Amount: -45.00, Type: types.TransactionDebit, Date: at("2024-01-11T14:20:00Z")},
		{ID: "8", Description: "Gas Station", Amount: -35.00, Type: types.TransactionDebit, Date: at("2024-01-10T16:30:00Z")},
	}
}
