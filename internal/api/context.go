package api

import (
	"context"
	"errors"
)

// customerContextKey is the context key for the resolved customer ID.
type customerContextKey struct{}

// ErrNoCustomerInContext indicates no customer was resolved for the request.
var ErrNoCustomerInContext = errors.New("no customer in context")

// WithCustomerID returns a new context with the customer ID attached.
func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, customerContextKey{}, id)
}

// CustomerIDFromContext extracts the customer ID from the context.
// Returns ErrNoCustomerInContext if not present or empty.
func CustomerIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(customerContextKey{}).(string)
	if !ok || id == "" {
		return "", ErrNoCustomerInContext
	}
	return id, nil
}
