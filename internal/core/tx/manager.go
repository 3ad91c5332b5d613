// Package tx provides transaction management abstractions.
// This package defines interfaces that decouple domain logic from specific
// database implementations, following the Dependency Inversion Principle.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Every transaction runs at serializable isolation; the store is the only
// arbiter of cross-session correctness.
//
// Domain services depend on this interface, not concrete implementations.
// The actual implementation lives in infrastructure/storage/postgres.
type Manager interface {
	// RunInTransaction executes fn within a single serializable transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// RunWithRetry executes fn like RunInTransaction, but restarts it when
	// the store aborts the transaction with a serialization conflict, up to
	// a bounded number of attempts. fn must therefore be safe to re-execute
	// from the top.
	RunWithRetry(ctx context.Context, fn func(ctx context.Context) error) error

	// OpenTransactions reports transactions that were started but not yet
	// committed or rolled back.
	OpenTransactions() int32
}
