package postgres

import (
	"context"
	"fmt"

	"flightbook/internal/core/tx"
)

// MustGetTxManager returns *postgres.TxManager from context.
// It is meant for infrastructure code that needs access to GetQuerier()/GetTx().
//
// Domain code should depend only on internal/core/tx.Manager.
func MustGetTxManager(ctx context.Context) *TxManager {
	txm := tx.MustFromContext(ctx)
	postgresTxm, ok := txm.(*TxManager)
	if !ok || postgresTxm == nil {
		panic(fmt.Sprintf("TxManager in context has unexpected type: %T", txm))
	}
	return postgresTxm
}

// querierKey allows tests to inject a Querier directly.
type querierKey struct{}

// WithQuerier overrides the querier repositories resolve from ctx.
func WithQuerier(ctx context.Context, q Querier) context.Context {
	return context.WithValue(ctx, querierKey{}, q)
}

// QuerierFrom returns the querier for the active transaction, falling back to
// the manager's pool when no transaction is open.
func QuerierFrom(ctx context.Context) Querier {
	if q, ok := ctx.Value(querierKey{}).(Querier); ok {
		return q
	}
	return MustGetTxManager(ctx).GetQuerier(ctx)
}
