package tx

import (
	"context"
)

// managerKey is the context key for the active Manager.
type managerKey struct{}

// WithManager adds a Manager to context.
//
// Each session carries its own manager so the open-transaction accounting is
// scoped to a single caller; request middleware injects a fresh one for
// operations that run outside a session.
func WithManager(ctx context.Context, m Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the Manager from context.
func FromContext(ctx context.Context) (Manager, bool) {
	m, ok := ctx.Value(managerKey{}).(Manager)
	return m, ok
}

// MustFromContext returns the Manager from context or panics.
// Reaching storage without a manager is a wiring bug, not a runtime condition.
func MustFromContext(ctx context.Context) Manager {
	m, ok := FromContext(ctx)
	if !ok || m == nil {
		panic("tx: no Manager in context")
	}
	return m
}
