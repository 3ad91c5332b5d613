package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchQuery represents a statement in a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// ExecBatch executes multiple statements in a single round-trip. It requires
// an active transaction in ctx; batching outside a transaction would hide
// partial failures.
func ExecBatch(ctx context.Context, queries []BatchQuery) error {
	m := MustGetTxManager(ctx)
	tx := m.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("batch execution requires transaction context")
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range queries {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch query failed: %w", err)
		}
	}

	return nil
}
