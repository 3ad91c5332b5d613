package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"flightbook/internal/core/apperror"
	"flightbook/internal/core/tx"
	"flightbook/pkg/logger"
)

var tracer = otel.Tracer("flightbook/tx")

// Compile-time check that TxManager implements tx.Manager interface.
var _ tx.Manager = (*TxManager)(nil)

// MaxAttempts bounds how many times a conflicting transaction is restarted.
const MaxAttempts = 3

// SQLSTATE codes the store uses to abort a serializable transaction that
// cannot be ordered against concurrent ones.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// TxBeginner starts transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxManager runs serializable transactions for a single caller (one session,
// or one sessionless request) and keeps count of transactions it has begun
// but not yet finished. The counter backs the dangling-transaction check in
// tx.AssertClean, so it is decremented only once the transaction actually
// committed or rolled back; a panic escaping fn leaves it raised.
type TxManager struct {
	db   TxBeginner
	pool *pgxpool.Pool
	open atomic.Int32
}

// NewTxManager creates a new transaction manager.
func NewTxManager(pool *Pool) *TxManager {
	return &TxManager{db: pool.Pool, pool: pool.Pool}
}

// txKey is the context key for active transaction.
type txKey struct{}

// RunInTransaction executes fn within a single serializable transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(pgx.Serializable)),
		))
	defer span.End()

	dbTx, err := m.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel: pgx.Serializable,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	m.open.Add(1)

	txCtx := context.WithValue(ctx, txKey{}, dbTx)
	if err := fn(txCtx); err != nil {
		// Use background context for rollback to ensure it completes
		// even if the original context was cancelled.
		if rbErr := dbTx.Rollback(context.Background()); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "original_error", err)
		}
		m.open.Add(-1)
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		_ = dbTx.Rollback(context.Background())
		m.open.Add(-1)
		return fmt.Errorf("commit transaction: %w", err)
	}
	m.open.Add(-1)
	return nil
}

// RunWithRetry executes fn like RunInTransaction, restarting it on
// serialization conflicts up to MaxAttempts times. Non-retryable errors
// propagate immediately; exhausting the attempts yields a TX_CONFLICT error.
func (m *TxManager) RunWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		err := m.RunInTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsSerializationConflict(err) {
			return err
		}
		lastErr = err
		logger.Warn(ctx, "serialization conflict, restarting transaction",
			"attempt", attempt,
			"max_attempts", MaxAttempts,
		)
	}
	return apperror.NewTxConflict(lastErr)
}

// OpenTransactions reports transactions begun but not yet finished.
func (m *TxManager) OpenTransactions() int32 {
	return m.open.Load()
}

// GetTx returns the current transaction from context, or nil if none.
func (m *TxManager) GetTx(ctx context.Context) pgx.Tx {
	if dbTx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return dbTx
	}
	return nil
}

// Querier is the subset of pgx operations repositories need. It is satisfied
// by both pgx.Tx and *pgxpool.Pool, so repos work inside and outside
// transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetQuerier returns appropriate querier for context.
func (m *TxManager) GetQuerier(ctx context.Context) Querier {
	if dbTx := m.GetTx(ctx); dbTx != nil {
		return dbTx
	}
	return m.pool
}

// IsSerializationConflict reports whether err is a store-level serialization
// failure or deadlock, the only errors worth restarting a transaction for.
func IsSerializationConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == sqlstateSerializationFailure || pgErr.Code == sqlstateDeadlockDetected
}
