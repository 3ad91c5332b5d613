package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"flightbook/internal/core/apperror"
)

// fakeTx records commits and rollbacks. The embedded interface covers the
// pgx.Tx methods the manager never touches.
type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
	commitErr error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.commits++
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rollbacks++
	return nil
}

type fakeBeginner struct {
	begins   int
	lastOpts pgx.TxOptions
	tx       *fakeTx
	beginErr error
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.begins++
	b.lastOpts = opts
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func newTestManager() (*TxManager, *fakeBeginner) {
	b := &fakeBeginner{tx: &fakeTx{}}
	return &TxManager{db: b}, b
}

func serializationFailure() error {
	return &pgconn.PgError{Code: sqlstateSerializationFailure, Message: "could not serialize access"}
}

func TestRunInTransactionCommits(t *testing.T) {
	m, b := newTestManager()

	var seenTx pgx.Tx
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		seenTx = m.GetTx(ctx)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.lastOpts.IsoLevel != pgx.Serializable {
		t.Errorf("isolation level = %q, want serializable", b.lastOpts.IsoLevel)
	}
	if seenTx != pgx.Tx(b.tx) {
		t.Error("fn did not receive the transaction through context")
	}
	if b.tx.commits != 1 || b.tx.rollbacks != 0 {
		t.Errorf("commits = %d, rollbacks = %d", b.tx.commits, b.tx.rollbacks)
	}
	if n := m.OpenTransactions(); n != 0 {
		t.Errorf("open transactions = %d after commit", n)
	}
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	m, b := newTestManager()

	wantErr := errors.New("boom")
	err := m.RunInTransaction(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if b.tx.commits != 0 || b.tx.rollbacks != 1 {
		t.Errorf("commits = %d, rollbacks = %d", b.tx.commits, b.tx.rollbacks)
	}
	if n := m.OpenTransactions(); n != 0 {
		t.Errorf("open transactions = %d after rollback", n)
	}
}

func TestRunInTransactionLeavesCounterRaisedOnPanic(t *testing.T) {
	m, _ := newTestManager()

	func() {
		defer func() { _ = recover() }()
		_ = m.RunInTransaction(context.Background(), func(ctx context.Context) error {
			panic("escaped")
		})
	}()

	// The transaction neither committed nor rolled back, so the counter must
	// still show it; this is what trips AssertClean.
	if n := m.OpenTransactions(); n != 1 {
		t.Errorf("open transactions = %d after panic, want 1", n)
	}
}

func TestRunWithRetryRecoversFromConflict(t *testing.T) {
	m, b := newTestManager()

	attempts := 0
	err := m.RunWithRetry(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return serializationFailure()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 || b.begins != 3 {
		t.Errorf("attempts = %d, begins = %d, want 3", attempts, b.begins)
	}
	if n := m.OpenTransactions(); n != 0 {
		t.Errorf("open transactions = %d", n)
	}
}

func TestRunWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	m, b := newTestManager()

	err := m.RunWithRetry(context.Background(), func(ctx context.Context) error {
		return serializationFailure()
	})
	if !apperror.IsCode(err, apperror.CodeTxConflict) {
		t.Fatalf("error = %v, want TX_CONFLICT", err)
	}
	if b.begins != MaxAttempts {
		t.Errorf("begins = %d, want %d", b.begins, MaxAttempts)
	}
}

func TestRunWithRetryPassesThroughNonRetryable(t *testing.T) {
	m, b := newTestManager()

	wantErr := errors.New("constraint violated")
	err := m.RunWithRetry(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
	if b.begins != 1 {
		t.Errorf("begins = %d, want 1", b.begins)
	}
}

func TestIsSerializationConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "40001"}), true},
		{"other pg error", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		if got := IsSerializationConflict(tt.err); got != tt.want {
			t.Errorf("%s: IsSerializationConflict = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestGetTxOutsideTransaction(t *testing.T) {
	m, _ := newTestManager()
	if m.GetTx(context.Background()) != nil {
		t.Error("expected nil transaction outside RunInTransaction")
	}
}
