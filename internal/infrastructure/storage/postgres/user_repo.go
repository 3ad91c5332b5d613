package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"flightbook/internal/domain/auth"
)

// Compile-time check.
var _ auth.Repository = (*UserRepo)(nil)

// UserRepo implements auth.Repository. Usernames are stored exactly as
// given; every predicate compares case-insensitively.
type UserRepo struct{}

// NewUserRepo creates a user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

func (r *UserRepo) Exists(ctx context.Context, username string) (bool, error) {
	q := QuerierFrom(ctx)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER($1)`,
		username,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepo) Create(ctx context.Context, u *auth.User) error {
	q := QuerierFrom(ctx)

	_, err := q.Exec(ctx,
		`INSERT INTO users (username, hash, salt, balance) VALUES ($1, $2, $3, $4)`,
		u.Username, u.Hash, u.Salt, u.Balance,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, username string) (*auth.User, error) {
	q := QuerierFrom(ctx)

	var u auth.User
	err := pgxscan.Get(ctx, q, &u,
		`SELECT username, hash, salt, balance FROM users WHERE LOWER(username) = LOWER($1)`,
		username,
	)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Balance(ctx context.Context, username string) (int64, error) {
	q := QuerierFrom(ctx)

	var balance int64
	err := q.QueryRow(ctx,
		`SELECT balance FROM users WHERE LOWER(username) = LOWER($1)`,
		username,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

func (r *UserRepo) SetBalance(ctx context.Context, username string, balance int64) error {
	q := QuerierFrom(ctx)

	_, err := q.Exec(ctx,
		`UPDATE users SET balance = $2 WHERE LOWER(username) = LOWER($1)`,
		username, balance,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}
