package auth

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no user matches the (case-insensitive) lookup.
var ErrNotFound = errors.New("user not found")

// Repository is the user store contract. All username predicates are
// case-insensitive.
type Repository interface {
	// Exists reports whether a user with the username already exists.
	Exists(ctx context.Context, username string) (bool, error)

	// Create inserts a new user.
	Create(ctx context.Context, u *User) error

	// Get returns the user or ErrNotFound.
	Get(ctx context.Context, username string) (*User, error)

	// Balance returns the user's current balance.
	Balance(ctx context.Context, username string) (int64, error)

	// SetBalance overwrites the user's balance.
	SetBalance(ctx context.Context, username string, balance int64) error
}
