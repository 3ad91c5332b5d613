package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"flightbook/internal/core/apperror"
	"flightbook/internal/core/tx"
	"flightbook/pkg/logger"
)

// Service creates accounts and verifies credentials. It carries no session
// state; login bookkeeping lives in the session package.
type Service struct {
	users Repository
}

// NewService creates an auth service.
func NewService(users Repository) *Service {
	return &Service{users: users}
}

// CreateAccount registers a new user with an initial balance. The uniqueness
// check and the insert run in one serializable transaction through the
// retrying manager, so two racing creations of the same name cannot both
// succeed. Every failure collapses into the single create-user error.
func (s *Service) CreateAccount(ctx context.Context, username, password string, initialBalance int64) error {
	if username == "" || password == "" || initialBalance < 0 {
		return apperror.NewCreateUserFailed(nil)
	}

	m := tx.MustFromContext(ctx)
	err := m.RunWithRetry(ctx, func(ctx context.Context) error {
		exists, err := s.users.Exists(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewCreateUserFailed(nil)
		}

		salt, err := newSalt()
		if err != nil {
			return err
		}
		return s.users.Create(ctx, &User{
			Username: username,
			Hash:     deriveKey(password, salt),
			Salt:     salt,
			Balance:  initialBalance,
		})
	})
	if err != nil {
		if apperror.IsCode(err, apperror.CodeCreateUserFailed) {
			return err
		}
		logger.Error(ctx, "account creation failed", "username", username, "error", err)
		return apperror.NewCreateUserFailed(err)
	}
	return nil
}

// VerifyLogin checks the password against the stored hash. Unknown users and
// wrong passwords return the same error so callers cannot tell them apart.
func (s *Service) VerifyLogin(ctx context.Context, username, password string) error {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.NewLoginFailed(nil)
		}
		return apperror.NewLoginFailed(err)
	}

	derived := deriveKey(password, u.Salt)
	if subtle.ConstantTimeCompare(derived, u.Hash) != 1 {
		return apperror.NewLoginFailed(nil)
	}
	return nil
}
