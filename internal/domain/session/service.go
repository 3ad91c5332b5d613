package session

import (
	"context"

	"flightbook/internal/core/apperror"
	"flightbook/internal/domain/auth"
	"flightbook/pkg/logger"
)

// Service performs session operations that need the credential verifier.
type Service struct {
	auth *auth.Service
}

// NewService creates a session service.
func NewService(authSvc *auth.Service) *Service {
	return &Service{auth: authSvc}
}

// Login authenticates the session's user. A session logs in at most once;
// a successful login drops any itinerary cache left from before.
func (s *Service) Login(ctx context.Context, sess *Session, username, password string) error {
	return sess.Run(ctx, func(ctx context.Context) error {
		if sess.LoggedIn() {
			return apperror.NewAlreadyLoggedIn()
		}
		if err := s.auth.VerifyLogin(ctx, username, password); err != nil {
			return err
		}
		sess.ClearItineraries()
		sess.SetUser(username)
		logger.Info(ctx, "session logged in", "session_id", sess.ID(), "username", username)
		return nil
	})
}
