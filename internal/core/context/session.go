// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// SessionContext identifies the client session bound to the request.
type SessionContext struct {
	SessionID string
	Username  string // empty until the session logs in
}

type sessionContextKey struct{}

// WithSession adds SessionContext to context.
func WithSession(ctx context.Context, session *SessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// GetSession returns SessionContext from context.
func GetSession(ctx context.Context) *SessionContext {
	if v, ok := ctx.Value(sessionContextKey{}).(*SessionContext); ok {
		return v
	}
	return nil
}

// GetSessionID returns session ID from context or empty string.
func GetSessionID(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.SessionID
	}
	return ""
}

// GetUsername returns the logged-in username from context or empty string.
func GetUsername(ctx context.Context) string {
	if s := GetSession(ctx); s != nil {
		return s.Username
	}
	return ""
}
