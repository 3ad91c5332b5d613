package middleware

import (
	"github.com/gin-gonic/gin"

	"flightbook/internal/core/tx"
	"flightbook/internal/infrastructure/storage/postgres"
)

// RequestTxManager gives every request a fresh transaction manager so
// operations outside a session (account creation, admin reset) can reach the
// store, and verifies the manager is clean once the request finishes.
// Session operations override it with the session's own manager.
func RequestTxManager(pool *postgres.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := postgres.NewTxManager(pool)
		ctx := tx.WithManager(c.Request.Context(), m)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		tx.AssertClean(m)
	}
}
