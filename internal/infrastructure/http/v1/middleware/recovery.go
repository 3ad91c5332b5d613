// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"flightbook/internal/core/apperror"
	appctx "flightbook/internal/core/context"
	"flightbook/internal/core/tx"
	"flightbook/pkg/logger"
)

// Recovery middleware recovers from panics and returns 500 error.
// Logs stack trace but never exposes internal details to client.
//
// A dangling-transaction violation is the one panic it does not absorb: a
// transaction left open means unknown state, so the process goes down.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				if inv, ok := err.(*tx.InvariantError); ok {
					logger.Fatal(c.Request.Context(), "transaction left open after operation",
						"open", inv.Open,
						"path", c.Request.URL.Path,
					)
				}

				// Log full stack trace
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"stack", string(debug.Stack()),
				)

				_ = c.Error(
					apperror.NewInternal(fmt.Errorf("panic: %v", err)).
						WithDetail("request_id", appctx.GetRequestID(c.Request.Context())),
				)
				c.Abort()
			}
		}()
		c.Next()
	}
}
