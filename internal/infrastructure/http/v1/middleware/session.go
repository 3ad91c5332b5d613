package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"flightbook/internal/core/apperror"
	appctx "flightbook/internal/core/context"
	"flightbook/internal/domain/session"
)

// SessionAuth resolves the session token and attaches the server-side
// session to the request context. Login state is not checked here; each
// operation enforces its own login requirement with its own message.
func SessionAuth(tokens *session.TokenService, registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			abortSession(c)
			return
		}

		id, err := tokens.Validate(token)
		if err != nil {
			abortSession(c)
			return
		}

		sess, ok := registry.Get(id)
		if !ok {
			abortSession(c)
			return
		}

		ctx := session.WithSession(c.Request.Context(), sess)
		ctx = appctx.WithSession(ctx, &appctx.SessionContext{
			SessionID: sess.ID().String(),
			Username:  sess.Username(),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortSession(c *gin.Context) {
	_ = c.Error(apperror.NewSessionRequired())
	c.Abort()
}
