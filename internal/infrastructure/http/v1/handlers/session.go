package handlers

import (
	"github.com/gin-gonic/gin"

	"flightbook/internal/domain/session"
	"flightbook/internal/infrastructure/http/v1/dto"
	"flightbook/pkg/logger"
)

// SessionHandler creates sessions and logs their users in.
type SessionHandler struct {
	*BaseHandler
	registry *session.Registry
	tokens   *session.TokenService
	sessions *session.Service
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(base *BaseHandler, registry *session.Registry, tokens *session.TokenService, sessions *session.Service) *SessionHandler {
	return &SessionHandler{
		BaseHandler: base,
		registry:    registry,
		tokens:      tokens,
		sessions:    sessions,
	}
}

// Create opens a new session and returns its signed token.
// POST /api/v1/session
func (h *SessionHandler) Create(c *gin.Context) {
	sess := h.registry.Create()

	token, expiresAt, err := h.tokens.Issue(sess.ID())
	if err != nil {
		h.registry.Remove(sess.ID())
		h.Error(c, err)
		return
	}

	logger.Info(c.Request.Context(), "session created", "session_id", sess.ID())
	h.Created(c, dto.CreateSessionResponse{Token: token, ExpiresAt: expiresAt})
}

// Login authenticates the session's user.
// POST /api/v1/session/login
func (h *SessionHandler) Login(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.sessions.Login(c.Request.Context(), sess, req.Username, req.Password); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.MessageResponse{Message: "Logged in as " + req.Username})
}
