package handlers

import (
	"github.com/gin-gonic/gin"

	"flightbook/internal/domain/auth"
	"flightbook/internal/infrastructure/http/v1/dto"
)

// UserHandler registers accounts. Account creation needs no session.
type UserHandler struct {
	*BaseHandler
	auth *auth.Service
}

// NewUserHandler creates a user handler.
func NewUserHandler(base *BaseHandler, authSvc *auth.Service) *UserHandler {
	return &UserHandler{BaseHandler: base, auth: authSvc}
}

// Create registers a new account with an initial balance.
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.auth.CreateAccount(c.Request.Context(), req.Username, req.Password, *req.InitialBalance); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.MessageResponse{Message: "Created user " + req.Username})
}
