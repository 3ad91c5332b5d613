package handlers

import (
	"github.com/gin-gonic/gin"

	"flightbook/internal/core/tx"
	"flightbook/internal/infrastructure/http/v1/dto"
	"flightbook/internal/infrastructure/storage/postgres"
	"flightbook/pkg/logger"
)

// AdminHandler serves destructive administrative operations.
type AdminHandler struct {
	*BaseHandler
	admin *postgres.AdminRepo
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(base *BaseHandler, admin *postgres.AdminRepo) *AdminHandler {
	return &AdminHandler{BaseHandler: base, admin: admin}
}

// Reset deletes all users, reservations and cancelled ids in one
// transaction. The flight catalog survives.
// POST /api/v1/admin/reset
func (h *AdminHandler) Reset(c *gin.Context) {
	ctx := c.Request.Context()
	m := tx.MustFromContext(ctx)

	if err := m.RunInTransaction(ctx, h.admin.Reset); err != nil {
		h.Error(c, err)
		return
	}

	logger.Warn(ctx, "store reset, all user data deleted")
	h.OK(c, dto.MessageResponse{Message: "Store reset"})
}
