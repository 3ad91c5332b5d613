package handlers

import (
	"github.com/gin-gonic/gin"

	"flightbook/internal/domain/reservation"
	"flightbook/internal/infrastructure/http/v1/dto"
)

// ReservationHandler serves booking, payment, cancellation and listing.
type ReservationHandler struct {
	*BaseHandler
	reservations *reservation.Service
}

// NewReservationHandler creates a reservation handler.
func NewReservationHandler(base *BaseHandler, reservations *reservation.Service) *ReservationHandler {
	return &ReservationHandler{BaseHandler: base, reservations: reservations}
}

// Book reserves an itinerary from the session's most recent search.
// POST /api/v1/reservations
func (h *ReservationHandler) Book(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}

	var req dto.BookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	id, err := h.reservations.Book(c.Request.Context(), sess, *req.Itinerary)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.NewBookResponse(id))
}

// List returns the user's reservations.
// GET /api/v1/reservations
func (h *ReservationHandler) List(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}

	views, err := h.reservations.List(c.Request.Context(), sess)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListReservationsResponse(views))
}

// Pay settles an unpaid reservation.
// POST /api/v1/reservations/:id/pay
func (h *ReservationHandler) Pay(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	balance, err := h.reservations.Pay(c.Request.Context(), sess, id)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewPayResponse(id, balance))
}

// Cancel removes a reservation, refunding it if paid.
// DELETE /api/v1/reservations/:id
func (h *ReservationHandler) Cancel(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.reservations.Cancel(c.Request.Context(), sess, id); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewCancelResponse(id))
}
