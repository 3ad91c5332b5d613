package handlers

import (
	"github.com/gin-gonic/gin"

	"flightbook/internal/core/apperror"
	"flightbook/internal/domain/itinerary"
	"flightbook/internal/infrastructure/http/v1/dto"
)

// defaultItineraryCount caps a search when the client names no count.
const defaultItineraryCount = 10

// FlightHandler serves itinerary search.
type FlightHandler struct {
	*BaseHandler
	itineraries *itinerary.Service
}

// NewFlightHandler creates a flight handler.
func NewFlightHandler(base *BaseHandler, itineraries *itinerary.Service) *FlightHandler {
	return &FlightHandler{BaseHandler: base, itineraries: itineraries}
}

// Search finds itineraries and caches them on the session for booking.
// GET /api/v1/flights/search?origin=...&dest=...&day=...&direct=...&count=...
func (h *FlightHandler) Search(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}

	day := h.ParseIntQuery(c, "day", 0)
	if day == 0 {
		h.Error(c, apperror.NewValidation("day query parameter is required"))
		return
	}

	q := itinerary.Query{
		Origin:     c.Query("origin"),
		Dest:       c.Query("dest"),
		DirectOnly: c.Query("direct") == "true",
		Day:        day,
		Limit:      h.ParseIntQuery(c, "count", defaultItineraryCount),
	}

	results, err := h.itineraries.Search(c.Request.Context(), sess, q)
	if err != nil {
		h.Error(c, err)
		return
	}
	if len(results) == 0 {
		h.OK(c, dto.SearchResponse{
			Itineraries: []dto.ItineraryResponse{},
			Display:     "No flights match your selection\n",
		})
		return
	}

	h.OK(c, dto.NewSearchResponse(results))
}
