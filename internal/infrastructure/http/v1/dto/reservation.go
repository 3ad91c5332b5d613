package dto

import (
	"fmt"
	"strings"

	"flightbook/internal/domain/reservation"
)

// BookRequest books an itinerary by its index from the session's most recent
// search. Pointer so index 0 and absent are distinguishable.
type BookRequest struct {
	Itinerary *int `json:"itinerary" binding:"required"`
}

// BookResponse reports the new reservation id.
type BookResponse struct {
	ReservationID int64  `json:"reservation_id"`
	Message       string `json:"message"`
}

// NewBookResponse builds the legacy booking confirmation.
func NewBookResponse(id int64) BookResponse {
	return BookResponse{
		ReservationID: id,
		Message:       fmt.Sprintf("Booked flight(s), reservation ID: %d", id),
	}
}

// PayResponse reports the balance remaining after payment.
type PayResponse struct {
	ReservationID int64  `json:"reservation_id"`
	Balance       int64  `json:"balance"`
	Message       string `json:"message"`
}

// NewPayResponse builds the legacy payment confirmation.
func NewPayResponse(id, balance int64) PayResponse {
	return PayResponse{
		ReservationID: id,
		Balance:       balance,
		Message:       fmt.Sprintf("Paid reservation: %d remaining balance: %d", id, balance),
	}
}

// CancelResponse confirms a cancellation.
type CancelResponse struct {
	ReservationID int64  `json:"reservation_id"`
	Message       string `json:"message"`
}

// NewCancelResponse builds the legacy cancellation confirmation.
func NewCancelResponse(id int64) CancelResponse {
	return CancelResponse{
		ReservationID: id,
		Message:       fmt.Sprintf("Canceled reservation %d", id),
	}
}

// ReservationResponse is one reservation with its flights.
type ReservationResponse struct {
	ID         int64            `json:"reservation_id"`
	Paid       bool             `json:"paid"`
	TotalPrice int64            `json:"total_price"`
	Flights    []FlightResponse `json:"flights"`
	Display    string           `json:"display"`
}

// ListReservationsResponse lists the user's reservations ordered by id.
type ListReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	Display      string                `json:"display"`
}

// NewListReservationsResponse maps reservation views.
func NewListReservationsResponse(views []reservation.View) ListReservationsResponse {
	resp := ListReservationsResponse{Reservations: make([]ReservationResponse, 0, len(views))}

	var b strings.Builder
	for _, v := range views {
		rr := ReservationResponse{
			ID:         v.Reservation.ID,
			Paid:       v.Reservation.Paid,
			TotalPrice: v.Reservation.TotalPrice,
			Flights:    make([]FlightResponse, 0, len(v.Flights)),
			Display:    v.Display(),
		}
		for _, f := range v.Flights {
			rr.Flights = append(rr.Flights, NewFlightResponse(f))
		}
		resp.Reservations = append(resp.Reservations, rr)
		b.WriteString(rr.Display)
	}
	resp.Display = b.String()
	return resp
}
