package reservation

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no reservation matches the lookup.
var ErrNotFound = errors.New("reservation not found")

// Repository is the reservation store contract.
type Repository interface {
	// SeatsLeft returns the flight's capacity minus reservations holding the
	// flight as either leg.
	SeatsLeft(ctx context.Context, fid int64) (int, error)

	// HasSameDay reports whether the user already holds a reservation with
	// any leg on the same day of month as the given flight.
	HasSameDay(ctx context.Context, username string, fid int64) (bool, error)

	// NextID returns COUNT(reservations) + COUNT(cancelled) + 1.
	NextID(ctx context.Context) (int64, error)

	// Create inserts a reservation.
	Create(ctx context.Context, r *Reservation) error

	// GetUnpaid returns the user's unpaid reservation with the id, or ErrNotFound.
	GetUnpaid(ctx context.Context, username string, id int64) (*Reservation, error)

	// Get returns the user's reservation with the id regardless of payment
	// state, or ErrNotFound.
	Get(ctx context.Context, username string, id int64) (*Reservation, error)

	// MarkPaid flips the reservation to paid.
	MarkPaid(ctx context.Context, id int64) error

	// Delete removes the reservation row.
	Delete(ctx context.Context, id int64) error

	// AddCancelled records the id in the cancelled ledger.
	AddCancelled(ctx context.Context, id int64) error

	// ListByUser returns the user's reservations ordered by id.
	ListByUser(ctx context.Context, username string) ([]Reservation, error)
}
