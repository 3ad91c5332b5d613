package reservation

import (
	"context"
	"errors"

	"flightbook/internal/core/apperror"
	"flightbook/internal/core/tx"
	"flightbook/internal/domain/auth"
	"flightbook/internal/domain/itinerary"
	"flightbook/pkg/logger"
)

// Session is the slice of session behavior reservations need.
type Session interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
	LoggedIn() bool
	Username() string
	Itinerary(index int) (itinerary.Legs, bool)
}

// Service runs reservation operations. Each mutating operation is one
// serializable transaction executed through the session's retrying manager.
type Service struct {
	reservations Repository
	flights      itinerary.FlightRepository
	users        auth.Repository
}

// NewService creates a reservation service.
func NewService(reservations Repository, flights itinerary.FlightRepository, users auth.Repository) *Service {
	return &Service{reservations: reservations, flights: flights, users: users}
}

// Book reserves the itinerary the session cached under index. Capacity is
// checked for every leg before the one-flight-per-day rule is checked for
// any; both passes succeeding consumes a count-derived id and inserts the
// reservation unpaid.
func (s *Service) Book(ctx context.Context, sess Session, index int) (int64, error) {
	var reID int64
	err := sess.Run(ctx, func(ctx context.Context) error {
		if !sess.LoggedIn() {
			return apperror.NewNotLoggedIn("Cannot book reservations, not logged in")
		}
		legs, ok := sess.Itinerary(index)
		if !ok {
			return apperror.NewNoSuchItinerary(index)
		}

		m := tx.MustFromContext(ctx)
		return m.RunWithRetry(ctx, func(ctx context.Context) error {
			fids := legs.Flights()
			for _, fid := range fids {
				left, err := s.reservations.SeatsLeft(ctx, fid)
				if err != nil {
					return err
				}
				if left <= 0 {
					return apperror.NewBookingFailed(nil)
				}
			}

			var total int64
			for _, fid := range fids {
				same, err := s.reservations.HasSameDay(ctx, sess.Username(), fid)
				if err != nil {
					return err
				}
				if same {
					return apperror.NewSameDayConflict()
				}

				f, err := s.flights.ByID(ctx, fid)
				if err != nil {
					return err
				}
				total += f.Price
			}

			id, err := s.reservations.NextID(ctx)
			if err != nil {
				return err
			}
			if err := s.reservations.Create(ctx, &Reservation{
				ID:         id,
				FidOne:     legs.First,
				FidTwo:     legs.Second,
				TotalPrice: total,
				Username:   sess.Username(),
				Paid:       false,
			}); err != nil {
				return err
			}
			reID = id
			return nil
		})
	})
	if err != nil {
		return 0, coalesce(ctx, err, func(cause error) error { return apperror.NewBookingFailed(cause) })
	}
	return reID, nil
}

// Pay settles the user's unpaid reservation with the id. Insufficient funds
// report the exact balance and cost without touching either; otherwise the
// paid flag and the debit land in the same transaction. Returns the balance
// after payment.
func (s *Service) Pay(ctx context.Context, sess Session, id int64) (int64, error) {
	var remaining int64
	err := sess.Run(ctx, func(ctx context.Context) error {
		if !sess.LoggedIn() {
			return apperror.NewNotLoggedIn("Cannot pay, not logged in")
		}

		m := tx.MustFromContext(ctx)
		return m.RunWithRetry(ctx, func(ctx context.Context) error {
			res, err := s.reservations.GetUnpaid(ctx, sess.Username(), id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return apperror.NewReservationNotFound(id, sess.Username())
				}
				return err
			}

			balance, err := s.users.Balance(ctx, sess.Username())
			if err != nil {
				return err
			}
			if balance < res.TotalPrice {
				return apperror.NewInsufficientFunds(balance, res.TotalPrice)
			}

			if err := s.reservations.MarkPaid(ctx, res.ID); err != nil {
				return err
			}
			if err := s.users.SetBalance(ctx, sess.Username(), balance-res.TotalPrice); err != nil {
				return err
			}
			remaining = balance - res.TotalPrice
			return nil
		})
	})
	if err != nil {
		return 0, coalesce(ctx, err, func(cause error) error { return apperror.NewPaymentFailed(id, cause) })
	}
	return remaining, nil
}

// Cancel removes the user's reservation with the id, records the id in the
// cancelled ledger so it is never reissued, and refunds the price iff the
// reservation was paid. One atomic unit.
func (s *Service) Cancel(ctx context.Context, sess Session, id int64) error {
	err := sess.Run(ctx, func(ctx context.Context) error {
		if !sess.LoggedIn() {
			return apperror.NewNotLoggedIn("Cannot cancel reservations, not logged in")
		}

		m := tx.MustFromContext(ctx)
		return m.RunWithRetry(ctx, func(ctx context.Context) error {
			res, err := s.reservations.Get(ctx, sess.Username(), id)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return apperror.NewCancelFailed(id, nil)
				}
				return err
			}

			if err := s.reservations.Delete(ctx, res.ID); err != nil {
				return err
			}
			if err := s.reservations.AddCancelled(ctx, res.ID); err != nil {
				return err
			}

			if res.Paid {
				balance, err := s.users.Balance(ctx, sess.Username())
				if err != nil {
					return err
				}
				if err := s.users.SetBalance(ctx, sess.Username(), balance+res.TotalPrice); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return coalesce(ctx, err, func(cause error) error { return apperror.NewCancelFailed(id, cause) })
	}
	return nil
}

// List returns the user's reservations with their flights, read in one
// transaction for a consistent snapshot. No reservations is a distinct
// outcome, not a store failure.
func (s *Service) List(ctx context.Context, sess Session) ([]View, error) {
	var views []View
	err := sess.Run(ctx, func(ctx context.Context) error {
		if !sess.LoggedIn() {
			return apperror.NewNotLoggedIn("Cannot view reservations, not logged in")
		}

		m := tx.MustFromContext(ctx)
		return m.RunInTransaction(ctx, func(ctx context.Context) error {
			list, err := s.reservations.ListByUser(ctx, sess.Username())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return apperror.NewNoReservations()
			}

			views = make([]View, 0, len(list))
			for _, res := range list {
				v := View{Reservation: res}
				for _, fid := range res.Legs() {
					f, err := s.flights.ByID(ctx, fid)
					if err != nil {
						return err
					}
					v.Flights = append(v.Flights, *f)
				}
				views = append(views, v)
			}
			return nil
		})
	})
	if err != nil {
		return nil, coalesce(ctx, err, func(cause error) error { return apperror.NewListFailed(cause) })
	}
	return views, nil
}

// coalesce keeps business-rule errors intact and collapses everything else,
// including a transaction conflict that survived the bounded retry, into the
// operation's single generic failure.
func coalesce(ctx context.Context, err error, generic func(cause error) error) error {
	if appErr, ok := apperror.AsAppError(err); ok {
		switch appErr.Code {
		case apperror.CodeTxConflict, apperror.CodeInternal:
			// fall through to the generic failure
		default:
			return appErr
		}
	}
	logger.Error(ctx, "reservation operation failed", "error", err)
	return generic(err)
}
