package itinerary

import (
	"context"

	"github.com/google/uuid"

	"flightbook/internal/core/apperror"
	"flightbook/internal/core/tx"
	"flightbook/pkg/logger"
)

// SearchSession is the slice of session behavior search needs: exclusive
// execution, the scratch-scoping id, and the itinerary cache.
type SearchSession interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
	ID() uuid.UUID
	ClearItineraries()
	SetItineraries(cache map[int]Legs)
}

// Query describes one search request.
type Query struct {
	Origin     string
	Dest       string
	DirectOnly bool
	Day        int
	Limit      int
}

// Service runs itinerary searches. Results are cached on the session under
// zero-based indices so a later booking can reference them.
type Service struct {
	flights FlightRepository
	scratch ScratchRepository
}

// NewService creates a search service.
func NewService(flights FlightRepository, scratch ScratchRepository) *Service {
	return &Service{flights: flights, scratch: scratch}
}

// Search finds up to q.Limit itineraries for the route and day. Two-hop
// itineraries only fill seats the direct ones left open, but are emitted
// first; within each group ordering is (total duration, first leg id,
// second leg id). An empty result is not an error.
//
// The staging and the final read happen in one serializable transaction so
// the result is a consistent snapshot of the catalog.
func (s *Service) Search(ctx context.Context, sess SearchSession, q Query) ([]Itinerary, error) {
	if q.Origin == "" || q.Dest == "" {
		return nil, apperror.NewValidation("origin and destination are required")
	}
	if q.Day < 1 || q.Day > 31 {
		return nil, apperror.NewValidation("day of month must be between 1 and 31")
	}
	if q.Limit <= 0 {
		return nil, apperror.NewValidation("itinerary count must be positive")
	}

	var results []Itinerary
	err := sess.Run(ctx, func(ctx context.Context) error {
		// A new search always invalidates the previous one, even if it fails.
		sess.ClearItineraries()

		m := tx.MustFromContext(ctx)
		return m.RunInTransaction(ctx, func(ctx context.Context) error {
			staged, err := s.stageCandidates(ctx, sess.ID(), q)
			if err != nil {
				return err
			}

			cache := make(map[int]Legs, len(staged))
			results = make([]Itinerary, 0, len(staged))
			for i, row := range staged {
				it, err := s.resolve(ctx, i, row)
				if err != nil {
					return err
				}
				cache[i] = it.Legs()
				results = append(results, *it)
			}

			if err := s.scratch.Clear(ctx, sess.ID()); err != nil {
				return err
			}
			sess.SetItineraries(cache)
			return nil
		})
	})
	if err != nil {
		if _, ok := apperror.AsAppError(err); ok {
			return nil, err
		}
		logger.Error(ctx, "itinerary search failed", "origin", q.Origin, "dest", q.Dest, "error", err)
		return nil, apperror.NewSearchFailed(err)
	}
	return results, nil
}

// stageCandidates loads candidates into the scratch table and pulls them back
// in emission order: two-hop itineraries filling the remainder first, then
// every direct one.
func (s *Service) stageCandidates(ctx context.Context, sessionID uuid.UUID, q Query) ([]StagedRow, error) {
	if err := s.scratch.Clear(ctx, sessionID); err != nil {
		return nil, err
	}

	direct, err := s.flights.Direct(ctx, q.Origin, q.Dest, q.Day, q.Limit)
	if err != nil {
		return nil, err
	}
	rows := make([]StagedRow, 0, 2*q.Limit)
	for _, c := range direct {
		rows = append(rows, StagedRow{FidOne: c.Fid, FidTwo: NoSecondLeg, TotalTime: c.Duration, NumFlights: 1})
	}

	if !q.DirectOnly {
		hops, err := s.flights.TwoHop(ctx, q.Origin, q.Dest, q.Day, q.Limit)
		if err != nil {
			return nil, err
		}
		for _, c := range hops {
			rows = append(rows, StagedRow{FidOne: c.FidOne, FidTwo: c.FidTwo, TotalTime: c.Duration, NumFlights: 2})
		}
	}

	if len(rows) > 0 {
		if err := s.scratch.Stage(ctx, sessionID, rows); err != nil {
			return nil, err
		}
	}

	staged := make([]StagedRow, 0, q.Limit)
	if !q.DirectOnly {
		nDirect, err := s.scratch.CountDirect(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if need := q.Limit - nDirect; need > 0 {
			indirect, err := s.scratch.Indirect(ctx, sessionID, need)
			if err != nil {
				return nil, err
			}
			staged = append(staged, indirect...)
		}
	}

	directRows, err := s.scratch.Direct(ctx, sessionID, q.Limit)
	if err != nil {
		return nil, err
	}
	return append(staged, directRows...), nil
}

// resolve turns a staged row back into a full itinerary.
func (s *Service) resolve(ctx context.Context, index int, row StagedRow) (*Itinerary, error) {
	first, err := s.flights.ByID(ctx, row.FidOne)
	if err != nil {
		return nil, err
	}
	flights := []Flight{*first}
	if row.NumFlights == 2 {
		second, err := s.flights.ByID(ctx, row.FidTwo)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *second)
	}
	return &Itinerary{Index: index, Flights: flights, TotalTime: row.TotalTime}, nil
}
