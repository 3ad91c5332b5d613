package itinerary

import (
	"context"

	"github.com/google/uuid"
)

// DirectCandidate is one direct flight matching a search.
type DirectCandidate struct {
	Fid      int64 `db:"fid"`
	Duration int   `db:"total_time"`
}

// TwoHopCandidate is one two-flight connection matching a search.
type TwoHopCandidate struct {
	FidOne   int64 `db:"fid_one"`
	FidTwo   int64 `db:"fid_two"`
	Duration int   `db:"total_time"`
}

// StagedRow is one candidate staged in the search scratch table.
// FidTwo is NoSecondLeg for direct candidates.
type StagedRow struct {
	FidOne     int64 `db:"fid_one"`
	FidTwo     int64 `db:"fid_two"`
	TotalTime  int   `db:"total_time"`
	NumFlights int   `db:"num_flights"`
}

// FlightRepository reads the immutable flight catalog.
type FlightRepository interface {
	// ByID returns the flight with the given id.
	ByID(ctx context.Context, fid int64) (*Flight, error)

	// Direct returns up to limit non-canceled direct flights for the route
	// and day, shortest first.
	Direct(ctx context.Context, origin, dest string, day, limit int) ([]DirectCandidate, error)

	// TwoHop returns up to limit non-canceled two-flight connections for the
	// route and day, shortest combined duration first.
	TwoHop(ctx context.Context, origin, dest string, day, limit int) ([]TwoHopCandidate, error)
}

// ScratchRepository stages search candidates inside the search transaction.
// Rows are scoped by session so concurrent searches do not interfere.
type ScratchRepository interface {
	Clear(ctx context.Context, sessionID uuid.UUID) error

	// Stage inserts candidate rows for the session in one round-trip.
	Stage(ctx context.Context, sessionID uuid.UUID, rows []StagedRow) error

	// CountDirect counts staged direct candidates for the session.
	CountDirect(ctx context.Context, sessionID uuid.UUID) (int, error)

	// Direct returns up to limit staged direct candidates ordered by
	// (total duration, first leg id, second leg id).
	Direct(ctx context.Context, sessionID uuid.UUID, limit int) ([]StagedRow, error)

	// Indirect returns up to limit staged two-hop candidates in the same order.
	Indirect(ctx context.Context, sessionID uuid.UUID, limit int) ([]StagedRow, error)
}
