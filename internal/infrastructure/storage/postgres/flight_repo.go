package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"flightbook/internal/domain/itinerary"
)

// psql builds queries with PostgreSQL placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Compile-time check.
var _ itinerary.FlightRepository = (*FlightRepo)(nil)

// FlightRepo implements itinerary.FlightRepository over the immutable
// flight catalog.
type FlightRepo struct{}

// NewFlightRepo creates a flight repository.
func NewFlightRepo() *FlightRepo {
	return &FlightRepo{}
}

var flightColumns = []string{
	"fid", "day_of_month", "carrier_id", "flight_num",
	"origin_city", "dest_city", "actual_time", "capacity", "price",
}

func (r *FlightRepo) ByID(ctx context.Context, fid int64) (*itinerary.Flight, error) {
	query, args, err := psql.
		Select(flightColumns...).
		From("flights").
		Where(sq.Eq{"fid": fid}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build flight query: %w", err)
	}

	var f itinerary.Flight
	if err := pgxscan.Get(ctx, QuerierFrom(ctx), &f, query, args...); err != nil {
		return nil, fmt.Errorf("get flight %d: %w", fid, err)
	}
	return &f, nil
}

func (r *FlightRepo) Direct(ctx context.Context, origin, dest string, day, limit int) ([]itinerary.DirectCandidate, error) {
	query, args, err := psql.
		Select("fid", "actual_time AS total_time").
		From("flights").
		Where(sq.Eq{
			"origin_city":  origin,
			"dest_city":    dest,
			"day_of_month": day,
			"canceled":     0,
		}).
		OrderBy("actual_time ASC", "fid ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build direct query: %w", err)
	}

	var out []itinerary.DirectCandidate
	if err := pgxscan.Select(ctx, QuerierFrom(ctx), &out, query, args...); err != nil {
		return nil, fmt.Errorf("select direct flights: %w", err)
	}
	return out, nil
}

func (r *FlightRepo) TwoHop(ctx context.Context, origin, dest string, day, limit int) ([]itinerary.TwoHopCandidate, error) {
	query, args, err := psql.
		Select(
			"f.fid AS fid_one",
			"g.fid AS fid_two",
			"f.actual_time + g.actual_time AS total_time",
		).
		From("flights f").
		Join("flights g ON g.origin_city = f.dest_city AND g.day_of_month = f.day_of_month AND g.canceled = 0").
		Where(sq.Eq{
			"f.origin_city":  origin,
			"g.dest_city":    dest,
			"f.day_of_month": day,
			"f.canceled":     0,
		}).
		OrderBy("total_time ASC", "fid_one ASC", "fid_two ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build two-hop query: %w", err)
	}

	var out []itinerary.TwoHopCandidate
	if err := pgxscan.Select(ctx, QuerierFrom(ctx), &out, query, args...); err != nil {
		return nil, fmt.Errorf("select two-hop flights: %w", err)
	}
	return out, nil
}
