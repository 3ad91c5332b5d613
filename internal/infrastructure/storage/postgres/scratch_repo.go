package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"flightbook/internal/domain/itinerary"
)

// Compile-time check.
var _ itinerary.ScratchRepository = (*ScratchRepo)(nil)

// ScratchRepo stages search candidates in the search_scratch table. Rows are
// scoped by session id and never outlive the search transaction.
type ScratchRepo struct{}

// NewScratchRepo creates a scratch repository.
func NewScratchRepo() *ScratchRepo {
	return &ScratchRepo{}
}

func (r *ScratchRepo) Clear(ctx context.Context, sessionID uuid.UUID) error {
	q := QuerierFrom(ctx)

	_, err := q.Exec(ctx, `DELETE FROM search_scratch WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("clear search scratch: %w", err)
	}
	return nil
}

func (r *ScratchRepo) Stage(ctx context.Context, sessionID uuid.UUID, rows []itinerary.StagedRow) error {
	const insert = `INSERT INTO search_scratch (session_id, fid_one, fid_two, total_time, num_flights)
	 VALUES ($1, $2, $3, $4, $5)`

	queries := make([]BatchQuery, 0, len(rows))
	for _, row := range rows {
		queries = append(queries, BatchQuery{
			SQL:  insert,
			Args: []any{sessionID, row.FidOne, row.FidTwo, row.TotalTime, row.NumFlights},
		})
	}
	if err := ExecBatch(ctx, queries); err != nil {
		return fmt.Errorf("stage search candidates: %w", err)
	}
	return nil
}

func (r *ScratchRepo) CountDirect(ctx context.Context, sessionID uuid.UUID) (int, error) {
	q := QuerierFrom(ctx)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM search_scratch WHERE session_id = $1 AND num_flights = 1`,
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count direct candidates: %w", err)
	}
	return count, nil
}

func (r *ScratchRepo) Direct(ctx context.Context, sessionID uuid.UUID, limit int) ([]itinerary.StagedRow, error) {
	return r.pull(ctx, sessionID, 1, limit)
}

func (r *ScratchRepo) Indirect(ctx context.Context, sessionID uuid.UUID, limit int) ([]itinerary.StagedRow, error) {
	return r.pull(ctx, sessionID, 2, limit)
}

// pull reads staged rows in the fixed emission order.
func (r *ScratchRepo) pull(ctx context.Context, sessionID uuid.UUID, numFlights, limit int) ([]itinerary.StagedRow, error) {
	query, args, err := psql.
		Select("fid_one", "fid_two", "total_time", "num_flights").
		From("search_scratch").
		Where(sq.Eq{"session_id": sessionID, "num_flights": numFlights}).
		OrderBy("total_time ASC", "fid_one ASC", "fid_two ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scratch query: %w", err)
	}

	var out []itinerary.StagedRow
	if err := pgxscan.Select(ctx, QuerierFrom(ctx), &out, query, args...); err != nil {
		return nil, fmt.Errorf("select staged candidates: %w", err)
	}
	return out, nil
}
