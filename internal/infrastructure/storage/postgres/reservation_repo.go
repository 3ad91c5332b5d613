package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"flightbook/internal/domain/reservation"
)

// Compile-time check.
var _ reservation.Repository = (*ReservationRepo)(nil)

// ReservationRepo implements reservation.Repository.
type ReservationRepo struct{}

// NewReservationRepo creates a reservation repository.
func NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{}
}

var reservationColumns = []string{
	"re_id", "fid_one", "fid_two", "total_price", "username", "paid",
}

func (r *ReservationRepo) SeatsLeft(ctx context.Context, fid int64) (int, error) {
	q := QuerierFrom(ctx)

	// A reservation holds a seat with either of its legs.
	var left int
	err := q.QueryRow(ctx,
		`SELECT f.capacity - (
		    SELECT COUNT(*) FROM reservations r
		    WHERE r.fid_one = f.fid OR r.fid_two = f.fid
		 )
		 FROM flights f WHERE f.fid = $1`,
		fid,
	).Scan(&left)
	if err != nil {
		return 0, fmt.Errorf("seats left for flight %d: %w", fid, err)
	}
	return left, nil
}

func (r *ReservationRepo) HasSameDay(ctx context.Context, username string, fid int64) (bool, error) {
	q := QuerierFrom(ctx)

	// Any leg of any existing reservation on the candidate flight's day counts.
	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM reservations r
		 JOIN flights f ON f.fid = $2
		 JOIN flights g ON g.fid = r.fid_one OR g.fid = r.fid_two
		 WHERE LOWER(r.username) = LOWER($1)
		   AND g.day_of_month = f.day_of_month`,
		username, fid,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("same-day check for flight %d: %w", fid, err)
	}
	return count > 0, nil
}

func (r *ReservationRepo) NextID(ctx context.Context) (int64, error) {
	q := QuerierFrom(ctx)

	// Ids derive from row counts; the cancelled ledger keeps retired ids from
	// being reissued.
	var id int64
	err := q.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM reservations) + (SELECT COUNT(*) FROM cancelled) + 1`,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("next reservation id: %w", err)
	}
	return id, nil
}

func (r *ReservationRepo) Create(ctx context.Context, res *reservation.Reservation) error {
	q := QuerierFrom(ctx)

	_, err := q.Exec(ctx,
		`INSERT INTO reservations (re_id, fid_one, fid_two, total_price, username, paid)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.FidOne, res.FidTwo, res.TotalPrice, res.Username, res.Paid,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepo) GetUnpaid(ctx context.Context, username string, id int64) (*reservation.Reservation, error) {
	return r.get(ctx, sq.Eq{"re_id": id, "paid": false}, username)
}

func (r *ReservationRepo) Get(ctx context.Context, username string, id int64) (*reservation.Reservation, error) {
	return r.get(ctx, sq.Eq{"re_id": id}, username)
}

func (r *ReservationRepo) get(ctx context.Context, pred sq.Eq, username string) (*reservation.Reservation, error) {
	query, args, err := psql.
		Select(reservationColumns...).
		From("reservations").
		Where(pred).
		Where("LOWER(username) = LOWER(?)", username).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build reservation query: %w", err)
	}

	var res reservation.Reservation
	if err := pgxscan.Get(ctx, QuerierFrom(ctx), &res, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, reservation.ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepo) MarkPaid(ctx context.Context, id int64) error {
	q := QuerierFrom(ctx)

	_, err := q.Exec(ctx, `UPDATE reservations SET paid = TRUE WHERE re_id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark reservation %d paid: %w", id, err)
	}
	return nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id int64) error {
	q := QuerierFrom(ctx)

	_, err := q.Exec(ctx, `DELETE FROM reservations WHERE re_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation %d: %w", id, err)
	}
	return nil
}

func (r *ReservationRepo) AddCancelled(ctx context.Context, id int64) error {
	q := QuerierFrom(ctx)

	_, err := q.Exec(ctx, `INSERT INTO cancelled (re_id) VALUES ($1)`, id)
	if err != nil {
		return fmt.Errorf("record cancelled id %d: %w", id, err)
	}
	return nil
}

func (r *ReservationRepo) ListByUser(ctx context.Context, username string) ([]reservation.Reservation, error) {
	query, args, err := psql.
		Select(reservationColumns...).
		From("reservations").
		Where("LOWER(username) = LOWER(?)", username).
		OrderBy("re_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var out []reservation.Reservation
	if err := pgxscan.Select(ctx, QuerierFrom(ctx), &out, query, args...); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}
