package postgres

import (
	"context"
	"fmt"
)

// AdminRepo performs destructive administrative operations.
type AdminRepo struct{}

// NewAdminRepo creates an admin repository.
func NewAdminRepo() *AdminRepo {
	return &AdminRepo{}
}

// Reset deletes all users, reservations, cancelled ids and search scratch
// rows. The flight catalog is never touched. Run it inside a transaction so
// a half-finished reset is impossible. Reservation ids derive from row
// counts, so emptying the tables also resets the id sequence to one.
func (r *AdminRepo) Reset(ctx context.Context) error {
	q := QuerierFrom(ctx)

	for _, table := range []string{"reservations", "cancelled", "users", "search_scratch"} {
		if _, err := q.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
