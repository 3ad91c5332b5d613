// Package reservation provides booking, payment, cancellation and listing of
// flight reservations.
package reservation

import (
	"fmt"
	"strings"

	"flightbook/internal/domain/itinerary"
)

// Reservation is one booked itinerary. FidTwo is itinerary.NoSecondLeg for
// single-flight reservations. Ids are derived from row counts: a new id is
// COUNT(reservations) + COUNT(cancelled) + 1, so cancelled ids are never
// reissued.
type Reservation struct {
	ID         int64  `db:"re_id"`
	FidOne     int64  `db:"fid_one"`
	FidTwo     int64  `db:"fid_two"`
	TotalPrice int64  `db:"total_price"`
	Username   string `db:"username"`
	Paid       bool   `db:"paid"`
}

// Legs returns the reservation's flight ids in travel order.
func (r Reservation) Legs() []int64 {
	if r.FidTwo == itinerary.NoSecondLeg {
		return []int64{r.FidOne}
	}
	return []int64{r.FidOne, r.FidTwo}
}

// View is a reservation joined with its flights, ready for display.
type View struct {
	Reservation Reservation
	Flights     []itinerary.Flight
}

// Display renders the reservation in the legacy listing format.
func (v View) Display() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reservation %d paid: %t:\n", v.Reservation.ID, v.Reservation.Paid)
	for _, f := range v.Flights {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}
