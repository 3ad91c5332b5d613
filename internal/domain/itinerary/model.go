// Package itinerary provides flight search and the itinerary models shared
// by booking and listing.
package itinerary

import (
	"fmt"
	"strings"
)

// NoSecondLeg marks a direct itinerary's absent second flight.
const NoSecondLeg int64 = -1

// Flight is one row of the immutable flight catalog.
type Flight struct {
	ID         int64  `db:"fid" json:"fid"`
	DayOfMonth int    `db:"day_of_month" json:"day_of_month"`
	Carrier    string `db:"carrier_id" json:"carrier_id"`
	Number     string `db:"flight_num" json:"flight_num"`
	Origin     string `db:"origin_city" json:"origin_city"`
	Dest       string `db:"dest_city" json:"dest_city"`
	Duration   int    `db:"actual_time" json:"duration"`
	Capacity   int    `db:"capacity" json:"capacity"`
	Price      int64  `db:"price" json:"price"`
}

// String renders the flight in the fixed legacy line format. The field order
// and spacing are part of the external contract and must not change.
func (f Flight) String() string {
	return fmt.Sprintf("ID: %d Day: %d Carrier: %s Number: %s Origin: %s Dest: %s Duration: %d Capacity: %d Price: %d",
		f.ID, f.DayOfMonth, f.Carrier, f.Number, f.Origin, f.Dest, f.Duration, f.Capacity, f.Price)
}

// Legs identifies the flights of a cached itinerary.
// Second is NoSecondLeg for direct itineraries.
type Legs struct {
	First  int64
	Second int64
}

// Flights returns the leg ids in travel order.
func (l Legs) Flights() []int64 {
	if l.Second == NoSecondLeg {
		return []int64{l.First}
	}
	return []int64{l.First, l.Second}
}

// Itinerary is one search result with its zero-based display index.
type Itinerary struct {
	Index     int      `json:"index"`
	Flights   []Flight `json:"flights"`
	TotalTime int      `json:"total_time"`
}

// Legs returns the cacheable leg ids of the itinerary.
func (it Itinerary) Legs() Legs {
	legs := Legs{First: it.Flights[0].ID, Second: NoSecondLeg}
	if len(it.Flights) > 1 {
		legs.Second = it.Flights[1].ID
	}
	return legs
}

// Display renders the itinerary with its legacy header and one line per leg.
func (it Itinerary) Display() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Itinerary %d: %d flight(s), %d minutes\n", it.Index, len(it.Flights), it.TotalTime)
	for _, f := range it.Flights {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}
