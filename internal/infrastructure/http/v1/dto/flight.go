package dto

import (
	"strings"

	"flightbook/internal/domain/itinerary"
)

// FlightResponse is one catalog flight plus its legacy display line.
type FlightResponse struct {
	ID         int64  `json:"fid"`
	DayOfMonth int    `json:"day_of_month"`
	Carrier    string `json:"carrier_id"`
	Number     string `json:"flight_num"`
	Origin     string `json:"origin_city"`
	Dest       string `json:"dest_city"`
	Duration   int    `json:"duration"`
	Capacity   int    `json:"capacity"`
	Price      int64  `json:"price"`
	Display    string `json:"display"`
}

// NewFlightResponse maps a catalog flight.
func NewFlightResponse(f itinerary.Flight) FlightResponse {
	return FlightResponse{
		ID:         f.ID,
		DayOfMonth: f.DayOfMonth,
		Carrier:    f.Carrier,
		Number:     f.Number,
		Origin:     f.Origin,
		Dest:       f.Dest,
		Duration:   f.Duration,
		Capacity:   f.Capacity,
		Price:      f.Price,
		Display:    f.String(),
	}
}

// ItineraryResponse is one search result under its zero-based index.
type ItineraryResponse struct {
	Index     int              `json:"index"`
	TotalTime int              `json:"total_time"`
	Flights   []FlightResponse `json:"flights"`
	Display   string           `json:"display"`
}

// SearchResponse lists itineraries in emission order plus the combined
// legacy rendering.
type SearchResponse struct {
	Itineraries []ItineraryResponse `json:"itineraries"`
	Display     string              `json:"display"`
}

// NewSearchResponse maps search results.
func NewSearchResponse(results []itinerary.Itinerary) SearchResponse {
	resp := SearchResponse{Itineraries: make([]ItineraryResponse, 0, len(results))}

	var b strings.Builder
	for _, it := range results {
		ir := ItineraryResponse{
			Index:     it.Index,
			TotalTime: it.TotalTime,
			Flights:   make([]FlightResponse, 0, len(it.Flights)),
			Display:   it.Display(),
		}
		for _, f := range it.Flights {
			ir.Flights = append(ir.Flights, NewFlightResponse(f))
		}
		resp.Itineraries = append(resp.Itineraries, ir)
		b.WriteString(ir.Display)
	}
	resp.Display = b.String()
	return resp
}
