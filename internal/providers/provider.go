package providers

import (
	"context"
	"errors"
	"time"
)

// FlightQuote is a raw priced flight offer from a provider for one
// (origin, destination, date) probe. Duration and carrier may be unknown
// depending on the source.
type FlightQuote struct {
	Destination   string  `json:"destination"`
	Price         float64 `json:"price"`
	Stops         int     `json:"stops"`
	DurationHours float64 `json:"duration_hours,omitempty"` // 0 = unknown
	Carrier       string  `json:"carrier,omitempty"`
	HasBaggage    bool    `json:"has_baggage"`
	BookingURL    string  `json:"booking_url"`
}

// LodgingQuote is a raw priced lodging offer from a provider.
type LodgingQuote struct {
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
	Rating        float64 `json:"rating"` // 0-5 scale
	Type          string  `json:"type"`   // "hotel", "hostel" or "apartment"
	BookingURL    string  `json:"booking_url"`
}

// StayQuery carries the parameters of one lodging lookup.
type StayQuery struct {
	Destination   string
	Checkin       time.Time
	Checkout      time.Time
	Nights        int
	NightlyBudget float64
	MinRating     float64
	LodgingType   string // "all", "hotel", "hostel" or "apartment"
}

// FlightProvider quotes one flight per (origin, destination, date) probe.
// A (nil, nil) return means no quote is available for that probe, which is
// an expected outcome rather than an error. Providers apply no filtering.
type FlightProvider interface {
	QuoteFlight(ctx context.Context, origin, destination string, date time.Time) (*FlightQuote, error)
}

// LodgingProvider returns lodging offers for a stay, best first. An empty
// slice means nothing is available within the query's constraints.
type LodgingProvider interface {
	QuoteLodgings(ctx context.Context, q StayQuery) ([]LodgingQuote, error)
}

// ErrProviderUnavailable is returned when a provider is unavailable.
var ErrProviderUnavailable = errors.New("provider unavailable")
