package types

// Filters narrows acceptable flight and lodging quotes. A search carries one
// immutable Filters value supplied by the caller.
type Filters struct {
	MaxStops         int     `json:"maxStops"`          // -1 = unconstrained
	MaxDurationHours int     `json:"maxFlightDuration"` // -1 = unconstrained
	BaggageRequired  bool    `json:"baggageIncluded"`
	MinRating        float64 `json:"minHotelRating"` // 0 = unconstrained
	LodgingType      string  `json:"accommodationType"`
}

// DefaultFilters returns an unconstrained Filters value.
func DefaultFilters() Filters {
	return Filters{
		MaxStops:         -1,
		MaxDurationHours: -1,
		LodgingType:      "all",
	}
}

// Flight is the flight leg of an assembled package.
type Flight struct {
	Price         float64 `json:"price"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	Stops         int     `json:"stops"`
	Carrier       string  `json:"airline,omitempty"`
	HasBaggage    bool    `json:"has_baggage"`
	BookingURL    string  `json:"booking_url"`
}

// Lodging is the stay leg of an assembled package.
type Lodging struct {
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
	TotalPrice    float64 `json:"total_price"`
	Rating        float64 `json:"rating"`
	Type          string  `json:"accommodation_type"`
	BookingURL    string  `json:"booking_url"`
}

// TravelPackage is one fully priced flight+lodging combination within budget.
type TravelPackage struct {
	City    string `json:"destination"`
	Country string `json:"country"`
	Code    string `json:"code"`
	Flag    string `json:"flag"`

	Flight  Flight  `json:"flight"`
	Lodging Lodging `json:"hotel"`

	TotalCost       float64 `json:"total_cost"`
	BudgetRemaining float64 `json:"budget_remaining"`
	SavingsPct      float64 `json:"savings_pct"`
}

// Result carries the ranked packages of one search plus run statistics. The
// statistics serialize too, so a cached result keeps them across stores.
type Result struct {
	Packages []TravelPackage `json:"packages"`

	DestinationsProbed int `json:"destinations_probed"`
	FlightsFound       int `json:"flights_found"`
	PackagesAssembled  int `json:"packages_assembled"`
}
