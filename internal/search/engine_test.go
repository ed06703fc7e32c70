package search_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/travel2go/engine/internal/destinations"
	"github.com/travel2go/engine/internal/providers"
	"github.com/travel2go/engine/internal/search"
	"github.com/travel2go/engine/internal/search/period"
	"github.com/travel2go/engine/internal/search/types"
)

func newTestEngine(flights providers.FlightProvider, lodgings providers.LodgingProvider, opts search.Options) *search.Engine {
	return search.NewEngine(flights, lodgings, destinations.Default(), opts, testMetrics(), testLogger())
}

func TestEngine_BudgetScenario(t *testing.T) {
	// YUL, budget 1500, 7 nights, unconstrained filters. BCN flies for 500
	// with lodging at 80/night; CDG flies for 900 but its cheapest lodging
	// at 120/night exceeds the (1500-900)/7 ceiling, so only BCN survives.
	flights := flightsByDestination(map[string]providers.FlightQuote{
		"BCN": {Price: 500, Stops: 0},
		"CDG": {Price: 900, Stops: 0},
	})
	lodgings := &mockLodgingProvider{
		inventory: map[string][]providers.LodgingQuote{
			"BCN": {{Name: "Hotel Catalonia", PricePerNight: 80, Rating: 4.2, Type: "hotel"}},
			"CDG": {{Name: "Paris Marais Hotel", PricePerNight: 120, Rating: 4.3, Type: "hotel"}},
		},
	}

	engine := newTestEngine(flights, lodgings, search.Options{})
	result, err := engine.Search(context.Background(), search.Request{
		Origin:       "YUL",
		Budget:       1500,
		Period:       "October 2026",
		Nights:       7,
		Filters:      types.DefaultFilters(),
		Destinations: []string{"BCN", "CDG"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Packages) != 1 {
		t.Fatalf("expected exactly 1 package, got %d", len(result.Packages))
	}

	got := result.Packages[0]
	if got.Code != "BCN" {
		t.Errorf("expected BCN, got %s", got.Code)
	}
	if got.TotalCost != 1060 {
		t.Errorf("total cost = %v, want 1060", got.TotalCost)
	}
	if got.BudgetRemaining != 440 {
		t.Errorf("budget remaining = %v, want 440", got.BudgetRemaining)
	}
	if math.Abs(got.SavingsPct-29.333333333333332) > 1e-6 {
		t.Errorf("savings pct = %v, want ≈29.33", got.SavingsPct)
	}

	if result.DestinationsProbed != 2 {
		t.Errorf("destinations probed = %d, want 2", result.DestinationsProbed)
	}
	// CDG's flight (900) already exceeds the 750 flight ceiling, so only
	// BCN's flight survives probing.
	if result.FlightsFound != 1 {
		t.Errorf("flights found = %d, want 1", result.FlightsFound)
	}
}

func TestEngine_InputValidation(t *testing.T) {
	engine := newTestEngine(
		flightsByDestination(nil),
		&mockLodgingProvider{},
		search.Options{},
	)

	base := search.Request{
		Origin:  "YUL",
		Budget:  1500,
		Period:  "October 2026",
		Nights:  7,
		Filters: types.DefaultFilters(),
	}

	tests := []struct {
		name    string
		mutate  func(*search.Request)
		wantErr error
	}{
		{"zero budget", func(r *search.Request) { r.Budget = 0 }, search.ErrInvalidBudget},
		{"negative budget", func(r *search.Request) { r.Budget = -10 }, search.ErrInvalidBudget},
		{"zero nights", func(r *search.Request) { r.Nights = 0 }, period.ErrInvalidNights},
		{"bad period", func(r *search.Request) { r.Period = "Soon" }, period.ErrInvalidPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			if _, err := engine.Search(context.Background(), req); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEngine_EmptyResultIsValid(t *testing.T) {
	// Every probe times out: no packages and no error.
	flights := &mockFlightProvider{
		delay: time.Second,
		quote: func(_, destination string, _ time.Time) (*providers.FlightQuote, error) {
			return &providers.FlightQuote{Destination: destination, Price: 400}, nil
		},
	}

	engine := newTestEngine(flights, &mockLodgingProvider{}, search.Options{
		FlightTimeout: 20 * time.Millisecond,
	})

	result, err := engine.Search(context.Background(), search.Request{
		Origin:       "YUL",
		Budget:       1500,
		Period:       "October 2026",
		Nights:       7,
		Filters:      types.DefaultFilters(),
		Destinations: []string{"BCN", "CDG"},
	})
	if err != nil {
		t.Fatalf("an empty search must not error, got %v", err)
	}
	if len(result.Packages) != 0 {
		t.Errorf("expected no packages, got %d", len(result.Packages))
	}
}

func TestEngine_UnknownDestinationCodesSkipped(t *testing.T) {
	flights := flightsByDestination(map[string]providers.FlightQuote{
		"BCN": {Price: 500},
	})
	lodgings := &mockLodgingProvider{
		inventory: map[string][]providers.LodgingQuote{
			"BCN": {{Name: "Hotel", PricePerNight: 60, Rating: 4, Type: "hotel"}},
		},
	}

	engine := newTestEngine(flights, lodgings, search.Options{})
	result, err := engine.Search(context.Background(), search.Request{
		Origin:       "YUL",
		Budget:       1500,
		Period:       "October 2026",
		Nights:       7,
		Filters:      types.DefaultFilters(),
		Destinations: []string{"BCN", "XXX"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DestinationsProbed != 1 {
		t.Errorf("expected unknown code to be skipped, probed %d", result.DestinationsProbed)
	}
}

func TestEngine_LimitTruncatesRankedOutput(t *testing.T) {
	flights := flightsByDestination(map[string]providers.FlightQuote{
		"BCN": {Price: 500},
		"LIS": {Price: 450},
		"FCO": {Price: 600},
	})
	lodgings := &mockLodgingProvider{
		inventory: map[string][]providers.LodgingQuote{
			"BCN": {{Name: "A", PricePerNight: 80, Rating: 4, Type: "hotel"}},
			"LIS": {{Name: "B", PricePerNight: 40, Rating: 4, Type: "hotel"}},
			"FCO": {{Name: "C", PricePerNight: 90, Rating: 4, Type: "hotel"}},
		},
	}

	engine := newTestEngine(flights, lodgings, search.Options{})
	result, err := engine.Search(context.Background(), search.Request{
		Origin:       "YUL",
		Budget:       1500,
		Period:       "October 2026",
		Nights:       7,
		Filters:      types.DefaultFilters(),
		Destinations: []string{"BCN", "LIS", "FCO"},
		Limit:        2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Packages) != 2 {
		t.Fatalf("expected 2 packages after truncation, got %d", len(result.Packages))
	}
	// LIS leaves the most budget (450 + 280 = 730 spent).
	if result.Packages[0].Code != "LIS" {
		t.Errorf("expected LIS ranked first, got %s", result.Packages[0].Code)
	}
	if result.PackagesAssembled != 3 {
		t.Errorf("expected 3 assembled before truncation, got %d", result.PackagesAssembled)
	}
}

func TestEngine_AssemblyCapBoundsLodgingLookups(t *testing.T) {
	// Far more survivors than the cap: only the cheapest MaxPackages
	// destinations reach the lodging stage.
	var lookups int64
	lodgings := &countingLodgingProvider{count: &lookups}

	flights := &mockFlightProvider{
		quote: func(_, destination string, _ time.Time) (*providers.FlightQuote, error) {
			return &providers.FlightQuote{Destination: destination, Price: 300}, nil
		},
	}

	engine := newTestEngine(flights, lodgings, search.Options{MaxPackages: 5})
	result, err := engine.Search(context.Background(), search.Request{
		Origin:  "YUL",
		Budget:  1500,
		Period:  "October 2026",
		Nights:  7,
		Filters: types.DefaultFilters(),
		// empty Destinations = whole catalog (43 candidates)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lookups != 5 {
		t.Errorf("expected 5 lodging lookups, got %d", lookups)
	}
	if len(result.Packages) != 5 {
		t.Errorf("expected 5 packages, got %d", len(result.Packages))
	}
}
