package search_test

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/travel2go/engine/internal/obs"
	"github.com/travel2go/engine/internal/providers"
)

// mockFlightProvider answers probes through a configurable quote function.
type mockFlightProvider struct {
	quote func(origin, destination string, date time.Time) (*providers.FlightQuote, error)
	delay time.Duration
}

func (m *mockFlightProvider) QuoteFlight(ctx context.Context, origin, destination string, date time.Time) (*providers.FlightQuote, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}
	return m.quote(origin, destination, date)
}

// flightsByDestination builds a provider returning the same quote for every
// date of a destination.
func flightsByDestination(quotes map[string]providers.FlightQuote) *mockFlightProvider {
	return &mockFlightProvider{
		quote: func(_, destination string, _ time.Time) (*providers.FlightQuote, error) {
			q, ok := quotes[destination]
			if !ok {
				return nil, nil
			}
			q.Destination = destination
			return &q, nil
		},
	}
}

// mockLodgingProvider serves a fixed per-destination inventory, honoring the
// query's nightly budget, rating and type constraints the way a real
// provider would.
type mockLodgingProvider struct {
	inventory map[string][]providers.LodgingQuote
	err       error
	delay     time.Duration
}

func (m *mockLodgingProvider) QuoteLodgings(ctx context.Context, q providers.StayQuery) ([]providers.LodgingQuote, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}
	if m.err != nil {
		return nil, m.err
	}

	var quotes []providers.LodgingQuote
	for _, quote := range m.inventory[q.Destination] {
		if quote.PricePerNight > q.NightlyBudget {
			continue
		}
		if quote.Rating < q.MinRating {
			continue
		}
		if q.LodgingType != "" && q.LodgingType != "all" && quote.Type != q.LodgingType {
			continue
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

// countingLodgingProvider tracks how many lookups reach the lodging port and
// always returns one affordable quote.
type countingLodgingProvider struct {
	count *int64
}

func (c *countingLodgingProvider) QuoteLodgings(_ context.Context, q providers.StayQuery) ([]providers.LodgingQuote, error) {
	atomic.AddInt64(c.count, 1)
	return []providers.LodgingQuote{
		{Name: q.Destination + " Hotel", PricePerNight: 50, Rating: 4, Type: "hotel"},
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func testMetrics() *obs.Metrics {
	return obs.NewMetrics(testLogger())
}

func testDates(n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = time.Date(2026, time.October, 1+i, 0, 0, 0, 0, time.UTC)
	}
	return dates
}
