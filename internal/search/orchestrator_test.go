package search_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/travel2go/engine/internal/destinations"
	"github.com/travel2go/engine/internal/providers"
	"github.com/travel2go/engine/internal/search"
	"github.com/travel2go/engine/internal/search/types"
)

func catalogDests(t *testing.T, codes ...string) []destinations.Destination {
	t.Helper()
	catalog := destinations.Default()

	dests := make([]destinations.Destination, 0, len(codes))
	for _, code := range codes {
		d, ok := catalog.Lookup(code)
		if !ok {
			t.Fatalf("unknown catalog code %s", code)
		}
		dests = append(dests, d)
	}
	return dests
}

func newTestOrchestrator(flights providers.FlightProvider, limit int) *search.Orchestrator {
	prober := search.NewProber(flights, time.Second, testMetrics(), testLogger())
	return search.NewOrchestrator(prober, limit, testLogger())
}

func TestOrchestrator_SortsByPriceThenCode(t *testing.T) {
	flights := flightsByDestination(map[string]providers.FlightQuote{
		"CDG": {Price: 900},
		"BCN": {Price: 500},
		"LIS": {Price: 500}, // price tie with BCN, code decides
		"FCO": {Price: 700},
	})

	o := newTestOrchestrator(flights, 4)
	options := o.Search(context.Background(), "YUL", 1000, testDates(1),
		catalogDests(t, "CDG", "LIS", "FCO", "BCN"), types.DefaultFilters())

	if len(options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(options))
	}

	wantOrder := []string{"BCN", "LIS", "FCO", "CDG"}
	for i, want := range wantOrder {
		if options[i].Dest.Code != want {
			t.Errorf("position %d = %s, want %s", i, options[i].Dest.Code, want)
		}
	}
}

func TestOrchestrator_FailureIsolation(t *testing.T) {
	// CDG always errors, LIS has no fare; BCN must still survive.
	flights := &mockFlightProvider{
		quote: func(_, destination string, _ time.Time) (*providers.FlightQuote, error) {
			switch destination {
			case "BCN":
				return &providers.FlightQuote{Destination: "BCN", Price: 480}, nil
			case "CDG":
				return nil, errors.New("upstream outage")
			default:
				return nil, nil
			}
		},
	}

	o := newTestOrchestrator(flights, 3)
	options := o.Search(context.Background(), "YUL", 1000, testDates(3),
		catalogDests(t, "BCN", "CDG", "LIS"), types.DefaultFilters())

	if len(options) != 1 {
		t.Fatalf("expected 1 surviving option, got %d", len(options))
	}
	if options[0].Dest.Code != "BCN" {
		t.Errorf("expected BCN, got %s", options[0].Dest.Code)
	}
}

func TestOrchestrator_SlowDestinationDropsSilently(t *testing.T) {
	flights := &mockFlightProvider{
		delay: 500 * time.Millisecond,
		quote: func(_, destination string, _ time.Time) (*providers.FlightQuote, error) {
			return &providers.FlightQuote{Destination: destination, Price: 450}, nil
		},
	}

	prober := search.NewProber(flights, 20*time.Millisecond, testMetrics(), testLogger())
	o := search.NewOrchestrator(prober, 2, testLogger())

	options := o.Search(context.Background(), "YUL", 1000, testDates(2),
		catalogDests(t, "BCN"), types.DefaultFilters())
	if len(options) != 0 {
		t.Errorf("expected no options when every probe times out, got %d", len(options))
	}
}

func TestOrchestrator_BoundedConcurrency(t *testing.T) {
	const limit = 3

	var inflight, peak atomic.Int64
	flights := &mockFlightProvider{
		quote: func(_, destination string, _ time.Time) (*providers.FlightQuote, error) {
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			inflight.Add(-1)
			return &providers.FlightQuote{Destination: destination, Price: 400}, nil
		},
	}

	codes := []string{"BCN", "LIS", "MAD", "FCO", "CDG", "LHR", "DUB", "AMS", "BER", "PRG"}
	o := newTestOrchestrator(flights, limit)

	// One date per destination so in-flight probes equal in-flight destinations.
	options := o.Search(context.Background(), "YUL", 1000, testDates(1),
		catalogDests(t, codes...), types.DefaultFilters())

	if len(options) != len(codes) {
		t.Fatalf("expected %d options, got %d", len(codes), len(options))
	}
	if got := peak.Load(); got > limit {
		t.Errorf("peak concurrency %d exceeded limit %d", got, limit)
	}
}
