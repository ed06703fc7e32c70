package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/travel2go/engine/internal/obs"
	"github.com/travel2go/engine/internal/providers"
	"github.com/travel2go/engine/internal/search/types"
)

// Prober reduces one destination to its single best flight quote by probing
// every sampled date concurrently.
type Prober struct {
	flights providers.FlightProvider
	timeout time.Duration // per probe call
	metrics *obs.Metrics
	logger  *slog.Logger
}

// NewProber creates a Prober with the given per-call timeout.
func NewProber(flights providers.FlightProvider, timeout time.Duration, metrics *obs.Metrics, logger *slog.Logger) *Prober {
	return &Prober{
		flights: flights,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Probe issues one flight quote call per date in parallel, keeps the valid
// results and reduces them to the cheapest quote (ties: fewest stops, then
// shortest duration, unknown duration last). The reduced quote is then
// checked against the ceiling and filters. A nil return means the destination
// yields no acceptable flight, which is an expected outcome.
func (p *Prober) Probe(ctx context.Context, origin, destination string, dates []time.Time, ceiling float64, filters types.Filters) *providers.FlightQuote {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		quotes []providers.FlightQuote
	)

	for _, date := range dates {
		date := date
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			quote, err := p.flights.QuoteFlight(callCtx, origin, destination, date)
			if err != nil {
				// Timeouts and provider errors count as "no quote".
				p.metrics.IncProviderErrors()
				p.logger.Debug("flight probe failed",
					"origin", origin,
					"destination", destination,
					"date", date.Format("2006-01-02"),
					"error", err)
				return
			}
			if quote == nil || quote.Price <= 0 {
				return
			}

			mu.Lock()
			quotes = append(quotes, *quote)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(quotes) == 0 {
		return nil
	}

	best := quotes[0]
	for _, q := range quotes[1:] {
		if betterFlight(q, best) {
			best = q
		}
	}

	if !acceptFlight(best, ceiling, filters) {
		return nil
	}
	return &best
}

// betterFlight reports whether a beats b: lower price, then fewer stops, then
// shorter duration. An unknown duration (0) loses to any known one, so the
// reduction stays order-independent.
func betterFlight(a, b providers.FlightQuote) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	if a.Stops != b.Stops {
		return a.Stops < b.Stops
	}
	switch {
	case a.DurationHours == 0:
		return false
	case b.DurationHours == 0:
		return true
	default:
		return a.DurationHours < b.DurationHours
	}
}

// acceptFlight applies the ceiling and flight filters to the reduced quote.
// A quote of unknown duration passes duration filters.
func acceptFlight(q providers.FlightQuote, ceiling float64, filters types.Filters) bool {
	if q.Price > ceiling {
		return false
	}
	if filters.MaxStops >= 0 && q.Stops > filters.MaxStops {
		return false
	}
	if filters.MaxDurationHours > 0 && q.DurationHours > 0 && q.DurationHours > float64(filters.MaxDurationHours) {
		return false
	}
	if filters.BaggageRequired && !q.HasBaggage {
		return false
	}
	return true
}
