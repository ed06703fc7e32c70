package search

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/travel2go/engine/internal/destinations"
	"github.com/travel2go/engine/internal/providers"
	"github.com/travel2go/engine/internal/search/types"
)

// FlightOption is a surviving destination paired with its best flight quote.
type FlightOption struct {
	Dest  destinations.Destination
	Quote providers.FlightQuote
}

// Orchestrator fans the Prober out across the candidate destination set under
// a bounded-concurrency policy. Each Search call owns its own semaphore, so
// concurrent searches never share state.
type Orchestrator struct {
	prober *Prober
	limit  int
	logger *slog.Logger
}

// NewOrchestrator creates an Orchestrator probing at most limit destinations
// at a time.
func NewOrchestrator(prober *Prober, limit int, logger *slog.Logger) *Orchestrator {
	if limit < 1 {
		limit = 1
	}
	return &Orchestrator{
		prober: prober,
		limit:  limit,
		logger: logger,
	}
}

// Search probes every destination and returns the surviving flight options
// sorted by price ascending, equal prices by destination code. A destination
// that yields nothing is silently dropped; one destination's failure never
// affects the others.
func (o *Orchestrator) Search(ctx context.Context, origin string, ceiling float64, dates []time.Time, dests []destinations.Destination, filters types.Filters) []FlightOption {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		options []FlightOption
	)

	sem := make(chan struct{}, o.limit)

	for _, dest := range dests {
		dest := dest
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			quote := o.prober.Probe(ctx, origin, dest.Code, dates, ceiling, filters)
			if quote == nil {
				return
			}

			mu.Lock()
			options = append(options, FlightOption{Dest: dest, Quote: *quote})
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(options, func(i, j int) bool {
		if options[i].Quote.Price != options[j].Quote.Price {
			return options[i].Quote.Price < options[j].Quote.Price
		}
		return options[i].Dest.Code < options[j].Dest.Code
	})

	o.logger.Info("destination probing done",
		"origin", origin,
		"candidates", len(dests),
		"survived", len(options))

	return options
}
