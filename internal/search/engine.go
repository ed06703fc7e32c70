// Package search implements the package-search core: date sampling,
// concurrent destination probing, budget allocation, package assembly and
// ranking. Partial results are the expected steady state; only malformed
// input ever surfaces as an error.
package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/travel2go/engine/internal/destinations"
	"github.com/travel2go/engine/internal/obs"
	"github.com/travel2go/engine/internal/providers"
	"github.com/travel2go/engine/internal/search/period"
	"github.com/travel2go/engine/internal/search/types"
)

// ErrInvalidBudget is returned when the traveler supplies a non-positive budget.
var ErrInvalidBudget = errors.New("budget must be positive")

// Options tunes the engine. Zero values fall back to the defaults below.
type Options struct {
	SampleDates    int           // flight probe dates per destination
	MaxPackages    int           // surviving destinations assembled at most
	Concurrency    int           // bound on simultaneous destination probes and lodging lookups
	SearchTimeout  time.Duration // global deadline for one search
	FlightTimeout  time.Duration // per flight probe call
	LodgingTimeout time.Duration // per lodging lookup call
}

func (o Options) withDefaults() Options {
	if o.SampleDates < 1 {
		o.SampleDates = 5
	}
	if o.MaxPackages < 1 {
		o.MaxPackages = 20
	}
	if o.Concurrency < 1 {
		o.Concurrency = 8
	}
	if o.SearchTimeout <= 0 {
		o.SearchTimeout = 90 * time.Second
	}
	if o.FlightTimeout <= 0 {
		o.FlightTimeout = 15 * time.Second
	}
	if o.LodgingTimeout <= 0 {
		o.LodgingTimeout = 20 * time.Second
	}
	return o
}

// Request is one traveler search.
type Request struct {
	Origin       string
	Budget       float64
	Period       string
	Nights       int
	Filters      types.Filters
	Destinations []string // candidate codes; empty means the whole catalog
	Limit        int      // max packages returned; <= 0 returns all
}

// Engine runs the full search pipeline.
type Engine struct {
	catalog      *destinations.Catalog
	orchestrator *Orchestrator
	assembler    *Assembler
	opts         Options
	metrics      *obs.Metrics
	logger       *slog.Logger
}

// NewEngine wires the pipeline around the two provider ports.
func NewEngine(flights providers.FlightProvider, lodgings providers.LodgingProvider, catalog *destinations.Catalog, opts Options, metrics *obs.Metrics, logger *slog.Logger) *Engine {
	opts = opts.withDefaults()

	prober := NewProber(flights, opts.FlightTimeout, metrics, logger)
	return &Engine{
		catalog:      catalog,
		orchestrator: NewOrchestrator(prober, opts.Concurrency, logger),
		assembler:    NewAssembler(lodgings, opts.LodgingTimeout, metrics, logger),
		opts:         opts,
		metrics:      metrics,
		logger:       logger,
	}
}

// Search validates the request and runs sampling, probing, assembly and
// ranking under a global deadline. Per-destination failures shrink the result
// set instead of failing the search; an empty package list is a valid result.
func (e *Engine) Search(ctx context.Context, req Request) (*types.Result, error) {
	if req.Budget <= 0 {
		return nil, ErrInvalidBudget
	}
	if req.Nights < 1 {
		return nil, period.ErrInvalidNights
	}

	p, err := period.Parse(req.Period)
	if err != nil {
		return nil, err
	}
	checkin, checkout, err := p.Window(req.Nights)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.opts.SearchTimeout)
	defer cancel()

	dates := p.Sample(e.opts.SampleDates)
	dests := e.resolveDestinations(req.Destinations)
	ceiling := FlightCeiling(req.Budget)

	options := e.orchestrator.Search(ctx, req.Origin, ceiling, dates, dests, req.Filters)
	flightsFound := len(options)

	// Assemble the cheapest survivors only; the cap bounds total lodging
	// call volume.
	if len(options) > e.opts.MaxPackages {
		options = options[:e.opts.MaxPackages]
	}

	packages := e.assembleAll(ctx, options, req.Budget, req.Nights, checkin, checkout, req.Filters)
	Rank(packages)

	assembled := len(packages)
	if req.Limit > 0 && len(packages) > req.Limit {
		packages = packages[:req.Limit]
	}

	e.metrics.IncSearches()
	e.logger.Info("search complete",
		"origin", req.Origin,
		"period", req.Period,
		"budget", req.Budget,
		"destinations", len(dests),
		"flights_found", flightsFound,
		"packages", assembled)

	return &types.Result{
		Packages:           packages,
		DestinationsProbed: len(dests),
		FlightsFound:       flightsFound,
		PackagesAssembled:  assembled,
	}, nil
}

// resolveDestinations maps candidate codes onto catalog entries. Unknown
// codes are skipped. An empty candidate set means the whole catalog.
func (e *Engine) resolveDestinations(codes []string) []destinations.Destination {
	if len(codes) == 0 {
		codes = e.catalog.Codes()
	}

	dests := make([]destinations.Destination, 0, len(codes))
	for _, code := range codes {
		if d, ok := e.catalog.Lookup(code); ok {
			dests = append(dests, d)
		}
	}
	return dests
}

// assembleAll runs the Assembler across the surviving flight options under
// the same bounded-concurrency discipline as destination probing.
func (e *Engine) assembleAll(ctx context.Context, options []FlightOption, budget float64, nights int, checkin, checkout time.Time, filters types.Filters) []types.TravelPackage {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		packages []types.TravelPackage
	)

	sem := make(chan struct{}, e.opts.Concurrency)

	for _, opt := range options {
		opt := opt
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			pkg := e.assembler.Assemble(ctx, opt, budget, nights, checkin, checkout, filters)
			if pkg == nil {
				return
			}
			e.metrics.IncPackagesAssembled()

			mu.Lock()
			packages = append(packages, *pkg)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return packages
}
