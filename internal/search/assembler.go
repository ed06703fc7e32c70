package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/travel2go/engine/internal/obs"
	"github.com/travel2go/engine/internal/providers"
	"github.com/travel2go/engine/internal/search/types"
)

// Assembler composes a flight option with a lodging quote into a priced
// package.
type Assembler struct {
	lodgings providers.LodgingProvider
	timeout  time.Duration // per lodging call
	metrics  *obs.Metrics
	logger   *slog.Logger
}

// NewAssembler creates an Assembler with the given per-call timeout.
func NewAssembler(lodgings providers.LodgingProvider, timeout time.Duration, metrics *obs.Metrics, logger *slog.Logger) *Assembler {
	return &Assembler{
		lodgings: lodgings,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger,
	}
}

// Assemble allocates the residual budget to lodging, queries the lodging
// provider and composes the package. A nil return means the destination
// cannot be assembled within budget: negative residual, lodging lookup
// failure and an empty quote list all drop the destination silently.
func (a *Assembler) Assemble(ctx context.Context, opt FlightOption, totalBudget float64, nights int, checkin, checkout time.Time, filters types.Filters) *types.TravelPackage {
	nightly, err := NightlyCeiling(totalBudget, opt.Quote.Price, nights)
	if err != nil {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	quotes, err := a.lodgings.QuoteLodgings(callCtx, providers.StayQuery{
		Destination:   opt.Dest.Code,
		Checkin:       checkin,
		Checkout:      checkout,
		Nights:        nights,
		NightlyBudget: nightly,
		MinRating:     filters.MinRating,
		LodgingType:   filters.LodgingType,
	})
	if err != nil {
		a.metrics.IncProviderErrors()
		a.logger.Debug("lodging lookup failed",
			"destination", opt.Dest.Code,
			"nightly_budget", nightly,
			"error", err)
		return nil
	}
	if len(quotes) == 0 {
		return nil
	}

	// The provider's ranking is authoritative: take its best quote.
	best := quotes[0]

	lodgingTotal := best.PricePerNight * float64(nights)
	totalCost := opt.Quote.Price + lodgingTotal
	remaining := totalBudget - totalCost

	return &types.TravelPackage{
		City:    opt.Dest.City,
		Country: opt.Dest.Country,
		Code:    opt.Dest.Code,
		Flag:    opt.Dest.Flag,
		Flight: types.Flight{
			Price:         opt.Quote.Price,
			DurationHours: opt.Quote.DurationHours,
			Stops:         opt.Quote.Stops,
			Carrier:       opt.Quote.Carrier,
			HasBaggage:    opt.Quote.HasBaggage,
			BookingURL:    opt.Quote.BookingURL,
		},
		Lodging: types.Lodging{
			Name:          best.Name,
			PricePerNight: best.PricePerNight,
			TotalPrice:    lodgingTotal,
			Rating:        best.Rating,
			Type:          best.Type,
			BookingURL:    best.BookingURL,
		},
		TotalCost:       totalCost,
		BudgetRemaining: remaining,
		SavingsPct:      remaining / totalBudget * 100,
	}
}
