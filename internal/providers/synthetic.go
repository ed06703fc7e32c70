package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"
)

// SyntheticFlightProvider serves deterministic sample flight quotes derived
// from the probe parameters. Identical probes always return identical quotes,
// which keeps searches reproducible without any live data source.
type SyntheticFlightProvider struct{}

// NewSyntheticFlightProvider creates a SyntheticFlightProvider.
func NewSyntheticFlightProvider() *SyntheticFlightProvider {
	return &SyntheticFlightProvider{}
}

// Approximate great-circle distances in km for duration estimates.
// Unlisted routes fall back to a medium-haul default.
var routeDistances = map[string]float64{
	"YUL-BCN": 6000, "YUL-LIS": 5500, "YUL-CDG": 5500,
	"YUL-FCO": 6500, "YUL-LHR": 5200, "YUL-AMS": 5700,
	"YUL-MEX": 3500, "YUL-BOG": 4500, "YUL-LIM": 6000,
	"YUL-NRT": 10500, "YUL-BKK": 13000, "YUL-SIN": 15000,
}

const defaultRouteDistance = 6000

// estimateDuration converts a route distance into flight hours at an average
// cruise speed of 800 km/h.
func estimateDuration(origin, destination string) float64 {
	distance, ok := routeDistances[origin+"-"+destination]
	if !ok {
		distance = defaultRouteDistance
	}
	return float64(int(distance/800*10)) / 10
}

// QuoteFlight derives a quote from a hash of the probe parameters. Roughly
// one probe in ten yields no quote, mirroring real fare gaps.
func (p *SyntheticFlightProvider) QuoteFlight(ctx context.Context, origin, destination string, date time.Time) (*FlightQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := hashProbe(origin, destination, date.Format("2006-01-02"))
	if seed%10 == 0 {
		return nil, nil // no fare for this date
	}

	duration := estimateDuration(origin, destination)

	// Longer routes cost more; the hash spreads prices within the band.
	base := 120 + duration*28
	price := base + float64(seed%40)*7

	return &FlightQuote{
		Destination:   destination,
		Price:         price,
		Stops:         int(seed % 3),
		DurationHours: duration,
		HasBaggage:    seed%4 != 0,
		BookingURL:    fmt.Sprintf("https://www.kayak.com/flights/%s-%s/%s", origin, destination, date.Format("2006-01-02")),
	}, nil
}

// SyntheticLodgingProvider serves a fixed sample inventory per city, filtered
// by the stay query and ordered best quality-per-price first.
type SyntheticLodgingProvider struct{}

// NewSyntheticLodgingProvider creates a SyntheticLodgingProvider.
func NewSyntheticLodgingProvider() *SyntheticLodgingProvider {
	return &SyntheticLodgingProvider{}
}

type syntheticStay struct {
	name   string
	price  float64
	rating float64
	kind   string
}

var syntheticInventory = map[string][]syntheticStay{
	"BCN": {
		{"Hotel Catalonia", 85, 4.2, "hotel"},
		{"Barcelona Hostel", 35, 3.8, "hostel"},
		{"Gothic Quarter Apartment", 95, 4.5, "apartment"},
	},
	"LIS": {
		{"Lisbon Central Hotel", 70, 4.0, "hotel"},
		{"Alfama Hostel", 30, 3.9, "hostel"},
	},
	"CDG": {
		{"Paris Marais Hotel", 120, 4.3, "hotel"},
		{"Montmartre Apartment", 110, 4.4, "apartment"},
	},
	"FCO": {
		{"Roma Centro Hotel", 95, 4.1, "hotel"},
	},
	"MEX": {
		{"Mexico City Hotel", 60, 4.2, "hotel"},
	},
}

// QuoteLodgings filters the sample inventory by the query's ceiling, rating
// and type constraints and returns the survivors best first.
func (p *SyntheticLodgingProvider) QuoteLodgings(ctx context.Context, q StayQuery) ([]LodgingQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stays, ok := syntheticInventory[q.Destination]
	if !ok {
		stays = []syntheticStay{{q.Destination + " City Hotel", 80, 4.0, "hotel"}}
	}

	quotes := make([]LodgingQuote, 0, len(stays))
	for _, s := range stays {
		if s.price > q.NightlyBudget {
			continue
		}
		if s.rating < q.MinRating {
			continue
		}
		if q.LodgingType != "" && q.LodgingType != "all" && s.kind != q.LodgingType {
			continue
		}
		quotes = append(quotes, LodgingQuote{
			Name:          s.name,
			PricePerNight: s.price,
			Rating:        s.rating,
			Type:          s.kind,
			BookingURL:    "https://www.booking.com/searchresults.html?ss=" + q.Destination + "&aid=travel2go",
		})
	}

	// Best quality per price first.
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Rating/quotes[i].PricePerNight > quotes[j].Rating/quotes[j].PricePerNight
	})

	return quotes, nil
}

func hashProbe(parts ...string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(parts, "|")))
	return h.Sum64()
}
