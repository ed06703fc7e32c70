package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"time"
)

// lodgingQuote mirrors the wire shape the engine's HTTP lodging provider expects.
type lodgingQuote struct {
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
	Rating        float64 `json:"rating"`
	Type          string  `json:"type"`
	BookingURL    string  `json:"booking_url"`
}

// LodgingQuoteServer serves lodging quotes derived from a small fixed
// inventory, filtered by the query and sorted best first.
type LodgingQuoteServer struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewLodgingQuoteServer creates a LodgingQuoteServer.
func NewLodgingQuoteServer(logger *slog.Logger) *LodgingQuoteServer {
	return &LodgingQuoteServer{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

type stay struct {
	name   string
	price  float64
	rating float64
	kind   string
}

var stays = []stay{
	{"Grand Central Hotel", 110, 4.3, "hotel"},
	{"Old Town Hotel", 85, 4.0, "hotel"},
	{"Riverside Hostel", 32, 3.8, "hostel"},
	{"Market Square Hostel", 28, 3.6, "hostel"},
	{"Skyline Apartment", 95, 4.5, "apartment"},
	{"Harbour View Apartment", 120, 4.6, "apartment"},
}

// Quote handles GET /lodgings/quote with destination, nights, nightly_budget,
// min_rating and type query parameters.
func (s *LodgingQuoteServer) Quote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	destination := query.Get("destination")
	if destination == "" {
		http.Error(w, "destination is required", http.StatusBadRequest)
		return
	}

	nightlyBudget, _ := strconv.ParseFloat(query.Get("nightly_budget"), 64)
	minRating, _ := strconv.ParseFloat(query.Get("min_rating"), 64)
	lodgingType := query.Get("type")

	// Simulate random latency (50ms to 250ms)
	time.Sleep(time.Duration(50+s.rng.Intn(200)) * time.Millisecond)

	quotes := make([]lodgingQuote, 0, len(stays))
	for _, st := range stays {
		if nightlyBudget > 0 && st.price > nightlyBudget {
			continue
		}
		if st.rating < minRating {
			continue
		}
		if lodgingType != "" && lodgingType != "all" && st.kind != lodgingType {
			continue
		}
		quotes = append(quotes, lodgingQuote{
			Name:          destination + " " + st.name,
			PricePerNight: st.price,
			Rating:        st.rating,
			Type:          st.kind,
			BookingURL:    "https://www.booking.com/searchresults.html?ss=" + destination,
		})
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Rating/quotes[i].PricePerNight > quotes[j].Rating/quotes[j].PricePerNight
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(quotes); err != nil {
		s.logger.Error("failed to encode lodging quotes", "error", err)
	}
}
