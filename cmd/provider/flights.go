package main

import (
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// flightQuote mirrors the wire shape the engine's HTTP flight provider expects.
type flightQuote struct {
	Destination   string  `json:"destination"`
	Price         float64 `json:"price"`
	Stops         int     `json:"stops"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	Carrier       string  `json:"carrier,omitempty"`
	HasBaggage    bool    `json:"has_baggage"`
	BookingURL    string  `json:"booking_url"`
}

// FlightQuoteServer serves deterministic flight quotes with simulated latency
// and a small failure rate.
type FlightQuoteServer struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewFlightQuoteServer creates a FlightQuoteServer.
func NewFlightQuoteServer(logger *slog.Logger) *FlightQuoteServer {
	return &FlightQuoteServer{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

var carriers = []string{"Air Transat", "Iberia", "KLM", "Lufthansa", "Air Canada"}

// Quote handles GET /flights/quote?origin=&destination=&date=.
func (s *FlightQuoteServer) Quote(w http.ResponseWriter, r *http.Request) {
	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")
	date := r.URL.Query().Get("date")

	if origin == "" || destination == "" || date == "" {
		http.Error(w, "origin, destination and date are required", http.StatusBadRequest)
		return
	}

	// Simulate random latency (50ms to 200ms)
	time.Sleep(time.Duration(50+s.rng.Intn(150)) * time.Millisecond)

	// Simulate 5% outage
	if s.rng.Float64() < 0.05 {
		http.Error(w, "provider unavailable", http.StatusServiceUnavailable)
		return
	}

	seed := hashKey(origin + "|" + destination + "|" + date)

	// Some probes legitimately have no fare.
	if seed%10 == 0 {
		http.NotFound(w, r)
		return
	}

	duration := 4 + float64(seed%90)/10
	quote := flightQuote{
		Destination:   destination,
		Price:         180 + float64(seed%130)*9,
		Stops:         int(seed % 3),
		DurationHours: duration,
		Carrier:       carriers[seed%uint64(len(carriers))],
		HasBaggage:    seed%4 != 0,
		BookingURL:    "https://www.kayak.com/flights/" + origin + "-" + destination + "/" + date,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(quote); err != nil {
		s.logger.Error("failed to encode flight quote", "error", err)
	}
}

func hashKey(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
