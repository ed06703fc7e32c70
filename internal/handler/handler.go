package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/travel2go/engine/internal/middleware"
	"github.com/travel2go/engine/internal/obs"
	"github.com/travel2go/engine/internal/search"
	"github.com/travel2go/engine/internal/search/cache"
	"github.com/travel2go/engine/internal/search/period"
	"github.com/travel2go/engine/internal/search/ratelimit"
	"github.com/travel2go/engine/internal/search/types"
)

// Searcher runs one package search. Implemented by *search.Engine.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*types.Result, error)
}

// Handler handles HTTP requests.
type Handler struct {
	engine      Searcher
	cache       *cache.Cache
	rateLimiter *ratelimit.Limiter
	metrics     *obs.Metrics
	logger      *slog.Logger
}

// New creates a new Handler.
func New(
	engine Searcher,
	searchCache *cache.Cache,
	rateLimiter *ratelimit.Limiter,
	metrics *obs.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		engine:      engine,
		cache:       searchCache,
		rateLimiter: rateLimiter,
		metrics:     metrics,
		logger:      logger,
	}
}

// SearchRequest is the inbound JSON body of POST /search/packages.
type SearchRequest struct {
	Origin       string         `json:"origin"`
	Budget       float64        `json:"budget"`
	Period       string         `json:"period"`
	Nights       int            `json:"nights"`
	Filters      *types.Filters `json:"filters,omitempty"`
	Destinations []string       `json:"destinations,omitempty"`
	Limit        int            `json:"limit,omitempty"`
}

// SearchResponse represents the complete API response.
type SearchResponse struct {
	Search   SearchInfo            `json:"search"`
	Stats    SearchStats           `json:"stats"`
	Packages []types.TravelPackage `json:"packages"`
}

// SearchInfo echoes the search parameters back.
type SearchInfo struct {
	Origin string  `json:"origin"`
	Budget float64 `json:"budget"`
	Period string  `json:"period"`
	Nights int     `json:"nights"`
}

// SearchStats contains search statistics.
type SearchStats struct {
	DestinationsProbed int    `json:"destinations_probed"`
	FlightsFound       int    `json:"flights_found"`
	PackagesAssembled  int    `json:"packages_assembled"`
	Cache              string `json:"cache"`
	DurationMs         int64  `json:"duration_ms"`
}

// SearchPackages handles POST /search/packages requests.
func (h *Handler) SearchPackages(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	h.metrics.IncRequests()
	requestID := middleware.RequestID(r.Context())

	ip := ExtractIP(r)
	if !h.rateLimiter.Allow(ip) {
		h.logger.Warn("rate limit exceeded", "request_id", requestID, "ip", ip)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	req, err := parseSearchRequest(r)
	if err != nil {
		h.logger.Debug("invalid request", "request_id", requestID, "error", err, "ip", ip)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := h.cache.Key(*req)
	result, cacheHit, err := h.cache.GetOrFetch(r.Context(), key, func() (*types.Result, error) {
		return h.engine.Search(r.Context(), *req)
	})

	if err != nil {
		// Only malformed input crosses the engine boundary; everything
		// else degrades to a smaller result set.
		if errors.Is(err, period.ErrInvalidPeriod) ||
			errors.Is(err, period.ErrInvalidNights) ||
			errors.Is(err, search.ErrInvalidBudget) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("search failed",
			"request_id", requestID,
			"error", err,
			"origin", req.Origin,
			"period", req.Period,
			"ip", ip,
		)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.IncCacheHits()
	}

	packages := result.Packages
	if packages == nil {
		packages = []types.TravelPackage{}
	}

	response := SearchResponse{
		Search: SearchInfo{
			Origin: req.Origin,
			Budget: req.Budget,
			Period: req.Period,
			Nights: req.Nights,
		},
		Stats: SearchStats{
			DestinationsProbed: result.DestinationsProbed,
			FlightsFound:       result.FlightsFound,
			PackagesAssembled:  result.PackagesAssembled,
			Cache:              cacheStatus,
			DurationMs:         time.Since(startTime).Milliseconds(),
		},
		Packages: packages,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Can't change status after WriteHeader, just log
		h.logger.Error("failed to encode response", "error", err)
	}
}

// Info handles GET / requests.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"service": "Travel2Go API",
		"version": "3.0.0",
		"mode":    "complete_search_with_filters",
		"status":  "running",
	})
}

// parseSearchRequest decodes and validates the request body. Budget, nights
// and period validity are re-checked by the engine; the handler rejects what
// it can before a search starts.
func parseSearchRequest(r *http.Request) (*search.Request, error) {
	// Pre-seed the filters so fields omitted from a partial filters object
	// keep their unconstrained defaults.
	defaults := types.DefaultFilters()
	body := SearchRequest{Filters: &defaults}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	origin := strings.ToUpper(strings.TrimSpace(body.Origin))
	if origin == "" {
		return nil, fmt.Errorf("origin is required")
	}
	if body.Budget <= 0 {
		return nil, search.ErrInvalidBudget
	}
	if strings.TrimSpace(body.Period) == "" {
		return nil, period.ErrInvalidPeriod
	}
	if body.Nights < 1 {
		return nil, period.ErrInvalidNights
	}

	filters := types.DefaultFilters()
	if body.Filters != nil {
		filters = *body.Filters
		if filters.LodgingType == "" {
			filters.LodgingType = "all"
		}
	}

	return &search.Request{
		Origin:       origin,
		Budget:       body.Budget,
		Period:       strings.TrimSpace(body.Period),
		Nights:       body.Nights,
		Filters:      filters,
		Destinations: body.Destinations,
		Limit:        body.Limit,
	}, nil
}

// ExtractIP extracts the client IP from the request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
