package obs

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks application metrics using atomic counters.
type Metrics struct {
	requests          atomic.Int64
	searches          atomic.Int64
	cacheHits         atomic.Int64
	providerErrors    atomic.Int64
	packagesAssembled atomic.Int64
	logger            *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger,
	}
}

// IncRequests increments the total HTTP request counter.
func (m *Metrics) IncRequests() {
	m.requests.Add(1)
}

// IncSearches increments the completed searches counter.
func (m *Metrics) IncSearches() {
	m.searches.Add(1)
}

// IncCacheHits increments the cache hits counter.
func (m *Metrics) IncCacheHits() {
	m.cacheHits.Add(1)
}

// IncProviderErrors increments the provider errors counter.
func (m *Metrics) IncProviderErrors() {
	m.providerErrors.Add(1)
}

// IncPackagesAssembled increments the assembled packages counter.
func (m *Metrics) IncPackagesAssembled() {
	m.packagesAssembled.Add(1)
}

// Snapshot returns current metric values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Requests:          m.requests.Load(),
		Searches:          m.searches.Load(),
		CacheHits:         m.cacheHits.Load(),
		ProviderErrors:    m.providerErrors.Load(),
		PackagesAssembled: m.packagesAssembled.Load(),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	Requests          int64
	Searches          int64
	CacheHits         int64
	ProviderErrors    int64
	PackagesAssembled int64
}

// HealthHandler returns a handler for /healthz requests.
func HealthHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health response", "error", err)
		}
	}
}

// MetricsHandler returns a handler for /metrics requests in Prometheus format.
func (m *Metrics) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := m.Snapshot()

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)

		counters := []struct {
			name  string
			help  string
			value int64
		}{
			{"requests_total", "Total number of HTTP requests", snapshot.Requests},
			{"searches_total", "Total number of completed package searches", snapshot.Searches},
			{"cache_hits_total", "Total number of cache hits", snapshot.CacheHits},
			{"provider_errors_total", "Total number of provider errors", snapshot.ProviderErrors},
			{"packages_assembled_total", "Total number of assembled travel packages", snapshot.PackagesAssembled},
		}

		for _, c := range counters {
			if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", c.name, c.help, c.name, c.name, c.value); err != nil {
				m.logger.Error("failed to write metrics", "error", err)
				return
			}
		}
	}
}
