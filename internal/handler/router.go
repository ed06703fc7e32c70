package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/travel2go/engine/internal/obs"
)

// NewRouter builds the HTTP routes around the handler.
func NewRouter(h *Handler, metrics *obs.Metrics, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/search/packages", h.SearchPackages).Methods(http.MethodPost)
	r.HandleFunc("/healthz", obs.HealthHandler(logger)).Methods(http.MethodGet)
	r.HandleFunc("/metrics", metrics.MetricsHandler()).Methods(http.MethodGet)
	r.HandleFunc("/", h.Info).Methods(http.MethodGet)

	return r
}
