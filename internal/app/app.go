package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/travel2go/engine/internal/config"
	"github.com/travel2go/engine/internal/destinations"
	"github.com/travel2go/engine/internal/handler"
	"github.com/travel2go/engine/internal/middleware"
	"github.com/travel2go/engine/internal/obs"
	"github.com/travel2go/engine/internal/providers"
	"github.com/travel2go/engine/internal/search"
	"github.com/travel2go/engine/internal/search/cache"
	"github.com/travel2go/engine/internal/search/ratelimit"
)

// Run initializes and runs the application.
func Run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	metrics := obs.NewMetrics(logger)

	catalog, err := loadCatalog(cfg, logger)
	if err != nil {
		return err
	}

	flights, closeFlights, err := buildFlightProvider(cfg)
	if err != nil {
		return err
	}
	defer closeFlights()

	lodgings, closeLodgings, err := buildLodgingProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLodgings()

	engine := search.NewEngine(flights, lodgings, catalog, search.Options{
		SampleDates:    cfg.SampleDates,
		MaxPackages:    cfg.MaxPackages,
		Concurrency:    cfg.Concurrency,
		SearchTimeout:  cfg.SearchTimeout,
		FlightTimeout:  cfg.FlightTimeout,
		LodgingTimeout: cfg.LodgingTimeout,
	}, metrics, logger)

	store, err := buildCacheStore(cfg)
	if err != nil {
		return err
	}
	searchCache := cache.New(store)
	defer func() { _ = searchCache.Close() }()

	limiter := ratelimit.New(cfg.RateLimit, cfg.RateLimitWindow)
	defer limiter.Close()

	h := handler.New(engine, searchCache, limiter, metrics, logger)
	router := handler.NewRouter(h, metrics, logger)
	wrappedHandler := middleware.Logging(logger)(router)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      wrappedHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.SearchTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			"addr", srv.Addr,
			"flight_provider", cfg.FlightProvider,
			"lodging_provider", cfg.LodgingProvider,
			"destinations", catalog.Len())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}

func loadCatalog(cfg *config.Config, logger *slog.Logger) (*destinations.Catalog, error) {
	if cfg.DestinationsFile == "" {
		return destinations.Default(), nil
	}

	catalog, err := destinations.LoadFile(cfg.DestinationsFile)
	if err != nil {
		return nil, fmt.Errorf("load destinations: %w", err)
	}
	logger.Info("loaded destination catalog", "file", cfg.DestinationsFile, "count", catalog.Len())
	return catalog, nil
}

func buildFlightProvider(cfg *config.Config) (providers.FlightProvider, func(), error) {
	switch cfg.FlightProvider {
	case "synthetic":
		return providers.NewSyntheticFlightProvider(), func() {}, nil
	case "http":
		return providers.NewHTTPFlightProvider("flights", cfg.FlightProviderURL, cfg.FlightTimeout), func() {}, nil
	case "kayak":
		p := providers.NewKayakFlightProvider(cfg.ChromeBin)
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown flight provider %q", cfg.FlightProvider)
	}
}

func buildLodgingProvider(cfg *config.Config, logger *slog.Logger) (providers.LodgingProvider, func(), error) {
	switch cfg.LodgingProvider {
	case "synthetic":
		return providers.NewSyntheticLodgingProvider(), func() {}, nil
	case "http":
		return providers.NewHTTPLodgingProvider("lodgings", cfg.LodgingProviderURL, cfg.LodgingTimeout), func() {}, nil
	case "booking":
		p := providers.NewBookingLodgingProvider(cfg.ChromeBin, logger)
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown lodging provider %q", cfg.LodgingProvider)
	}
}

func buildCacheStore(cfg *config.Config) (cache.Store, error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore(cfg.CacheTTL), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("connect cache store: %w", err)
	}
	return store, nil
}
