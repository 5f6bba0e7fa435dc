package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/cbm-calculator/internal/api"
	"github.com/eugenenazirov/cbm-calculator/internal/cache"
	"github.com/eugenenazirov/cbm-calculator/internal/calculator"
	"github.com/eugenenazirov/cbm-calculator/internal/config"
	"github.com/eugenenazirov/cbm-calculator/internal/metrics"
	"github.com/eugenenazirov/cbm-calculator/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage    storage.Storage
	calculator calculator.Calculator
	cache      *cache.LRU
	handler    *api.Handler
	router     http.Handler
	logger     *zap.Logger
	server     *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	store := storage.NewMemoryStorage()
	if err := store.SetPallets(cfg.InitialPallets); err != nil {
		return nil, fmt.Errorf("failed to apply initial pallet presets: %w", err)
	}

	calc := calculator.New()
	results := cache.New(cfg.CacheSize)
	handler := api.NewHandler(calc, store, api.WithCache(results))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithMetrics(cfg.EnableMetrics),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	var metricsHandler http.Handler
	if cfg.EnableMetrics {
		metricsHandler = metrics.Handler()
	}

	logger.Info("application initialized",
		zap.Int("pallet_presets", len(cfg.InitialPallets)),
		zap.Int("cache_size", cfg.CacheSize),
		zap.Bool("metrics", cfg.EnableMetrics),
	)

	return &App{
		storage:    store,
		calculator: calc,
		cache:      results,
		handler:    handler,
		router:     apiRouter,
		logger:     logger,
		server:     NewServer(cfg, BuildRootHandler(apiRouter, metricsHandler)),
	}, nil
}

type indexResponse struct {
	Service   string   `json:"service"`
	Endpoints []string `json:"endpoints"`
}

var endpoints = []string{
	"GET /api/health",
	"GET /api/pallets",
	"PUT /api/pallets",
	"GET /api/containers",
	"POST /api/calculate",
}

// BuildRootHandler mounts the API under /api/ and, when metricsHandler is not nil,
// the Prometheus scrape endpoint at /metrics. The root path describes the service.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)

	index := indexResponse{Service: "cbm-calculator", Endpoints: endpoints}
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
		index.Endpoints = append(append([]string{}, endpoints...), "GET /metrics")
	}

	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(index)
	}))

	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// CacheMetrics reports the result cache counters; zero when caching is disabled.
func (a *App) CacheMetrics() cache.Metrics {
	return a.cache.Metrics()
}
