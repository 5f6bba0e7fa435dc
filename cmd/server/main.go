package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cbm-calculator/internal/application"
	"github.com/eugenenazirov/cbm-calculator/internal/cache"
	"github.com/eugenenazirov/cbm-calculator/internal/config"
	"github.com/eugenenazirov/cbm-calculator/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "cbm-server:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	overrides, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		return err
	}

	if err := app.Start(); err != nil {
		logger.Error("failed to start server", zap.Error(err))
		return err
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)

	logCacheStats(logger, app.CacheMetrics())
	return nil
}

// parseFlags maps command-line flags onto config overrides. Flags the user did
// not pass stay nil so lower-precedence sources apply.
func parseFlags(args []string) (*config.CLIOverrides, error) {
	var (
		overrides                                                 config.CLIOverrides
		port, pallets, logLevel                                   string
		rateLimitRPS                                              float64
		rateLimitBurst, cacheSize                                 int
		portSet, palletsSet, rpsSet, burstSet, cacheSet, levelSet bool
	)

	app := kingpin.New("cbm-server", "CBM & Pallet Calculator - shipment volume, pallet stacking and container fit over HTTP")
	app.Flag("config", "Path to YAML configuration file").StringVar(&overrides.ConfigFile)
	app.Flag("port", "HTTP port exposed by the service").IsSetByUser(&portSet).StringVar(&port)
	app.Flag("pallets", "Comma-separated pallet presets to offer (e.g. EUR1,GMA)").IsSetByUser(&palletsSet).StringVar(&pallets)
	app.Flag("rate-limit-rps", "Requests per second allowed (0 disables limiting)").IsSetByUser(&rpsSet).Float64Var(&rateLimitRPS)
	app.Flag("rate-limit-burst", "Burst capacity for the rate limiter (0 disables limiting)").IsSetByUser(&burstSet).IntVar(&rateLimitBurst)
	app.Flag("cache-size", "Number of calculation results to memoize (0 disables caching)").IsSetByUser(&cacheSet).IntVar(&cacheSize)
	app.Flag("log-level", "Log level").IsSetByUser(&levelSet).EnumVar(&logLevel, "debug", "info", "warn", "error")

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	if portSet {
		overrides.Port = &port
	}
	if palletsSet {
		overrides.PalletsStr = &pallets
	}
	if rpsSet {
		overrides.RateLimitRPS = &rateLimitRPS
	}
	if burstSet {
		overrides.RateLimitBurst = &rateLimitBurst
	}
	if cacheSet {
		overrides.CacheSize = &cacheSize
	}
	if levelSet {
		overrides.LogLevel = &logLevel
	}
	return &overrides, nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

func logCacheStats(logger *zap.Logger, stats cache.Metrics) {
	logger.Info("cache statistics",
		zap.Int64("hits", stats.Hits),
		zap.Int64("misses", stats.Misses),
		zap.Int64("evictions", stats.Evictions),
		zap.Int("size", stats.Size),
		zap.Int("capacity", stats.Capacity),
	)
}
