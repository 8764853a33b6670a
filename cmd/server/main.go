package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/geopage/internal/config"
	"github.com/evyataryagoni/geopage/internal/handler"
	"github.com/evyataryagoni/geopage/internal/logger"
	"github.com/evyataryagoni/geopage/internal/lookup"
	"github.com/evyataryagoni/geopage/internal/metrics"
	"github.com/evyataryagoni/geopage/internal/router"
	"github.com/evyataryagoni/geopage/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	appConfig := config.Load()

	appLogger := setupLogger(appConfig)
	if err := appConfig.Validate(); err != nil {
		appLogger.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, metricsCollector := setupMetrics(appLogger)

	countryLookup := setupLookup(ctx, appConfig, appLogger)

	// Build application layers
	geoService := service.NewGeoService(countryLookup, appConfig.TargetCountry, appConfig.LookupTimeout, metricsCollector, appLogger)
	defer geoService.Close()

	pageHandler := handler.NewPageHandler(geoService, metricsCollector, appLogger)
	appRouter := router.SetupRouter(pageHandler, metricsCollector, appLogger)

	servers := []*http.Server{newServer(":"+appConfig.Port, appRouter)}
	if appConfig.AdminAddr != "" {
		servers = append(servers, newServer(appConfig.AdminAddr, router.SetupAdminRouter(registry)))
	}

	runServers(ctx, servers, appConfig.ShutdownTimeout, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: appConfig.LogPretty,
	})

	appLogger.Info().Msg("Starting geopage server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("target_country", appConfig.TargetCountry).
		Str("lookup_provider", appConfig.LookupProvider).
		Dur("lookup_timeout", appConfig.LookupTimeout).
		Bool("ipinfo_token_set", appConfig.IPInfoToken != "").
		Str("admin_addr", appConfig.AdminAddr).
		Msg("Configuration loaded")

	return appLogger
}

// setupMetrics creates a dedicated registry with the Go and process collectors
func setupMetrics(log *logger.Logger) (*prometheus.Registry, *metrics.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	metricsCollector := metrics.New(registry)
	log.Info().Msg("Metrics initialized")
	return registry, metricsCollector
}

// setupLookup initializes the geolocation backend selected by LOOKUP_PROVIDER.
// Supports ipinfo (default), csv, mysql, redis and mmdb.
func setupLookup(ctx context.Context, appConfig *config.Config, log *logger.Logger) lookup.Lookup {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	countryLookup, err := lookup.New(connectCtx, lookup.Config{
		Provider:      appConfig.LookupProvider,
		Timeout:       appConfig.LookupTimeout,
		IPInfoBaseURL: appConfig.IPInfoBaseURL,
		IPInfoToken:   appConfig.IPInfoToken,
		DatasetPath:   appConfig.DatasetPath,
		MySQLDSN:      appConfig.MySQLDSN,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
		MMDBPath:      appConfig.MMDBPath,
	})
	if err != nil {
		log.Fatal().Err(err).Str("provider", appConfig.LookupProvider).Msg("Failed to initialize lookup")
	}

	log.Info().Str("provider", countryLookup.Name()).Msg("Lookup initialized")

	if csvLookup, ok := countryLookup.(*lookup.CSVLookup); ok {
		log.Info().Int("entries", csvLookup.Len()).Str("path", appConfig.DatasetPath).Msg("CSV dataset loaded")
		if appConfig.DatasetWatch {
			watchDataset(ctx, csvLookup, log)
		}
	}

	return countryLookup
}

// watchDataset reloads the CSV dataset on change, logging each reload
func watchDataset(ctx context.Context, csvLookup *lookup.CSVLookup, log *logger.Logger) {
	err := csvLookup.Watch(ctx, func(err error) {
		if err != nil {
			log.Warn().Err(err).Msg("Dataset reload failed, keeping previous data")
			return
		}
		log.Info().Int("entries", csvLookup.Len()).Msg("Dataset reloaded")
	})
	if err != nil {
		log.Warn().Err(err).Msg("Dataset watch disabled")
	}
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// runServers starts every server and blocks until ctx is cancelled by a
// signal, then shuts them down within timeout
func runServers(ctx context.Context, servers []*http.Server, timeout time.Duration, log *logger.Logger) {
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info().Str("addr", srv.Addr).Msg("Server is running")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Str("addr", srv.Addr).Msg("Server failed")
			}
		}(srv)
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Str("addr", srv.Addr).Msg("Server forced to shutdown")
			os.Exit(1)
		}
	}

	log.Info().Msg("Server stopped")
}
