package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carlsburger/GastroCore-sub003/internal/api"
	"github.com/carlsburger/GastroCore-sub003/internal/availability"
	"github.com/carlsburger/GastroCore-sub003/internal/calendar"
	"github.com/carlsburger/GastroCore-sub003/internal/config"
	"github.com/carlsburger/GastroCore-sub003/internal/export"
	"github.com/carlsburger/GastroCore-sub003/internal/gastroapi"
	"github.com/carlsburger/GastroCore-sub003/internal/metrics"
	"github.com/carlsburger/GastroCore-sub003/internal/occupancy"
	"github.com/carlsburger/GastroCore-sub003/internal/prefs"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("CALENDARD_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Backend.BearerToken == "" {
		logger.Warn().Msg("backend.bearer_token is empty; backend calls will fail until it is set")
	}

	store, err := prefs.NewStore(cfg.Preferences.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open preference store error")
	}
	defer store.Close()

	client := gastroapi.NewClient(cfg.Backend.BaseURL, cfg.Backend.BearerToken)
	client.SetTimeout(cfg.BackendTimeout())
	if cfg.Backend.RequestsPerSecond > 0 {
		client.UseRateLimit(cfg.Backend.RequestsPerSecond, cfg.Backend.Burst)
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.Backend.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.CacheTTL())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aggregator := availability.NewAggregator(client, &logger)
	controller, err := calendar.NewController(ctx, aggregator, store, prefs.DefaultProfile, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create calendar controller error")
	}
	if err := controller.Refresh(ctx); err != nil {
		logger.Error().Err(err).Msg("initial calendar refresh failed")
	}

	printer := &occupancy.CommandPrinter{Command: cfg.Print.Command, Log: &logger}
	projector := occupancy.NewProjector(client, printer, cfg.Print.OutputDir, cfg.PrintSettleDelay(), &logger)

	// Initial load + hot reload of the badge keyword lists.
	if err := config.WatchIndicators(ctx, cfg.Print.IndicatorsPath, 30*time.Second, func(updated *config.IndicatorsConfig) {
		if updated == nil {
			return
		}
		projector.SetIndicators(updated)
		logger.Info().Time("reloaded_at", time.Now()).Msg("indicator config reloaded")
	}); err != nil {
		logger.Error().Err(err).Msg("indicator watch failed; using built-in keywords")
	}

	exporter := export.NewExporter(client, cfg.Export.OutputDir, &logger)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, store, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := api.NewHTTPServer(cfg.Server.Port, cfg.Server.APIKey, controller, projector, exporter, &logger)

	logger.Info().Msg("calendard started")
	if err := srv.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("API server error")
	}
}

func startHealthServer(ctx context.Context, port int, store *prefs.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := store.Ping(ctxPing); err != nil {
			http.Error(w, "preferences db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
