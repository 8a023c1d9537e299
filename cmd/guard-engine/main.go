package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pricewatch/pricewatch-guard/internal/api"
	"github.com/pricewatch/pricewatch-guard/internal/cache"
	"github.com/pricewatch/pricewatch-guard/internal/catalog"
	"github.com/pricewatch/pricewatch-guard/internal/config"
	"github.com/pricewatch/pricewatch-guard/internal/metrics"
	"github.com/pricewatch/pricewatch-guard/internal/monitor"
	"github.com/pricewatch/pricewatch-guard/internal/repo"
	"github.com/pricewatch/pricewatch-guard/internal/services"
	"github.com/pricewatch/pricewatch-guard/internal/store"
	"github.com/pricewatch/pricewatch-guard/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting guard engine",
		slog.String("addr", cfg.Server.Addr),
		slog.String("metrics_addr", cfg.Server.MetricsAddr))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("metrics registration failed", slog.Any("error", err))
		os.Exit(1)
	}

	cacheProvider := buildCache(cfg.Cache, logger)
	defer cacheProvider.Close()

	settings := buildStore(cfg.Store, logger)
	defer settings.Close()

	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		logger.Error("catalog load failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("catalog ready", slog.Int("solutions", cat.Len()))

	fetcher := repo.NewPageFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent, cfg.Fetch.MaxRedirects, cfg.Fetch.MaxBodyBytes)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := services.New(ctx, services.Options{
		Logger:  logger,
		Catalog: cat,
		Fetcher: fetcher,
		Cache:   cacheProvider,
		Store:   settings,
		RetryCfg: monitor.Config{
			MaxAttempts:        cfg.Retry.MaxAttempts,
			BaseDelay:          cfg.Retry.BaseDelay,
			PlatformBaseDelays: cfg.Retry.PlatformBaseDelays,
			MaxJitter:          cfg.Retry.MaxJitter,
			NetworkRetryDelay:  cfg.Retry.NetworkRetryDelay,
			AttemptTimeout:     cfg.Retry.AttemptTimeout,
		},
	})
	if err != nil {
		logger.Error("service init failed", slog.Any("error", err))
		os.Exit(1)
	}

	server := api.NewServer(logger, svc, cfg.Server.Addr)

	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() { errCh <- server.Start() }()
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", slog.Any("error", err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown incomplete", slog.Any("error", err))
	}
	logger.Info("guard engine stopped")
}

func buildCache(cfg config.CacheConfig, logger *slog.Logger) cache.Provider {
	if !cfg.Enabled {
		return cache.NoopProvider{}
	}
	provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		logger.Warn("cache disabled", slog.Any("error", err))
		return cache.NoopProvider{}
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := provider.Ping(pingCtx); err != nil {
		logger.Warn("cache unreachable, continuing without it", slog.Any("error", err))
	}
	return provider
}

func buildStore(cfg config.StoreConfig, logger *slog.Logger) store.Store {
	if !cfg.Enabled {
		return store.Noop{}
	}
	s, err := store.Open(cfg.Path)
	if err != nil {
		logger.Warn("settings store unavailable, config changes will not persist", slog.Any("error", err))
		return store.Noop{}
	}
	return s
}
