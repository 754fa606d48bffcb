package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/project-appraisal/internal/appraisal"
	"github.com/iwvelando/project-appraisal/internal/cache"
	"github.com/iwvelando/project-appraisal/internal/config"
	"github.com/iwvelando/project-appraisal/internal/extract"
	"github.com/iwvelando/project-appraisal/internal/server"
	"github.com/iwvelando/project-appraisal/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := config.NewLogger(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	app := cfg.Application()
	if err := app.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range app.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cache.NewStore(app.CacheOptions())
	if err != nil {
		logger.Fatal("failed to open cache",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if closer, ok := store.(io.Closer); ok {
		defer func() { _ = closer.Close() }()
	}
	if err := cache.Check(ctx, store, constants.CachePingTimeout); err != nil {
		logger.Warn("cache unreachable, continuing",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	extractOpts := extract.Options{
		Store:   store,
		TTL:     app.Cache.TTL,
		Timeout: app.AI.Timeout,
		Report:  app.ReportOptions(),
	}
	var provider extract.Provider
	if key := app.APIKey(); key != "" {
		gemini, err := extract.NewGeminiProvider(ctx, key, app.AI.Model)
		if err != nil {
			logger.Fatal("failed to create ai provider",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		provider = gemini
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := server.NewHandler(logger, cfg.UploadSizeBytes(), version, server.Dependencies{
		Memoizer:  cache.NewMemoizer(store, app.Cache.TTL, appraisal.NewEngine(logger), logger),
		Extractor: extract.NewService(provider, extractOpts, logger),
		Report:    app.ReportOptions(),
		Registry:  registry,
	})

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.Bool("aiAvailable", provider != nil),
			zap.String("cache", app.Cache.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	}
	logger.Info("server stopped",
		zap.String("op", "main"),
	)
}
