package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/carta/internal/config"
	"github.com/JonMunkholm/carta/internal/core"
	"github.com/JonMunkholm/carta/internal/logging"
	"github.com/JonMunkholm/carta/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"dataset", cfg.Dataset.Path,
		"cache_window", cfg.Dataset.CacheWindow,
		"refresh_interval", cfg.Dataset.RefreshInterval,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"require_api_key", cfg.Security.RequireAPIKey,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	cache := core.NewCache(core.NewFileLoader(cfg.Dataset.Path), core.CacheConfig{
		Window:          cfg.Dataset.CacheWindow,
		RequiredColumns: cfg.Dataset.RequiredColumns,
		ServeStale:      cfg.Dataset.ServeStale,
		Logger:          logger,
	})
	service := core.NewService(cache)

	// A missing or broken dataset at startup is not fatal: requests report
	// the error until the file is fixed.
	if cfg.Dataset.WarmOnStart {
		if err := service.Warm(context.Background()); err != nil {
			slog.Warn("warm load failed, starting anyway", "error", err)
		}
	}

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartRefreshScheduler(jobCtx, cfg.Dataset.RefreshInterval)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
