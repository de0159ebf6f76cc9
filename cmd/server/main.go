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

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/store"
	"github.com/JonMunkholm/catalog/internal/web"
)

func main() {
	// Overload so a local .env wins over stale shell exports.
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_driver", cfg.Store.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"api_key_required", cfg.Security.RequireAPIKey,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	backend, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	service := core.NewService(backend,
		core.WithAuditSink(backend),
		core.WithImportLimiter(core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)),
	)

	server := web.NewServer(service, cfg, web.WithAuditReader(backend))

	// Cancelled on shutdown; stops background goroutines.
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting work first, then let running imports finish.
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		status := service.Limiter().Status()
		if status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}
	}()

	if err := server.Start(jobCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		closeStore()
		os.Exit(1)
	}
	<-stopped
	slog.Info("server stopped")
}
