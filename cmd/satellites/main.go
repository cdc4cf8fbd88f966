package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mariavieira99/Satellites/internal/api"
	"github.com/mariavieira99/Satellites/internal/config"
	"github.com/mariavieira99/Satellites/internal/connectivity"
	"github.com/mariavieira99/Satellites/internal/query"
	"github.com/mariavieira99/Satellites/internal/remote"
	"github.com/mariavieira99/Satellites/internal/store"
)

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	logger.Info("config", "config", cfg)

	cache, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open cache", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	prober, err := connectivity.NewHTTPProber(cfg.APIBaseURL, cfg.ProbeTimeout)
	if err != nil {
		logger.Error("invalid API base URL", "url", cfg.APIBaseURL, "error", err)
		os.Exit(1)
	}
	monitor := connectivity.NewMonitor(prober, cfg.ProbeInterval, logger)

	client := remote.NewClient(cfg.APIBaseURL, cfg.RemoteTimeout, logger)
	exec := query.NewExecutor(client, cache, monitor, logger)

	srv := api.NewServer(api.Config{
		Addr:       cfg.HTTPAddr,
		TrustProxy: cfg.TrustProxy,
	}, logger, exec, monitor, cache)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := monitor.Start(ctx); err != nil {
		logger.Error("failed to start connectivity monitor", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr, "api_base_url", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	monitor.Stop()
	// Let in-flight cache writes land before the database closes.
	exec.Wait()

	logger.Info("server stopped")
}
