package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/stamps/internal/config"
	"github.com/JonMunkholm/stamps/internal/core"
	"github.com/JonMunkholm/stamps/internal/logging"
	"github.com/JonMunkholm/stamps/internal/metrics"
	"github.com/JonMunkholm/stamps/internal/source"
	"github.com/JonMunkholm/stamps/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
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
	slog.Info("configuration loaded", "config", cfg.String())

	loader, err := source.New(source.Config{
		Kind:        cfg.Source.Kind,
		Path:        cfg.Source.Path,
		Sheet:       cfg.Source.Sheet,
		URL:         cfg.Source.URL,
		Timeout:     cfg.Source.Timeout,
		DatabaseURL: cfg.Source.DatabaseURL,
		Query:       cfg.Source.Query,
		MaxSize:     cfg.Source.MaxSize,
	})
	if err != nil {
		slog.Error("failed to create table source", "error", err)
		os.Exit(1)
	}
	if c, ok := loader.(interface{ Close() }); ok {
		defer c.Close()
	}

	var rec *metrics.Recorder
	if cfg.Metrics.Enabled {
		rec = metrics.New()
	}

	opts := core.Options{
		MaxRanges:   cfg.Analysis.MaxRanges,
		MaxSpan:     cfg.Analysis.MaxSpan,
		Parallelism: cfg.Analysis.Parallelism,
		Slots:       cfg.Analysis.Slots,
		MaxWait:     cfg.Analysis.MaxWait,
		LoadTimeout: cfg.Source.Timeout,
	}
	if rec != nil {
		opts.Recorder = rec
	}
	service := core.NewService(loader, opts)

	// A failed initial load keeps the server up with the dataset marked
	// unavailable; /api/reload or the scheduler can recover.
	if _, err := service.Reload(context.Background()); err != nil {
		slog.Warn("initial dataset load failed, serving without data", "error", err)
	}

	server := web.NewServer(service, cfg, rec)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartReloadScheduler(jobCtx, core.ReloadConfig{
		Interval: cfg.Source.ReloadInterval,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for analyses to complete", "active", status.Active)
			if err := service.WaitForAnalyses(shutdownCtx); err != nil {
				slog.Warn("analyses did not complete in time", "error", err)
			} else {
				slog.Info("all analyses completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
