package core

// scheduler.go reloads the dataset in the background.
//
// The scheduler is long-running and context-aware for graceful shutdown.
// A failed reload is logged and installs an unavailable snapshot; the
// scheduler keeps running and retries on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// ReloadConfig holds configuration for the reload scheduler.
type ReloadConfig struct {
	Interval time.Duration // How often to reload; zero or negative disables the scheduler
}

// StartReloadScheduler periodically reloads the dataset until ctx is
// cancelled. The initial load is the caller's job; the first scheduled
// reload happens one Interval after start.
func (s *Service) StartReloadScheduler(ctx context.Context, cfg ReloadConfig) {
	if cfg.Interval <= 0 {
		slog.Info("reload scheduler disabled")
		return
	}

	slog.Info("reload scheduler started",
		"interval", cfg.Interval.String(),
		"source", s.loader.Name(),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reload scheduler stopped")
			return
		case <-ticker.C:
			s.runReloadJob(ctx)
		}
	}
}

// runReloadJob performs one scheduled reload.
func (s *Service) runReloadJob(ctx context.Context) {
	slog.Debug("scheduled reload started")
	start := time.Now()

	previous := s.Snapshot()
	ds, err := s.Reload(ctx)
	if err != nil {
		// Reload already logged the failure.
		return
	}

	changed := previous == nil || previous.LoadErr != nil || len(previous.Table) != len(ds.Table)
	slog.Info("scheduled reload completed",
		"version", ds.Version,
		"rows", len(ds.Table),
		"row_count_changed", changed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
