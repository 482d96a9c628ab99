package core

// scheduler.go runs the optional background refresh.
//
// On every tick the scheduler calls Cache.Get. A valid snapshot makes that
// a no-op (one stat call); a changed or expired dataset is reloaded, so the
// next request finds it fresh. Failures are logged and the scheduler keeps
// running; the published snapshot is never dropped by a failed tick.

import (
	"context"
	"log/slog"
	"time"
)

// StartRefreshScheduler keeps the snapshot fresh until ctx is cancelled.
// It blocks; run it in its own goroutine. A non-positive interval returns
// immediately.
func (s *Service) StartRefreshScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	slog.Info("refresh scheduler started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresh scheduler stopped")
			return
		case <-ticker.C:
			s.runRefreshJob(ctx)
		}
	}
}

// runRefreshJob performs one freshness check.
func (s *Service) runRefreshJob(ctx context.Context) {
	start := time.Now()
	before := s.cache.Current()

	snap, err := s.cache.Get(ctx)
	if err != nil {
		slog.Error("scheduled refresh failed", "error", err)
		return
	}
	if snap != before {
		slog.Info("scheduled refresh reloaded dataset",
			"snapshot_id", snap.ID.String(),
			"records", len(snap.Records),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	slog.Debug("scheduled refresh: snapshot still valid")
}
