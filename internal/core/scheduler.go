package core

// scheduler.go runs background maintenance. The audit purge deletes entries
// older than the retention window. It runs once at start, then every
// interval, until the context is cancelled. Failures are logged and the
// next tick tries again.

import (
	"context"
	"time"
)

// AuditPurgeConfig configures StartAuditPurgeScheduler.
type AuditPurgeConfig struct {
	RetentionDays int           // Entries older than this are deleted (default: 365)
	CheckInterval time.Duration // How often to run (default: 24h)
}

// StartAuditPurgeScheduler blocks, purging old audit entries periodically.
// Run it in its own goroutine.
func (s *Service) StartAuditPurgeScheduler(ctx context.Context, cfg AuditPurgeConfig) {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 365
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 24 * time.Hour
	}
	s.logger.Info("audit purge scheduler started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval,
	)

	s.PurgeAudit(ctx, cfg.RetentionDays)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("audit purge scheduler stopped")
			return
		case <-ticker.C:
			s.PurgeAudit(ctx, cfg.RetentionDays)
		}
	}
}

// PurgeAudit deletes audit entries older than retentionDays and returns how
// many were removed.
func (s *Service) PurgeAudit(ctx context.Context, retentionDays int) int64 {
	start := time.Now()
	purged, err := s.q.PurgeAuditLogs(ctx, int32(retentionDays))
	if err != nil {
		s.logger.Error("audit purge failed", "error", err)
		return 0
	}
	s.logger.Info("audit purge completed",
		"entries_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return purged
}
