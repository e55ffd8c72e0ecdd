package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/infrastructure/logger"
)

// CleanupService sweeps expired task records and their export files.
// Results are not durable beyond the retention window; a swept task
// simply becomes not-found.
type CleanupService struct {
	tasks     ports.TaskStore
	logger    *logger.Logger
	retention time.Duration
	interval  time.Duration
	exportDir string
}

type CleanupServiceConfig struct {
	TaskStore ports.TaskStore
	Logger    *logger.Logger
	Retention time.Duration
	Interval  time.Duration
	ExportDir string
}

func NewCleanupService(cfg CleanupServiceConfig) *CleanupService {
	retention := cfg.Retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{
		tasks:     cfg.TaskStore,
		logger:    cfg.Logger,
		retention: retention,
		interval:  interval,
		exportDir: cfg.ExportDir,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *CleanupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Errorw("task_cleanup_failed", "error", err)
			}
		}
	}
}

// SweepOnce deletes tasks older than the retention window and removes
// export files past the same age.
func (s *CleanupService) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)

	deleted, err := s.tasks.CleanupExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Infow("task_cleanup_ok", "deleted", deleted, "cutoff", cutoff)
	}

	s.sweepExportFiles(cutoff)
	return deleted, nil
}

func (s *CleanupService) sweepExportFiles(cutoff time.Time) {
	if s.exportDir == "" {
		return
	}
	entries, err := os.ReadDir(s.exportDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warnw("export_dir_sweep_failed", "dir", s.exportDir, "error", err)
		}
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.exportDir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warnw("export_file_sweep_failed", "path", path, "error", err)
		}
	}
}
