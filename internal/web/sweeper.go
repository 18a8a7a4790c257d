package web

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"itingen/internal/config"
	appLog "itingen/internal/log"
)

// StartSweeper schedules periodic cleanup of the scratch directory.
//
// Uploads and staged print files must not outlive their request; handlers
// remove their own artifacts, so anything the sweeper finds past the max
// age is leftover from a crashed or abandoned request.
func StartSweeper(ctx context.Context, cfg *config.Config) (*cron.Cron, error) {
	maxAge := time.Duration(cfg.SweepMaxAgeMinutes) * time.Minute

	c := cron.New()
	_, err := c.AddFunc(cfg.SweepCron, func() {
		sweepScratch(cfg.ScratchDir, maxAge)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	appLog.Info("scratch sweeper started", "dir", cfg.ScratchDir, "schedule", cfg.SweepCron, "max_age", maxAge)

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	return c, nil
}

// sweepScratch removes regular files in dir older than maxAge.
func sweepScratch(dir string, maxAge time.Duration) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			appLog.Error("scratch sweep failed to list directory", err, "dir", dir)
		}
		return
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
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
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			appLog.Error("scratch sweep failed to remove file", err, "path", path)
			continue
		}
		removed++
	}

	if removed > 0 {
		appLog.Info("scratch sweep completed", "dir", dir, "removed", removed)
	}
}
