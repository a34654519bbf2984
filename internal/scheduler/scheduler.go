// Package scheduler runs the sync on a cron schedule when SYNC_SCHEDULE is
// configured, keeping the process resident.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/avasilyev/ankibridge/internal/entities"
)

// SyncFunc performs one sync run.
type SyncFunc func(ctx context.Context) (entities.ImportResult, error)

// Scheduler manages periodic sync runs. At most one sync runs at a time;
// overlapping triggers are skipped.
type Scheduler struct {
	syncFn   SyncFunc
	schedule string
	logger   *slog.Logger

	cron      *cron.Cron
	mu        sync.Mutex
	isSyncing bool
}

func New(syncFn SyncFunc, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncFn:   syncFn,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// a running sync to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("sync scheduler started",
		"schedule", s.schedule,
		"next_run", s.cron.Entry(entryID).Next)

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("sync scheduler stopped")
	return nil
}

func (s *Scheduler) runSync(ctx context.Context) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		s.logger.Warn("sync skipped, previous run still in progress")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	result, err := s.syncFn(ctx)
	if err != nil {
		s.logger.Error("scheduled sync failed", "error", err)
		return
	}

	s.logger.Info("scheduled sync finished",
		"created", result.Created,
		"skipped", result.Skipped,
		"failed", len(result.Failed),
		"documents", result.DocumentsFetched)
}
