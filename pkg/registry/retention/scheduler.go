package retention

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a Pruner on its cron schedule.
type Scheduler struct {
	pruner  *Pruner
	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new retention scheduler.
func NewScheduler(pruner *Pruner) *Scheduler {
	return &Scheduler{
		pruner: pruner,
		cron:   cron.New(),
	}
}

// Start schedules pruning and returns. The scheduler stops when ctx is
// cancelled. An empty schedule leaves the scheduler idle.
//
// Common cron expressions:
//   - "0 12 * * *"   - Daily at noon
//   - "0 */6 * * *"  - Every 6 hours
//   - "@hourly"      - Every hour
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := s.pruner.config.Schedule
	logger := s.pruner.logger

	if s.running {
		return fmt.Errorf("retention scheduler already running")
	}
	if schedule == "" {
		logger.Info("retention schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	logger.Info("retention scheduler started",
		"schedule", schedule,
		"max_age", s.pruner.config.MaxAge.String(),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	logger := s.pruner.logger
	logger.Info("starting scheduled heartbeat log pruning")

	deleted, err := s.pruner.Prune(ctx)
	if err != nil {
		logger.Error("scheduled pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		logger.Info("scheduled pruning completed", "deleted_count", deleted)
	} else {
		logger.Debug("scheduled pruning completed, no rows deleted")
	}
}

// RunNow runs one prune immediately.
func (s *Scheduler) RunNow(ctx context.Context) (int64, error) {
	return s.pruner.Prune(ctx)
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
		s.pruner.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled prune, or nil when nothing is scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
