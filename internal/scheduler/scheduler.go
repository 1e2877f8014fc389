// Package scheduler drops and refetches the cached table on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher is the part of the dashboard the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs Refresh on a standard five-field cron spec.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	refresher Refresher
	timeout   time.Duration
	logger    *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New validates spec and creates a scheduler. Each run gets at most timeout;
// zero means no limit beyond the scheduler's own lifetime.
func New(spec string, refresher Refresher, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	s := &Scheduler{
		cron:      cron.New(),
		spec:      spec,
		refresher: refresher,
		timeout:   timeout,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("schedule refresh: %w", err)
	}
	return s, nil
}

// Start begins firing refreshes. Runs in progress are canceled when ctx ends
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("refresh scheduler started", "schedule", s.spec)
}

// Stop halts the scheduler and waits for a running refresh to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("refresh scheduler stopped")
}

// Next reports when the next refresh fires. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("scheduled refresh failed", "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Info("scheduled refresh completed", "duration", time.Since(start))
}
