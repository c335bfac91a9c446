package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler refreshes a Store on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	store   *Store
	timeout time.Duration
	log     *zap.Logger
}

// NewScheduler parses spec (standard five-field cron or a descriptor such as "@every 5m").
func NewScheduler(store *Store, spec string, timeout time.Duration, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		cron:    cron.New(),
		store:   store,
		timeout: timeout,
		log:     log,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("dashboard refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.store.Refresh(ctx); err != nil {
		s.log.Warn("dashboard_scheduled_refresh_failed",
			zap.String("component", "dashboard"),
			zap.Error(err),
		)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("dashboard_scheduler_started", zap.String("component", "dashboard"))
}

// Stop halts the schedule and waits for a running refresh, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
