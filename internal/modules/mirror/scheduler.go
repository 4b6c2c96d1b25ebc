package mirror

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs SmartBackup on a fixed interval. A failed cycle is logged
// and swallowed; the next tick tries again.
type Scheduler struct {
	service      Service
	log          *zap.Logger
	initialDelay time.Duration
	interval     time.Duration
}

func NewScheduler(service Service, log *zap.Logger, initialDelay, interval time.Duration) *Scheduler {
	return &Scheduler{service: service, log: log, initialDelay: initialDelay, interval: interval}
}

// Run blocks until ctx is cancelled. The first cycle waits initialDelay so
// startup recovery finishes before the mirror is touched.
func (s *Scheduler) Run(ctx context.Context) {
	select {
	case <-time.After(s.initialDelay):
	case <-ctx.Done():
		return
	}
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.log.Info("backup scheduler stopped")
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	result, err := s.service.SmartBackup(ctx)
	if err != nil {
		s.log.Error("scheduled backup failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled backup complete", zap.String("method", result.Method))
}
