// Package reset zeroes every usage counter at the first instant of each
// month, independent of request traffic.
package reset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SmartForms-ai/google-forms-api/internal/store"
)

// Scheduler runs the monthly usage reset. A failed run is logged and retried
// only at the next month boundary, never immediately.
type Scheduler struct {
	mu     sync.RWMutex
	usage  *store.UsageStore
	logger *slog.Logger
	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(usage *store.UsageStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		usage:  usage,
		logger: logger,
		now:    time.Now,
	}
}

// NextRun returns the first instant of the month after t, in UTC.
func NextRun(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		for {
			wait := time.Until(NextRun(s.now()))
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.run()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) run() {
	n, err := s.usage.ResetAllUsage()
	if err != nil {
		s.logger.Error("monthly usage reset failed", "error", err)
		return
	}
	s.logger.Info("monthly usage reset complete", "records", n)
}
