// Package scheduler triggers pipeline runs on a fixed interval for
// every organization the intel store knows about.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
)

// Scheduler enqueues scheduled runs while enabled in configuration.
type Scheduler struct {
	cfg      *config.Config
	queue    *queue.Store
	intel    *intel.Store
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  func()
	wg      sync.WaitGroup
}

// New constructs a scheduler. The interval comes from
// [scheduler].interval_hours.
func New(cfg *config.Config, queueStore *queue.Store, intelStore *intel.Store, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		cfg:      cfg,
		queue:    queueStore,
		intel:    intelStore,
		logger:   logger.With(logging.String(logging.FieldComponent, "scheduler")),
		interval: time.Duration(cfg.Scheduler.IntervalHours) * time.Hour,
	}
}

// Start launches the interval loop. It is a no-op when scheduling is
// disabled in configuration.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Scheduler.Enabled {
		s.logger.Info("scheduler disabled")
		return nil
	}
	if s.interval <= 0 {
		return errors.New("scheduler interval must be positive")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(loopCtx)
	return nil
}

// Stop halts the interval loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", logging.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.TriggerAll(ctx)
		}
	}
}

// TriggerAll enqueues a scheduled run for every known organization.
// Organizations with a live run are skipped; one live run per
// organization is the queue's invariant, not an error here.
func (s *Scheduler) TriggerAll(ctx context.Context) {
	orgs, err := s.intel.OrgIDs(ctx)
	if err != nil {
		s.logger.Error("failed to list organizations", logging.Error(err))
		return
	}

	var enqueued, skipped int
	for _, orgID := range orgs {
		_, err := s.queue.Enqueue(ctx, orgID, queue.TriggerScheduled)
		switch {
		case errors.Is(err, queue.ErrRunActive):
			skipped++
		case err != nil:
			s.logger.Error("failed to enqueue scheduled run",
				logging.String(logging.FieldOrgID, orgID),
				logging.Error(err))
		default:
			enqueued++
		}
	}
	s.logger.Info("scheduled sweep finished",
		logging.Int("organizations", len(orgs)),
		logging.Int("enqueued", enqueued),
		logging.Int("skipped", skipped))
}
