package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/scheduler"
	"github.com/Synpathub/PatenTrack3/internal/workflow"
)

// Daemon owns the daemon lifecycle: single-instance locking, the workflow
// manager, and the periodic scheduler.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *queue.Store
	workflow  *workflow.Manager
	scheduler *scheduler.Scheduler

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
}

// Status reports a point-in-time snapshot of the daemon.
type Status struct {
	Running  bool
	LockPath string
	Workflow workflow.StatusSummary
}

// New wires a daemon from already-opened dependencies. The caller keeps
// ownership of the intel store; the queue store is closed by Close.
func New(cfg *config.Config, store *queue.Store, mgr *workflow.Manager, sched *scheduler.Scheduler, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("queue store is required")
	}
	if mgr == nil {
		return nil, fmt.Errorf("workflow manager is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "patenttrackd.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logger.With(logging.FieldComponent, "daemon"),
		store:     store,
		workflow:  mgr,
		scheduler: sched,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the workflow manager and,
// when configured, the scheduler.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return fmt.Errorf("daemon already running")
	}

	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock %s: %w", d.lockPath, err)
	}
	if !locked {
		return fmt.Errorf("another patenttrackd instance is already running (lock %s)", d.lockPath)
	}

	if err := d.workflow.Start(ctx); err != nil {
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("failed to release instance lock", logging.Error(unlockErr))
		}
		return fmt.Errorf("start workflow manager: %w", err)
	}

	if d.scheduler != nil {
		if err := d.scheduler.Start(ctx); err != nil {
			d.workflow.Stop()
			if unlockErr := d.lock.Unlock(); unlockErr != nil {
				d.logger.Warn("failed to release instance lock", logging.Error(unlockErr))
			}
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	d.running.Store(true)
	d.logger.Info("daemon started", slog.String("lock_path", d.lockPath))
	return nil
}

// Stop halts the scheduler and workflow manager and releases the lock.
// It is safe to call more than once.
func (d *Daemon) Stop() {
	if !d.running.Swap(false) {
		return
	}

	if d.scheduler != nil {
		d.scheduler.Stop()
	}
	d.workflow.Stop()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the queue store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Status reports whether the daemon loop is live plus workflow diagnostics.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:  d.running.Load(),
		LockPath: d.lockPath,
		Workflow: d.workflow.Status(ctx),
	}
}
