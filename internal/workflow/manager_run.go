package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
	"github.com/Synpathub/PatenTrack3/internal/stage"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workers)
	m.mu.Unlock()

	for i := 0; i < m.workers; i++ {
		go m.runLoop(runCtx)
	}
	return nil
}

// Stop terminates background processing and waits for in-flight work.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runLoop(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleRuns(ctx, m.logger); err != nil {
			m.logger.Warn("reclaim stale runs failed; stuck runs may remain",
				logging.Error(err),
				logging.String(logging.FieldEventType, "heartbeat_reclaim_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"))
		}

		run, err := m.store.NextEligible(ctx, time.Now())
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next run",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_fetch_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"))
			m.waitOrShutdown(ctx, m.errorRetry)
			continue
		}
		if run == nil {
			m.waitOrShutdown(ctx, m.pollInterval)
			continue
		}

		claimed, err := m.store.Claim(ctx, run.ID)
		if err != nil {
			m.setLastError(err)
			m.waitOrShutdown(ctx, m.errorRetry)
			continue
		}
		if !claimed {
			continue
		}

		if err := m.processRun(ctx, run.ID); errors.Is(err, context.Canceled) {
			return
		}
	}
}

func (m *Manager) waitOrShutdown(ctx context.Context, wait time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

// processRun walks a claimed run through every remaining step. The
// completion marker for a step is persisted before the next one starts,
// so a crashed or retried run resumes instead of repeating work.
func (m *Manager) processRun(ctx context.Context, runID int64) error {
	run, err := m.store.GetByID(ctx, runID)
	if err != nil {
		m.setLastError(err)
		return err
	}
	if run == nil {
		return nil
	}

	runCtx := services.WithOrgID(ctx, run.OrgID)
	runCtx = services.WithRunID(runCtx, run.ID)
	runCtx = services.WithRequestID(runCtx, uuid.NewString())
	runLogger := logging.WithContext(runCtx, m.logger)

	runLogger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("trigger", string(run.Trigger)),
		logging.Int("attempt", run.Attempt),
		logging.Any("steps_completed", run.StepsCompleted))

	for {
		step := run.NextStep(m.stepOrder)
		if step == "" {
			break
		}
		if err := m.executeStep(runCtx, runLogger, run, step); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	run.Status = queue.StatusCompleted
	run.CurrentStep = ""
	run.ErrorMessage = ""
	run.LastHeartbeat = nil
	run.FinishedAt = &now
	if err := m.store.Update(runCtx, run); err != nil {
		m.setLastError(err)
		runLogger.Error("failed to persist run completion", logging.Error(err))
		return err
	}
	m.setLastRun(run)

	runLogger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("steps", len(run.StepsCompleted)))

	if err := m.notifier.NotifyRunCompleted(runCtx, run.OrgID, run.RunKey); err != nil {
		runLogger.Warn("completion notification failed", logging.Error(err))
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, runLogger *slog.Logger, run *queue.Run, step string) error {
	handler := m.pipe.Handler(step)
	if handler == nil {
		err := services.Wrap(services.ErrConfiguration, step, "lookup handler", "no handler registered", nil)
		m.failRun(ctx, run, step, err)
		return err
	}

	stepCtx := services.WithStage(ctx, step)
	stepLogger := logging.WithContext(stepCtx, runLogger)
	if aware, ok := handler.(stage.LoggerAware); ok {
		aware.SetLogger(stepLogger)
	}

	run.CurrentStep = step
	if err := m.store.MarkStep(stepCtx, run.ID, step); err != nil {
		m.setLastError(err)
		return err
	}

	stepStart := time.Now()
	stepLogger.Info("step started", logging.String(logging.FieldEventType, "stage_start"))

	execErr := m.executeWithHeartbeat(stepCtx, handler, run, step)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			m.releaseRun(run, stepLogger)
			return execErr
		}
		m.handleStepFailure(stepCtx, stepLogger, run, step, execErr)
		return execErr
	}

	if err := m.store.CompleteStep(stepCtx, run, step); err != nil {
		m.setLastError(err)
		stepLogger.Error("failed to persist step completion", logging.Error(err))
		return err
	}

	stepLogger.Info("step completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("step_duration", time.Since(stepStart)))
	return nil
}

// executeWithHeartbeat bounds same-step concurrency with the configured
// semaphore and keeps the run's heartbeat fresh while the handler works.
func (m *Manager) executeWithHeartbeat(ctx context.Context, handler stage.Handler, run *queue.Run, step string) error {
	sem := m.sems[step]
	if sem != nil {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, run.ID)

	execErr := handler.Execute(ctx, run)
	hbCancel()
	hbWG.Wait()
	return execErr
}

// releaseRun returns an interrupted run to the queue so a restarted
// daemon resumes it from its durable markers.
func (m *Manager) releaseRun(run *queue.Run, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	run.Status = queue.StatusWaiting
	run.CurrentStep = ""
	run.ErrorMessage = queue.DaemonStopReason
	run.LastHeartbeat = nil
	if err := m.store.Update(ctx, run); err != nil {
		logger.Error("failed to release run on shutdown", logging.Error(err))
		return
	}
	logger.Info("run released for resume",
		logging.String(logging.FieldEventType, "run_released"))
}
