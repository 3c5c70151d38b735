package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
)

// handleStepFailure routes a step error: retryable failures requeue the
// run with exponential backoff until attempts run out; everything else
// fails the run immediately. Completed-step markers are never rolled
// back, so a revived run resumes at the failing step.
func (m *Manager) handleStepFailure(ctx context.Context, logger *slog.Logger, run *queue.Run, step string, stepErr error) {
	m.setLastError(stepErr)
	message := strings.TrimSpace(stepErr.Error())

	attempt := run.Attempt + 1
	retryable := services.Retryable(stepErr)
	if retryable && attempt < m.cfg.Workflow.MaxAttempts {
		backoff := retryBackoff(m.cfg.Workflow.RetryBackoffSeconds, attempt)
		next := time.Now().UTC().Add(backoff)
		run.Status = queue.StatusWaiting
		run.Attempt = attempt
		run.NextAttemptAt = &next
		run.ErrorMessage = message
		run.CurrentStep = ""
		run.LastHeartbeat = nil

		logger.Warn("step failed; run requeued with backoff",
			logging.Error(stepErr),
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", m.cfg.Workflow.MaxAttempts),
			logging.Duration("backoff", backoff))
	} else {
		run.SetFailed(message)
		now := time.Now().UTC()
		run.FinishedAt = &now

		hint := "inspect run error and retry via the runs command"
		if !retryable {
			hint = "fix input or configuration before retrying"
		}
		logger.Error("step failed; run marked failed",
			logging.Error(stepErr),
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Alert("run_failure"),
			logging.Bool("retryable", retryable),
			logging.Int("attempt", attempt),
			logging.String(logging.FieldErrorHint, hint))

		if err := m.notifier.NotifyRunFailed(ctx, run.OrgID, run.ID, message); err != nil {
			logger.Warn("failure notification failed", logging.Error(err))
		}
	}

	if err := m.store.Update(ctx, run); err != nil {
		logger.Error("failed to persist step failure",
			logging.Error(err),
			logging.String(logging.FieldStage, step))
	}
	m.setLastRun(run)
}

// retryBackoff doubles the base delay for every prior attempt.
func retryBackoff(baseSeconds, attempt int) time.Duration {
	if baseSeconds <= 0 {
		baseSeconds = 1
	}
	backoff := time.Duration(baseSeconds) * time.Second
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	return backoff
}

// failRun marks a run terminally failed outside the usual step path.
func (m *Manager) failRun(ctx context.Context, run *queue.Run, step string, err error) {
	m.setLastError(err)
	run.SetFailed(strings.TrimSpace(err.Error()))
	now := time.Now().UTC()
	run.FinishedAt = &now
	if updateErr := m.store.Update(ctx, run); updateErr != nil {
		m.logger.Error("failed to persist run failure",
			logging.Error(updateErr),
			logging.String(logging.FieldStage, step))
	}
	m.setLastRun(run)

	if notifyErr := m.notifier.NotifyRunFailed(ctx, run.OrgID, run.ID, strings.TrimSpace(err.Error())); notifyErr != nil {
		m.logger.Warn("failure notification failed", logging.Error(notifyErr))
	}
}
