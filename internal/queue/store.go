package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Synpathub/PatenTrack3/internal/config"
)

// Store manages pipeline-run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.QueueDatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the queue database location.
func (s *Store) Path() string {
	return s.path
}

// Enqueue creates a new waiting run for an organization. It returns
// ErrRunActive when the organization already has a waiting or active
// run; concurrent runs for one organization are never allowed.
func (s *Store) Enqueue(ctx context.Context, orgID string, trigger Trigger) (*Run, error) {
	if orgID == "" {
		return nil, errors.New("org id is empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin enqueue tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var live int
	err = tx.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM pipeline_runs WHERE org_id = ? AND status IN (?, ?)`,
		orgID, StatusWaiting, StatusActive,
	).Scan(&live)
	if err != nil {
		return nil, fmt.Errorf("check live runs: %w", err)
	}
	if live > 0 {
		return nil, ErrRunActive
	}

	timestamp := time.Now().UTC().Format(timeFormat)
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO pipeline_runs (
            org_id, run_key, trigger_reason, status, steps_completed,
            attempt, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		orgID,
		uuid.NewString(),
		string(trigger),
		StatusWaiting,
		"[]",
		0,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit enqueue: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a run by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// GetByRunKey fetches a run by its external key.
func (s *Store) GetByRunKey(ctx context.Context, runKey string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE run_key = ?`, runKey)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run by key: %w", err)
	}
	return run, nil
}

// Update persists changes to an existing run.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	steps, err := json.Marshal(run.StepsCompleted)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	run.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE pipeline_runs
         SET org_id = ?, trigger_reason = ?, status = ?, current_step = ?,
             steps_completed = ?, attempt = ?, next_attempt_at = ?, error_message = ?,
             last_heartbeat = ?, updated_at = ?, started_at = ?, finished_at = ?
         WHERE id = ?`,
		run.OrgID,
		string(run.Trigger),
		run.Status,
		nullableString(run.CurrentStep),
		string(steps),
		run.Attempt,
		nullableTime(run.NextAttemptAt),
		nullableString(run.ErrorMessage),
		nullableTime(run.LastHeartbeat),
		run.UpdatedAt.Format(timeFormat),
		nullableTime(run.StartedAt),
		nullableTime(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// List returns runs filtered by status set (or all runs when no status is
// provided), ordered by creation time.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Run, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + runColumns + ` FROM pipeline_runs`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// ListByOrg returns all runs for one organization, newest first.
func (s *Store) ListByOrg(ctx context.Context, orgID string) ([]*Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM pipeline_runs WHERE org_id = ? ORDER BY created_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs by org: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// NextEligible returns the oldest waiting run whose retry backoff has
// elapsed, or nil when nothing is ready.
func (s *Store) NextEligible(ctx context.Context, now time.Time) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+runColumns+` FROM pipeline_runs
         WHERE status = ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
         ORDER BY created_at LIMIT 1`,
		StatusWaiting,
		now.UTC().Format(timeFormat),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next eligible run: %w", err)
	}
	return run, nil
}

// Claim atomically moves a waiting run to active. It reports false when
// another worker claimed the run first.
func (s *Store) Claim(ctx context.Context, id int64) (bool, error) {
	now := time.Now().UTC().Format(timeFormat)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE pipeline_runs
         SET status = ?, last_heartbeat = ?, started_at = COALESCE(started_at, ?),
             next_attempt_at = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusActive, now, now, now, id, StatusWaiting,
	)
	if err != nil {
		return false, fmt.Errorf("claim run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkStep records the step a run is currently executing.
func (s *Store) MarkStep(ctx context.Context, id int64, step string) error {
	now := time.Now().UTC().Format(timeFormat)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE pipeline_runs SET current_step = ?, last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		step, now, now, id,
	)
	if err != nil {
		return fmt.Errorf("mark step: %w", err)
	}
	return nil
}

// CompleteStep appends a durable completion marker for a step. The
// marker must be written before the run becomes eligible for the next
// step, so a retried run resumes instead of repeating finished work.
func (s *Store) CompleteStep(ctx context.Context, run *Run, step string) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.StepDone(step) {
		return nil
	}
	run.StepsCompleted = append(run.StepsCompleted, step)
	steps, err := json.Marshal(run.StepsCompleted)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	now := time.Now().UTC()
	run.UpdatedAt = now
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE pipeline_runs SET steps_completed = ?, updated_at = ? WHERE id = ?`,
		string(steps),
		now.Format(timeFormat),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("complete step: %w", err)
	}
	return nil
}

// UpdateHeartbeat updates the last heartbeat timestamp for an active run.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(timeFormat)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE pipeline_runs SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now, now, id,
	)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStale recovers active runs whose heartbeat expired before the
// cutoff: their attempt counter is bumped and they return to waiting,
// except runs that already exhausted maxAttempts, which move to
// dead_letter for operator review.
func (s *Store) ReclaimStale(ctx context.Context, cutoff time.Time, maxAttempts int) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reclaim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeFormat)
	cutoffRaw := cutoff.UTC().Format(timeFormat)

	dead, err := tx.ExecContext(
		ctx,
		`UPDATE pipeline_runs
         SET status = ?, attempt = attempt + 1, last_heartbeat = NULL,
             error_message = 'Reclaimed after heartbeat expiry', finished_at = ?, updated_at = ?
         WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?
           AND attempt + 1 >= ?`,
		StatusDeadLetter, now, now, StatusActive, cutoffRaw, maxAttempts,
	)
	if err != nil {
		return 0, fmt.Errorf("dead-letter stale runs: %w", err)
	}

	revived, err := tx.ExecContext(
		ctx,
		`UPDATE pipeline_runs
         SET status = ?, attempt = attempt + 1, last_heartbeat = NULL, updated_at = ?
         WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		StatusWaiting, now, StatusActive, cutoffRaw,
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reclaim: %w", err)
	}

	deadCount, err := dead.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	revivedCount, err := revived.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deadCount + revivedCount, nil
}

// RetryRuns moves failed or dead-letter runs back to waiting for a fresh
// attempt. With no ids, every retryable run is revived.
func (s *Store) RetryRuns(ctx context.Context, ids ...int64) (int64, error) {
	now := time.Now().UTC().Format(timeFormat)
	setClause := `SET status = ?, trigger_reason = ?, attempt = 0, next_attempt_at = NULL,
             error_message = NULL, current_step = NULL, finished_at = NULL, updated_at = ?`

	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE pipeline_runs `+setClause+` WHERE status IN (?, ?)`,
			StatusWaiting, string(TriggerRetry), now, StatusFailed, StatusDeadLetter,
		)
		if err != nil {
			return 0, fmt.Errorf("retry runs: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+5)
	args = append(args, StatusWaiting, string(TriggerRetry), now, StatusFailed, StatusDeadLetter)
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE pipeline_runs ` + setClause +
		` WHERE status IN (?, ?) AND id IN (` + placeholders + `)`
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected runs: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM pipeline_runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("run stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates run state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusWaiting:
			health.Waiting += count
		case StatusActive:
			health.Active += count
		case StatusCompleted:
			health.Completed += count
		case StatusFailed:
			health.Failed += count
		case StatusDeadLetter:
			health.DeadLetter += count
		}
	}
	return health, nil
}

// Remove deletes a run by identifier.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pipeline_runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only completed runs.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pipeline_runs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all runs.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pipeline_runs`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}
