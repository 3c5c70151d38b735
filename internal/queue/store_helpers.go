package queue

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const runColumns = "id, org_id, run_key, trigger_reason, status, current_step, steps_completed, attempt, next_attempt_at, error_message, last_heartbeat, created_at, updated_at, started_at, finished_at"

// timeFormat is RFC 3339 with a fixed nine-digit fraction. RFC3339Nano
// trims trailing zeros, and a whole-second timestamp ("...:05Z") sorts
// after a fractional one in the same second ("...:05.5Z") when SQLite
// compares the TEXT columns, so backoff and heartbeat cutoffs need the
// fixed width.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id            int64
		orgID         string
		runKey        string
		trigger       string
		statusStr     string
		currentStep   sql.NullString
		stepsRaw      sql.NullString
		attempt       int
		nextAttemptAt sql.NullString
		errorMessage  sql.NullString
		heartbeatRaw  sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
		startedRaw    sql.NullString
		finishedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&orgID,
		&runKey,
		&trigger,
		&statusStr,
		&currentStep,
		&stepsRaw,
		&attempt,
		&nextAttemptAt,
		&errorMessage,
		&heartbeatRaw,
		&createdRaw,
		&updatedRaw,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		OrgID:        orgID,
		RunKey:       runKey,
		Trigger:      Trigger(trigger),
		Status:       Status(statusStr),
		CurrentStep:  currentStep.String,
		Attempt:      attempt,
		ErrorMessage: errorMessage.String,
	}

	if stepsRaw.Valid && stepsRaw.String != "" {
		if err := json.Unmarshal([]byte(stepsRaw.String), &run.StepsCompleted); err != nil {
			return nil, err
		}
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	run.NextAttemptAt = parseOptionalTime(nextAttemptAt)
	run.LastHeartbeat = parseOptionalTime(heartbeatRaw)
	run.StartedAt = parseOptionalTime(startedRaw)
	run.FinishedAt = parseOptionalTime(finishedRaw)
	return run, nil
}

func collectRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func parseOptionalTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	parsed, err := parseTimeString(value.String)
	if err != nil {
		return nil
	}
	return &parsed
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(timeFormat)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
