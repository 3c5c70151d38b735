package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a pipeline run.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusActive     Status = "active"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusDeadLetter Status = "dead_letter"
)

var allStatuses = []Status{
	StatusWaiting,
	StatusActive,
	StatusCompleted,
	StatusFailed,
	StatusDeadLetter,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Trigger records why a run was created.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
	TriggerRetry     Trigger = "retry"
)

// DaemonStopReason is the error message set when active runs are failed
// due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

// Run represents one pipeline execution for one organization.
type Run struct {
	ID             int64
	OrgID          string
	RunKey         string
	Trigger        Trigger
	Status         Status
	CurrentStep    string
	StepsCompleted []string
	Attempt        int
	NextAttemptAt  *time.Time
	ErrorMessage   string
	LastHeartbeat  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	StartedAt      *time.Time
	FinishedAt     *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Terminal reports whether the run can make no further progress.
func (r Run) Terminal() bool {
	switch r.Status {
	case StatusCompleted, StatusFailed, StatusDeadLetter:
		return true
	}
	return false
}

// StepDone reports whether a pipeline step already has a durable
// completion marker on this run.
func (r Run) StepDone(step string) bool {
	for _, done := range r.StepsCompleted {
		if done == step {
			return true
		}
	}
	return false
}

// NextStep returns the first step in the pipeline order that has no
// completion marker, or "" when every step is done.
func (r Run) NextStep(steps []string) string {
	for _, step := range steps {
		if !r.StepDone(step) {
			return step
		}
	}
	return ""
}

// SetFailed marks the run as terminally failed with the given message
// and clears in-flight bookkeeping.
func (r *Run) SetFailed(message string) {
	r.Status = StatusFailed
	r.ErrorMessage = message
	r.LastHeartbeat = nil
	r.NextAttemptAt = nil
}

// HealthSummary describes aggregated run counts per key lifecycle state.
type HealthSummary struct {
	Total      int
	Waiting    int
	Active     int
	Completed  int
	Failed     int
	DeadLetter int
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalRuns        int
	Error            string
}
