package api

import (
	"strings"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/queue"
)

// RunView is the display representation of a pipeline run.
type RunView struct {
	ID             int64
	OrgID          string
	RunKey         string
	Trigger        string
	Status         string
	CurrentStep    string
	StepsCompleted []string
	Attempt        int
	ErrorMessage   string
	CreatedAt      string
	FinishedAt     string
}

// FromRun converts a queue run into its display form.
func FromRun(run *queue.Run) RunView {
	view := RunView{
		ID:             run.ID,
		OrgID:          run.OrgID,
		RunKey:         run.RunKey,
		Trigger:        string(run.Trigger),
		Status:         string(run.Status),
		CurrentStep:    run.CurrentStep,
		StepsCompleted: run.StepsCompleted,
		Attempt:        run.Attempt,
		ErrorMessage:   strings.TrimSpace(run.ErrorMessage),
		CreatedAt:      formatViewTime(&run.CreatedAt),
	}
	view.FinishedAt = formatViewTime(run.FinishedAt)
	return view
}

// DashboardRow is one patent's chain state for table rendering.
type DashboardRow struct {
	PatentID     string
	Tab          string
	TypeCode     int
	IsBroken     bool
	BrokenReason string
	NodeCount    int
}

// Overview aggregates everything the status and dashboard commands show
// for one organization.
type Overview struct {
	OrgID       string
	Summary     *intel.Summary
	Freshness   *intel.Freshness
	Dashboard   []DashboardRow
	ActiveRun   *RunView
	RecentRuns  []RunView
	TabCounts   map[string]int
	QueueHealth queue.HealthSummary
}

// TimelineRow is one date bucket for table rendering.
type TimelineRow struct {
	Date            string
	AssignmentCount int
	Types           string
}

// EntityRow is one canonical party with its variants flattened for
// table rendering.
type EntityRow struct {
	CanonicalName string
	Occurrences   int
	Aliases       string
}

func formatViewTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}
	return value.UTC().Format("2006-01-02 15:04:05")
}
