package intel

import (
	"time"

	"github.com/Synpathub/PatenTrack3/internal/classify"
	"github.com/Synpathub/PatenTrack3/internal/tree"
)

// Party roles on an assignment record.
const (
	RoleAssignor = "assignor"
	RoleAssignee = "assignee"
)

// Dashboard tabs consumed by the UI layer.
const (
	TabComplete   = "complete"
	TabBroken     = "broken"
	TabEncumbered = "encumbered"
	TabOther      = "other"
)

// Asset is one monitored patent for an organization.
type Asset struct {
	ID        int64
	OrgID     string
	PatentID  string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assignment is one recorded conveyance with its derived classification.
// ConveyanceType is empty until the classify stage has processed the row;
// when ingestion sees changed conveyance text it clears the type so the
// row is picked up again.
type Assignment struct {
	ID             int64
	OrgID          string
	PatentID       string
	RFID           string
	ConveyText     string
	ConveyanceType classify.Type
	EmployerAssign bool
	RecordDate     *time.Time
	Assignors      []string
	Assignees      []string
}

// Classified reports whether the classify stage has stamped this row.
func (a Assignment) Classified() bool {
	return a.ConveyanceType != ""
}

// DashboardItem is the per-patent row served to the dashboard.
type DashboardItem struct {
	OrgID        string
	PatentID     string
	TypeCode     int
	Tab          string
	IsBroken     bool
	BrokenReason string
	Tree         []tree.Node
	ComputedAt   time.Time
}

// TimelineEntry is one date bucket of recorded activity.
type TimelineEntry struct {
	OrgID           string
	Date            string
	AssignmentCount int
	Types           []string
	UpdatedAt       time.Time
}

// EntityAlias is one raw name variant inside an entity group.
type EntityAlias struct {
	Name        string
	Occurrences int
}

// Entity is a canonical party with its absorbed name variants.
type Entity struct {
	ID            int64
	OrgID         string
	CanonicalName string
	Occurrences   int
	Aliases       []EntityAlias
}

// Summary is the organization-level rollup.
type Summary struct {
	OrgID             string
	TotalAssets       int
	TotalEntities     int
	TotalTransactions int
	CompleteCount     int
	BrokenCount       int
	EncumberedCount   int
	ComputedAt        time.Time
}

// Freshness marks the last completed pipeline run for an organization.
type Freshness struct {
	OrgID       string
	RunKey      string
	CompletedAt time.Time
}
