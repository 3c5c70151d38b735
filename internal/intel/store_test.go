package intel_test

import (
	"context"
	"testing"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/classify"
	"github.com/Synpathub/PatenTrack3/internal/entities"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/testsupport"
	"github.com/Synpathub/PatenTrack3/internal/tree"
)

func TestImportPortfolioIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	portfolio := testsupport.SamplePortfolio(t, "org-1")
	testsupport.ImportPortfolio(t, store, portfolio)
	testsupport.ImportPortfolio(t, store, portfolio)

	assets, err := store.Assets(ctx, "org-1")
	if err != nil {
		t.Fatalf("Assets: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets after double import, got %d", len(assets))
	}

	assignments, err := store.AssignmentsByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("AssignmentsByOrg: %v", err)
	}
	if len(assignments) != 4 {
		t.Fatalf("expected 4 assignments, got %d", len(assignments))
	}
	for _, assignment := range assignments {
		if len(assignment.Assignors) == 0 || len(assignment.Assignees) == 0 {
			t.Fatalf("assignment %s missing parties: %+v", assignment.RFID, assignment)
		}
	}

	orgs, err := store.OrgIDs(ctx)
	if err != nil {
		t.Fatalf("OrgIDs: %v", err)
	}
	if len(orgs) != 1 || orgs[0] != "org-1" {
		t.Fatalf("unexpected orgs: %v", orgs)
	}
}

func TestImportResetsClassificationOnChangedText(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	portfolio := testsupport.SamplePortfolio(t, "org-1")
	testsupport.ImportPortfolio(t, store, portfolio)

	pending, err := store.UnclassifiedAssignments(ctx, "org-1")
	if err != nil {
		t.Fatalf("UnclassifiedAssignments: %v", err)
	}
	if len(pending) != 4 {
		t.Fatalf("expected 4 unclassified rows, got %d", len(pending))
	}

	results := make([]intel.Classification, 0, len(pending))
	for _, assignment := range pending {
		conveyType, employer := classify.Classify(assignment.ConveyText)
		results = append(results, intel.Classification{
			AssignmentID:   assignment.ID,
			ConveyanceType: conveyType,
			EmployerAssign: employer,
		})
	}
	if err := store.SaveClassifications(ctx, results); err != nil {
		t.Fatalf("SaveClassifications: %v", err)
	}

	pending, err = store.UnclassifiedAssignments(ctx, "org-1")
	if err != nil {
		t.Fatalf("UnclassifiedAssignments: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no unclassified rows after stamping, got %d", len(pending))
	}

	// Same rf_id, new conveyance text: the stored type must drop.
	portfolio.Patents[0].Transactions[0].ConveyText = "CORRECTIVE ASSIGNMENT"
	testsupport.ImportPortfolio(t, store, portfolio)

	pending, err = store.UnclassifiedAssignments(ctx, "org-1")
	if err != nil {
		t.Fatalf("UnclassifiedAssignments: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly the changed row to need reclassification, got %d", len(pending))
	}
	if pending[0].RFID != "1001-0001" {
		t.Fatalf("wrong row pending: %s", pending[0].RFID)
	}
}

func TestAssignmentsByOrgOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	testsupport.ImportPortfolio(t, store, testsupport.SamplePortfolio(t, "org-1"))

	assignments, err := store.AssignmentsByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("AssignmentsByOrg: %v", err)
	}
	want := []string{"1001-0001", "1001-0002", "1002-0001", "1002-0002"}
	if len(assignments) != len(want) {
		t.Fatalf("expected %d assignments, got %d", len(want), len(assignments))
	}
	for i, rfID := range want {
		if assignments[i].RFID != rfID {
			t.Fatalf("position %d: got %s, want %s", i, assignments[i].RFID, rfID)
		}
	}
	if assignments[0].RecordDate == nil {
		t.Fatal("expected record date on first assignment")
	}
}

func TestSetEmployerAssign(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	testsupport.ImportPortfolio(t, store, testsupport.SamplePortfolio(t, "org-1"))

	assignments, err := store.AssignmentsByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("AssignmentsByOrg: %v", err)
	}
	if err := store.SetEmployerAssign(ctx, []int64{assignments[0].ID}, true); err != nil {
		t.Fatalf("SetEmployerAssign: %v", err)
	}

	assignments, err = store.AssignmentsByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("AssignmentsByOrg: %v", err)
	}
	if !assignments[0].EmployerAssign {
		t.Fatal("expected employer flag on first assignment")
	}
	if assignments[1].EmployerAssign {
		t.Fatal("employer flag leaked to second assignment")
	}
}

func TestDashboardItemRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	nodes := []tree.Node{
		{
			RFID:          "1001-0001",
			Type:          tree.KindPurchase.Type,
			Tab:           tree.KindPurchase.Tab,
			Color:         tree.Color(classify.TypeAssignment),
			AssignorNames: []string{"Lovelace Ada"},
			AssigneeNames: []string{"Initech Inc"},
		},
	}
	if err := store.UpdateDashboardTree(ctx, "org-1", "US1000001", intel.TabComplete, nodes); err != nil {
		t.Fatalf("UpdateDashboardTree: %v", err)
	}

	item := intel.DashboardItem{
		OrgID:    "org-1",
		PatentID: "US1000001",
		TypeCode: 0,
		Tab:      intel.TabComplete,
		Tree:     nodes,
	}
	if err := store.UpsertDashboardItem(ctx, item); err != nil {
		t.Fatalf("UpsertDashboardItem: %v", err)
	}

	item.TypeCode = 1
	item.Tab = intel.TabBroken
	item.IsBroken = true
	item.BrokenReason = "chain break between Initech Inc and Globex Corp"
	if err := store.UpsertDashboardItem(ctx, item); err != nil {
		t.Fatalf("UpsertDashboardItem update: %v", err)
	}

	items, err := store.DashboardItems(ctx, "org-1")
	if err != nil {
		t.Fatalf("DashboardItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected single dashboard row, got %d", len(items))
	}
	got := items[0]
	if got.TypeCode != 1 || got.Tab != intel.TabBroken || !got.IsBroken {
		t.Fatalf("unexpected dashboard row: %+v", got)
	}
	if got.BrokenReason == "" {
		t.Fatal("expected broken reason to persist")
	}
	if len(got.Tree) != 1 || got.Tree[0].RFID != "1001-0001" {
		t.Fatalf("tree payload did not round-trip: %+v", got.Tree)
	}
	if got.ComputedAt.IsZero() {
		t.Fatal("expected computed_at to be set")
	}
}

func TestTimelineReplaceAndRead(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	entries := []intel.TimelineEntry{
		{OrgID: "org-1", Date: "2020-06-15", AssignmentCount: 1, Types: []string{"assignment"}},
		{OrgID: "org-1", Date: "2019-03-01", AssignmentCount: 2, Types: []string{"assignment", "security"}},
	}
	if err := store.ReplaceTimeline(ctx, "org-1", entries); err != nil {
		t.Fatalf("ReplaceTimeline: %v", err)
	}

	// A re-run with corrected counts must overwrite existing dates.
	entries[0].AssignmentCount = 3
	if err := store.ReplaceTimeline(ctx, "org-1", entries); err != nil {
		t.Fatalf("ReplaceTimeline rerun: %v", err)
	}

	got, err := store.TimelineEntries(ctx, "org-1")
	if err != nil {
		t.Fatalf("TimelineEntries: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 timeline entries, got %d", len(got))
	}
	if got[0].Date != "2019-03-01" || got[1].Date != "2020-06-15" {
		t.Fatalf("timeline not date-ordered: %s, %s", got[0].Date, got[1].Date)
	}
	if got[1].AssignmentCount != 3 {
		t.Fatalf("rerun did not overwrite count: %d", got[1].AssignmentCount)
	}
	if len(got[0].Types) != 2 {
		t.Fatalf("types did not round-trip: %v", got[0].Types)
	}
}

func TestEntitiesRebuild(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	first := []entities.Group{
		{
			CanonicalName: "Initech Inc",
			Members: []entities.Candidate{
				{Name: "Initech Inc", Occurrences: 3},
				{Name: "Initech Incorporated", Occurrences: 1},
			},
		},
		{
			CanonicalName: "Globex Corp",
			Members: []entities.Candidate{
				{Name: "Globex Corp", Occurrences: 1},
			},
		},
	}
	if err := store.ReplaceEntities(ctx, "org-1", first); err != nil {
		t.Fatalf("ReplaceEntities: %v", err)
	}

	second := []entities.Group{
		{
			CanonicalName: "Globex Corp",
			Members: []entities.Candidate{
				{Name: "Globex Corp", Occurrences: 5},
			},
		},
	}
	if err := store.ReplaceEntities(ctx, "org-1", second); err != nil {
		t.Fatalf("ReplaceEntities rebuild: %v", err)
	}

	got, err := store.Entities(ctx, "org-1")
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("rebuild should replace prior groups, got %d", len(got))
	}
	if got[0].CanonicalName != "Globex Corp" || got[0].Occurrences != 5 {
		t.Fatalf("unexpected entity: %+v", got[0])
	}
	if len(got[0].Aliases) != 1 || got[0].Aliases[0].Name != "Globex Corp" {
		t.Fatalf("aliases did not round-trip: %+v", got[0].Aliases)
	}
}

func TestSummaryAndFreshness(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	missing, err := store.SummaryFor(ctx, "org-1")
	if err != nil {
		t.Fatalf("SummaryFor: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil summary before any run, got %+v", missing)
	}

	summary := intel.Summary{
		OrgID:             "org-1",
		TotalAssets:       2,
		TotalEntities:     3,
		TotalTransactions: 4,
		CompleteCount:     1,
		BrokenCount:       0,
		EncumberedCount:   1,
	}
	if err := store.UpsertSummary(ctx, summary); err != nil {
		t.Fatalf("UpsertSummary: %v", err)
	}
	summary.BrokenCount = 1
	if err := store.UpsertSummary(ctx, summary); err != nil {
		t.Fatalf("UpsertSummary update: %v", err)
	}

	got, err := store.SummaryFor(ctx, "org-1")
	if err != nil {
		t.Fatalf("SummaryFor: %v", err)
	}
	if got == nil || got.BrokenCount != 1 || got.TotalAssets != 2 {
		t.Fatalf("unexpected summary: %+v", got)
	}

	completed := time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)
	if err := store.MarkFresh(ctx, "org-1", "run-key-1", completed); err != nil {
		t.Fatalf("MarkFresh: %v", err)
	}
	freshness, err := store.FreshnessFor(ctx, "org-1")
	if err != nil {
		t.Fatalf("FreshnessFor: %v", err)
	}
	if freshness == nil || freshness.RunKey != "run-key-1" {
		t.Fatalf("unexpected freshness: %+v", freshness)
	}
	if !freshness.CompletedAt.Equal(completed) {
		t.Fatalf("completed_at mismatch: %v", freshness.CompletedAt)
	}

	other, err := store.FreshnessFor(ctx, "org-2")
	if err != nil {
		t.Fatalf("FreshnessFor other org: %v", err)
	}
	if other != nil {
		t.Fatalf("expected nil freshness for unknown org, got %+v", other)
	}
}

func TestInventorsByPatent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	testsupport.ImportPortfolio(t, store, testsupport.SamplePortfolio(t, "org-1"))

	roster, err := store.InventorsByPatent(ctx, "org-1")
	if err != nil {
		t.Fatalf("InventorsByPatent: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected rosters for 2 patents, got %d", len(roster))
	}
	if len(roster["US1000002"]) != 1 || roster["US1000002"][0].MiddleName != "Brewster" {
		t.Fatalf("unexpected roster: %+v", roster["US1000002"])
	}
}
