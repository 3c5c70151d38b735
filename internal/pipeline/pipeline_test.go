package pipeline_test

import (
	"context"
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/pipeline"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/testsupport"
	"github.com/Synpathub/PatenTrack3/internal/title"
)

func runAllSteps(t *testing.T, p *pipeline.Pipeline, run *queue.Run) {
	t.Helper()
	ctx := context.Background()
	for _, handler := range p.Handlers() {
		if err := handler.Execute(ctx, run); err != nil {
			t.Fatalf("step %s: %v", handler.Name(), err)
		}
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	testsupport.ImportPortfolio(t, store, testsupport.SamplePortfolio(t, "org-1"))

	p := pipeline.New(cfg, store, nil)
	run := &queue.Run{ID: 1, OrgID: "org-1", RunKey: "run-key-1"}
	runAllSteps(t, p, run)

	// Classification stamped every row.
	pending, err := store.UnclassifiedAssignments(ctx, "org-1")
	if err != nil {
		t.Fatalf("UnclassifiedAssignments: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected all rows classified, %d pending", len(pending))
	}

	// The inventor-matched chain starts carry the employer flag.
	assignments, err := store.AssignmentsByOrg(ctx, "org-1")
	if err != nil {
		t.Fatalf("AssignmentsByOrg: %v", err)
	}
	flagged := map[string]bool{}
	for _, assignment := range assignments {
		flagged[assignment.RFID] = assignment.EmployerAssign
	}
	if !flagged["1001-0001"] || !flagged["1002-0001"] {
		t.Fatalf("inventor-assigned chain starts not flagged: %v", flagged)
	}
	if flagged["1001-0002"] || flagged["1002-0002"] {
		t.Fatalf("employer flag leaked to later transactions: %v", flagged)
	}

	// Dashboard: first patent is a clean chain, second carries an
	// unreleased security interest.
	items, err := store.DashboardItems(ctx, "org-1")
	if err != nil {
		t.Fatalf("DashboardItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 dashboard rows, got %d", len(items))
	}
	byPatent := map[string]intel.DashboardItem{}
	for _, item := range items {
		byPatent[item.PatentID] = item
	}
	clean := byPatent["US1000001"]
	if clean.Tab != intel.TabComplete || clean.TypeCode != title.DashboardComplete || clean.IsBroken {
		t.Fatalf("unexpected clean-chain row: %+v", clean)
	}
	if len(clean.Tree) != 2 {
		t.Fatalf("expected 2 tree nodes, got %d", len(clean.Tree))
	}
	encumbered := byPatent["US1000002"]
	if encumbered.Tab != intel.TabEncumbered || encumbered.TypeCode != title.DashboardEncumbered {
		t.Fatalf("unexpected encumbered row: %+v", encumbered)
	}
	if encumbered.IsBroken {
		t.Fatalf("encumbered chain misreported as broken: %+v", encumbered)
	}

	// Timeline has one bucket per distinct record date.
	timeline, err := store.TimelineEntries(ctx, "org-1")
	if err != nil {
		t.Fatalf("TimelineEntries: %v", err)
	}
	if len(timeline) != 4 {
		t.Fatalf("expected 4 timeline buckets, got %d", len(timeline))
	}
	if timeline[0].Date != "2018-11-20" {
		t.Fatalf("timeline not ordered: %s", timeline[0].Date)
	}
	last := timeline[len(timeline)-1]
	if last.Date != "2021-01-10" || len(last.Types) != 1 || last.Types[0] != "security" {
		t.Fatalf("unexpected last bucket: %+v", last)
	}

	// Entities: five distinct parties, none close enough to merge.
	groups, err := store.Entities(ctx, "org-1")
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(groups) != 5 {
		t.Fatalf("expected 5 entity groups, got %d", len(groups))
	}
	// Initech appears four times across the fixture: assignee on both
	// first transfers, assignor on both follow-ups.
	if groups[0].CanonicalName != "Initech Inc" || groups[0].Occurrences != 4 {
		t.Fatalf("most frequent entity should lead: %+v", groups[0])
	}

	summary, err := store.SummaryFor(ctx, "org-1")
	if err != nil {
		t.Fatalf("SummaryFor: %v", err)
	}
	if summary == nil {
		t.Fatal("expected a summary row")
	}
	if summary.TotalAssets != 2 || summary.TotalTransactions != 4 || summary.TotalEntities != 5 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.CompleteCount != 1 || summary.EncumberedCount != 1 || summary.BrokenCount != 0 {
		t.Fatalf("unexpected tab counts: %+v", summary)
	}

	freshness, err := store.FreshnessFor(ctx, "org-1")
	if err != nil {
		t.Fatalf("FreshnessFor: %v", err)
	}
	if freshness == nil || freshness.RunKey != "run-key-1" {
		t.Fatalf("unexpected freshness: %+v", freshness)
	}
}

func TestPipelineIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	testsupport.ImportPortfolio(t, store, testsupport.SamplePortfolio(t, "org-1"))

	p := pipeline.New(cfg, store, nil)
	run := &queue.Run{ID: 1, OrgID: "org-1", RunKey: "run-key-1"}
	runAllSteps(t, p, run)
	runAllSteps(t, p, run)

	items, err := store.DashboardItems(ctx, "org-1")
	if err != nil {
		t.Fatalf("DashboardItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("second run duplicated dashboard rows: %d", len(items))
	}
	timeline, err := store.TimelineEntries(ctx, "org-1")
	if err != nil {
		t.Fatalf("TimelineEntries: %v", err)
	}
	if len(timeline) != 4 {
		t.Fatalf("second run duplicated timeline buckets: %d", len(timeline))
	}
	groups, err := store.Entities(ctx, "org-1")
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(groups) != 5 {
		t.Fatalf("second run duplicated entities: %d", len(groups))
	}
}

func TestPipelineBrokenChain(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	portfolio := testsupport.SamplePortfolio(t, "org-1")
	// Sever the first patent's chain: the second transfer now comes
	// from a stranger.
	portfolio.Patents[0].Transactions[1].AssignorNames = []string{"Completely Unrelated Holdings"}
	testsupport.ImportPortfolio(t, store, portfolio)

	p := pipeline.New(cfg, store, nil)
	run := &queue.Run{ID: 1, OrgID: "org-1", RunKey: "run-key-1"}
	runAllSteps(t, p, run)

	items, err := store.DashboardItems(ctx, "org-1")
	if err != nil {
		t.Fatalf("DashboardItems: %v", err)
	}
	var broken *intel.DashboardItem
	for i := range items {
		if items[i].PatentID == "US1000001" {
			broken = &items[i]
		}
	}
	if broken == nil {
		t.Fatal("missing dashboard row for severed chain")
	}
	if !broken.IsBroken || broken.Tab != intel.TabBroken || broken.TypeCode != title.DashboardBroken {
		t.Fatalf("severed chain not reported broken: %+v", broken)
	}
	if broken.BrokenReason == "" {
		t.Fatal("expected a break reason")
	}

	summary, err := store.SummaryFor(ctx, "org-1")
	if err != nil {
		t.Fatalf("SummaryFor: %v", err)
	}
	if summary.BrokenCount != 1 {
		t.Fatalf("summary broken count = %d, want 1", summary.BrokenCount)
	}
}

func TestHandlersCoverEveryStep(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenIntel(t, cfg)

	p := pipeline.New(cfg, store, nil)
	for _, step := range pipeline.StepOrder() {
		handler := p.Handler(step)
		if handler == nil {
			t.Fatalf("no handler for step %s", step)
		}
		if handler.Name() != step {
			t.Fatalf("handler name %s != step %s", handler.Name(), step)
		}
		if health := handler.HealthCheck(context.Background()); !health.Ready {
			t.Fatalf("handler %s unhealthy: %s", step, health.Detail)
		}
	}
	if p.Handler("bogus") != nil {
		t.Fatal("unknown step returned a handler")
	}
}
