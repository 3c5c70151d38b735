package api_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/api"
	"github.com/Synpathub/PatenTrack3/internal/pipeline"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
	"github.com/Synpathub/PatenTrack3/internal/testsupport"
)

func TestImportPortfoliosFromDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	testsupport.WritePortfolio(t, cfg.Paths.PortfolioDir, testsupport.SamplePortfolio(t, "org-1"))
	testsupport.WritePortfolio(t, cfg.Paths.PortfolioDir, testsupport.SamplePortfolio(t, "org-2"))

	result, err := api.ImportPortfolios(ctx, cfg, cfg.Paths.PortfolioDir)
	if err != nil {
		t.Fatalf("ImportPortfolios: %v", err)
	}
	if result.Files != 2 || result.Assets != 4 {
		t.Fatalf("unexpected import result: %+v", result)
	}

	orgs, err := api.ListOrgs(ctx, cfg)
	if err != nil {
		t.Fatalf("ListOrgs: %v", err)
	}
	if len(orgs) != 2 {
		t.Fatalf("expected 2 organizations, got %v", orgs)
	}
}

func TestImportPortfoliosSingleFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	path := testsupport.WritePortfolio(t, cfg.Paths.PortfolioDir, testsupport.SamplePortfolio(t, "org-1"))

	result, err := api.ImportPortfolios(context.Background(), cfg, path)
	if err != nil {
		t.Fatalf("ImportPortfolios: %v", err)
	}
	if result.Files != 1 || len(result.Orgs) != 1 || result.Orgs[0] != "org-1" {
		t.Fatalf("unexpected import result: %+v", result)
	}
}

func TestTriggerRunAndListRuns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	view, err := api.TriggerRun(ctx, cfg, "org-1")
	if err != nil {
		t.Fatalf("TriggerRun: %v", err)
	}
	if view.Status != string(queue.StatusWaiting) || view.Trigger != string(queue.TriggerManual) {
		t.Fatalf("unexpected run view: %+v", view)
	}

	if _, err := api.TriggerRun(ctx, cfg, "org-1"); !errors.Is(err, queue.ErrRunActive) {
		t.Fatalf("duplicate trigger error = %v, want ErrRunActive", err)
	}
	if _, err := api.TriggerRun(ctx, cfg, "  "); err == nil {
		t.Fatal("blank org id should be rejected")
	}

	runs, err := api.ListRuns(ctx, cfg, "waiting")
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].OrgID != "org-1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	if _, err := api.ListRuns(ctx, cfg, "bogus"); err == nil {
		t.Fatal("unknown status should be rejected")
	}
}

func TestOrgOverviewAfterPipeline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	istore := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	testsupport.ImportPortfolio(t, istore, testsupport.SamplePortfolio(t, "org-1"))

	run := &queue.Run{ID: 1, OrgID: "org-1", RunKey: "run-key-1"}
	p := pipeline.New(cfg, istore, nil)
	for _, handler := range p.Handlers() {
		if err := handler.Execute(ctx, run); err != nil {
			t.Fatalf("step %s: %v", handler.Name(), err)
		}
	}

	overview, err := api.OrgOverview(ctx, cfg, "org-1")
	if err != nil {
		t.Fatalf("OrgOverview: %v", err)
	}
	if overview.Summary == nil || overview.Summary.TotalAssets != 2 {
		t.Fatalf("unexpected summary: %+v", overview.Summary)
	}
	if overview.Freshness == nil {
		t.Fatal("expected freshness marker")
	}
	if len(overview.Dashboard) != 2 {
		t.Fatalf("expected 2 dashboard rows, got %d", len(overview.Dashboard))
	}
	if overview.TabCounts["complete"] != 1 || overview.TabCounts["encumbered"] != 1 {
		t.Fatalf("unexpected tab counts: %v", overview.TabCounts)
	}

	timeline, err := api.OrgTimeline(ctx, cfg, "org-1")
	if err != nil {
		t.Fatalf("OrgTimeline: %v", err)
	}
	if len(timeline) != 4 {
		t.Fatalf("expected 4 timeline rows, got %d", len(timeline))
	}

	entityRows, err := api.OrgEntities(ctx, cfg, "org-1")
	if err != nil {
		t.Fatalf("OrgEntities: %v", err)
	}
	if len(entityRows) != 5 {
		t.Fatalf("expected 5 entity rows, got %d", len(entityRows))
	}
}

func TestOrgOverviewUnknownOrg(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	_, err := api.OrgOverview(context.Background(), cfg, "nobody")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRetryRunsFromAPI(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	qstore := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := testsupport.NewRun(t, qstore, "org-1")
	run.SetFailed("induced failure")
	if err := qstore.Update(ctx, run); err != nil {
		t.Fatalf("Update: %v", err)
	}

	revived, err := api.RetryRuns(ctx, cfg, run.ID)
	if err != nil {
		t.Fatalf("RetryRuns: %v", err)
	}
	if revived != 1 {
		t.Fatalf("revived = %d, want 1", revived)
	}
}
