package scheduler_test

import (
	"context"
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/scheduler"
	"github.com/Synpathub/PatenTrack3/internal/testsupport"
)

func TestTriggerAllEnqueuesEveryOrg(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	qstore := testsupport.MustOpenStore(t, cfg)
	istore := testsupport.MustOpenIntel(t, cfg)
	ctx := context.Background()

	testsupport.ImportPortfolio(t, istore, testsupport.SamplePortfolio(t, "org-1"))
	testsupport.ImportPortfolio(t, istore, testsupport.SamplePortfolio(t, "org-2"))

	s := scheduler.New(cfg, qstore, istore, nil)
	s.TriggerAll(ctx)

	runs, err := qstore.List(ctx, queue.StatusWaiting)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected a run per organization, got %d", len(runs))
	}
	for _, run := range runs {
		if run.Trigger != queue.TriggerScheduled {
			t.Fatalf("run trigger = %s, want scheduled", run.Trigger)
		}
	}

	// A second sweep skips organizations that already have a live run.
	s.TriggerAll(ctx)
	runs, err = qstore.List(ctx, queue.StatusWaiting)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("second sweep duplicated runs: %d", len(runs))
	}
}

func TestStartDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.Enabled = false
	qstore := testsupport.MustOpenStore(t, cfg)
	istore := testsupport.MustOpenIntel(t, cfg)

	s := scheduler.New(cfg, qstore, istore, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("disabled Start should be a no-op, got %v", err)
	}
	s.Stop()
}

func TestStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.IntervalHours = 1
	qstore := testsupport.MustOpenStore(t, cfg)
	istore := testsupport.MustOpenIntel(t, cfg)

	s := scheduler.New(cfg, qstore, istore, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail while running")
	}
	s.Stop()
	s.Stop()
}
