package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/daemon"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/pipeline"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/scheduler"
	"github.com/Synpathub/PatenTrack3/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		log.Fatalf("open queue store: %v", err)
	}

	intelStore, err := intel.Open(cfg)
	if err != nil {
		_ = store.Close()
		log.Fatalf("open intel store: %v", err)
	}
	defer intelStore.Close() //nolint:errcheck

	pipe := pipeline.New(cfg, intelStore, logger)
	workflowManager := workflow.NewManager(cfg, store, pipe, logger)
	sched := scheduler.New(cfg, store, intelStore, logger)

	d, err := daemon.New(cfg, store, workflowManager, sched, logger)
	if err != nil {
		_ = store.Close()
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close() //nolint:errcheck

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("patenttrackd shutting down")
}
