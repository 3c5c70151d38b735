package testsupport

import (
	"context"
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenIntel opens an intel.Store for tests and registers cleanup.
func MustOpenIntel(t testing.TB, cfg *config.Config) *intel.Store {
	t.Helper()

	store, err := intel.Open(cfg)
	if err != nil {
		t.Fatalf("intel.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewRun enqueues a manual run for tests using the provided store.
func NewRun(t testing.TB, store *queue.Store, orgID string) *queue.Run {
	t.Helper()

	run, err := store.Enqueue(context.Background(), orgID, queue.TriggerManual)
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return run
}
