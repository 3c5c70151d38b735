package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), "org-1", "run-key"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(http.StatusOK)
	}))
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var requests []captured
	server := newCaptureServer(t, &requests)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)
	ctx := context.Background()

	if err := svc.NotifyRunCompleted(ctx, "acme", "run-key-7"); err != nil {
		t.Fatalf("NotifyRunCompleted: %v", err)
	}
	if err := svc.NotifyRunFailed(ctx, "acme", 42, "step tree: storage failure"); err != nil {
		t.Fatalf("NotifyRunFailed: %v", err)
	}
	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}

	completed := requests[0]
	if completed.title != "PatenTrack - Analysis Complete" {
		t.Fatalf("unexpected title: %q", completed.title)
	}
	if !strings.Contains(completed.body, "acme") || !strings.Contains(completed.body, "run-key-7") {
		t.Fatalf("unexpected body: %q", completed.body)
	}
	if completed.priority != "" {
		t.Fatalf("completed should use default priority, got %q", completed.priority)
	}

	failed := requests[1]
	if failed.priority != "high" {
		t.Fatalf("failure should be high priority, got %q", failed.priority)
	}
	if !strings.Contains(failed.body, "storage failure") {
		t.Fatalf("unexpected failure body: %q", failed.body)
	}
	if failed.tags != "patenttrack,run,failed" {
		t.Fatalf("unexpected tags: %q", failed.tags)
	}
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error from non-2xx response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("unexpected error: %v", err)
	}
}
