package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/config"
)

const userAgent = "PatenTrack/0.1.0"

// Service defines the notification surface exposed to the workflow.
type Service interface {
	NotifyRunCompleted(ctx context.Context, orgID, runKey string) error
	NotifyRunFailed(ctx context.Context, orgID string, runID int64, cause string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic
// is configured, and a noop implementation otherwise.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, orgID, runKey string) error {
	orgID = strings.TrimSpace(orgID)
	data := payload{
		title:   "PatenTrack - Analysis Complete",
		message: fmt.Sprintf("Portfolio analysis complete for %s (run %s)", orgID, strings.TrimSpace(runKey)),
		tags:    []string{"patenttrack", "run", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, orgID string, runID int64, cause string) error {
	orgID = strings.TrimSpace(orgID)
	cause = strings.TrimSpace(cause)
	if cause == "" {
		cause = "unknown error"
	}
	data := payload{
		title:    "PatenTrack - Run Failed",
		message:  fmt.Sprintf("Run %d for %s failed: %s", runID, orgID, cause),
		tags:     []string{"patenttrack", "run", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "PatenTrack - Test",
		message:  "Notification system test",
		tags:     []string{"patenttrack", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, string) error     { return nil }
func (noopService) NotifyRunFailed(context.Context, string, int64, string) error { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
