package workflow

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/notifications"
	"github.com/Synpathub/PatenTrack3/internal/pipeline"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/stage"
)

// HandlerSource resolves a step name to its handler. *pipeline.Pipeline
// satisfies it; tests substitute their own.
type HandlerSource interface {
	Handler(step string) stage.Handler
}

// Manager coordinates queue processing across the pipeline steps.
type Manager struct {
	cfg          *config.Config
	store        *queue.Store
	pipe         HandlerSource
	logger       *slog.Logger
	pollInterval time.Duration
	errorRetry   time.Duration
	stepOrder    []string

	heartbeat *HeartbeatMonitor
	notifier  notifications.Service
	sems      map[string]chan struct{}
	workers   int

	mu      sync.RWMutex
	running bool
	cancel  func()
	wg      sync.WaitGroup
	lastErr error
	lastRun *queue.Run
}

// NewManager constructs a workflow manager over a queue store and a
// pipeline handler set.
func NewManager(cfg *config.Config, store *queue.Store, pipe HandlerSource, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}

	order := pipeline.StepOrder()
	sems := make(map[string]chan struct{}, len(order))
	workers := 1
	for _, step := range order {
		count := cfg.WorkersFor(step)
		sems[step] = make(chan struct{}, count)
		if count > workers {
			workers = count
		}
	}

	return &Manager{
		cfg:          cfg,
		store:        store,
		pipe:         pipe,
		logger:       logger,
		pollInterval: time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		errorRetry:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		stepOrder:    order,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
			cfg.Workflow.MaxAttempts,
		),
		notifier: notifications.NewService(cfg),
		sems:     sems,
		workers:  workers,
	}
}

// SetNotifier overrides the push notification sink. Nil restores the
// config-derived default.
func (m *Manager) SetNotifier(n notifications.Service) {
	if n == nil {
		n = notifications.NewService(m.cfg)
	}
	m.notifier = n
}
