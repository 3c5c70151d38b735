package stage

import (
	"context"
	"log/slog"

	"github.com/Synpathub/PatenTrack3/internal/queue"
)

// Handler describes the contract the workflow manager needs from each
// pipeline step.
type Handler interface {
	Name() string
	Execute(context.Context, *queue.Run) error
	HealthCheck(context.Context) Health
}

// LoggerAware is implemented by handlers that accept a contextual logger
// before execution.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
