// Package pipeline implements the ordered analysis steps a run walks
// through: classification, inventor flagging, diagram building, timeline
// bucketing, chain analysis, dashboard bucketing, the organization
// rollup, and the completion marker. Every step is idempotent and reads
// its inputs back from the intel store, so a retried run can resume at
// any step boundary.
package pipeline

import (
	"log/slog"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/stage"
)

// Step names in execution order. These strings are also the durable
// completion markers recorded on each run.
const (
	StepClassify    = "classify"
	StepFlag        = "flag"
	StepTree        = "tree"
	StepTimeline    = "timeline"
	StepBrokenTitle = "broken_title"
	StepDashboard   = "dashboard"
	StepSummary     = "summary"
	StepFinalize    = "finalize"
)

// StepOrder returns the canonical execution order.
func StepOrder() []string {
	return []string{
		StepClassify,
		StepFlag,
		StepTree,
		StepTimeline,
		StepBrokenTitle,
		StepDashboard,
		StepSummary,
		StepFinalize,
	}
}

// Pipeline bundles the step handlers sharing one intel store.
type Pipeline struct {
	handlers map[string]stage.Handler
}

// New constructs the full handler set.
func New(cfg *config.Config, store *intel.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	deps := deps{cfg: cfg, store: store, logger: logger}
	handlers := map[string]stage.Handler{
		StepClassify:    &classifyStep{base: newBase(StepClassify, deps)},
		StepFlag:        &flagStep{base: newBase(StepFlag, deps)},
		StepTree:        &treeStep{base: newBase(StepTree, deps)},
		StepTimeline:    &timelineStep{base: newBase(StepTimeline, deps)},
		StepBrokenTitle: &brokenTitleStep{base: newBase(StepBrokenTitle, deps)},
		StepDashboard:   &dashboardStep{base: newBase(StepDashboard, deps)},
		StepSummary:     &summaryStep{base: newBase(StepSummary, deps)},
		StepFinalize:    &finalizeStep{base: newBase(StepFinalize, deps)},
	}
	return &Pipeline{handlers: handlers}
}

// Handler returns the handler for a step name, or nil for an unknown
// step.
func (p *Pipeline) Handler(step string) stage.Handler {
	return p.handlers[step]
}

// Handlers returns the handlers in execution order.
func (p *Pipeline) Handlers() []stage.Handler {
	ordered := make([]stage.Handler, 0, len(p.handlers))
	for _, step := range StepOrder() {
		ordered = append(ordered, p.handlers[step])
	}
	return ordered
}
