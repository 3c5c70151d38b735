package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.PortfolioDir = filepath.Join(base, "portfolios")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return builder.cfg
}

// WithMatchingThresholds overrides all three fuzzy-match thresholds.
func WithMatchingThresholds(chain, entity, inventor int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.ChainThreshold = chain
		b.cfg.Matching.EntityThreshold = entity
		b.cfg.Matching.InventorThreshold = inventor
	}
}

// WithMaxAttempts overrides the workflow retry budget.
func WithMaxAttempts(attempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.MaxAttempts = attempts
	}
}

// WithStageWorkers sets the worker count for one pipeline step.
func WithStageWorkers(step string, workers int) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Workflow.StageWorkers == nil {
			b.cfg.Workflow.StageWorkers = map[string]int{}
		}
		b.cfg.Workflow.StageWorkers[step] = workers
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
