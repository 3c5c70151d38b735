package api

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/registry"
)

// ImportResult reports what a portfolio import touched.
type ImportResult struct {
	Files  int
	Orgs   []string
	Assets int
}

// ImportPortfolios loads one portfolio file or every *.json portfolio in
// a directory into the intel store.
func ImportPortfolios(ctx context.Context, cfg *config.Config, path string) (*ImportResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var portfolios []*registry.Portfolio
	if info.IsDir() {
		portfolios, err = registry.LoadDir(path)
	} else {
		var portfolio *registry.Portfolio
		portfolio, err = registry.LoadPortfolio(path)
		if portfolio != nil {
			portfolios = []*registry.Portfolio{portfolio}
		}
	}
	if err != nil {
		return nil, err
	}
	if len(portfolios) == 0 {
		return nil, fmt.Errorf("no portfolio files found in %s", path)
	}

	store, err := intel.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open intel store: %w", err)
	}
	defer store.Close()

	result := &ImportResult{Files: len(portfolios)}
	for _, portfolio := range portfolios {
		if err := store.ImportPortfolio(ctx, portfolio); err != nil {
			return nil, fmt.Errorf("import %s: %w", portfolio.OrgID, err)
		}
		result.Orgs = append(result.Orgs, portfolio.OrgID)
		result.Assets += len(portfolio.Patents)
	}
	return result, nil
}

// TriggerRun enqueues a manual run for an organization.
func TriggerRun(ctx context.Context, cfg *config.Config, orgID string) (*RunView, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("organization id is required")
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	run, err := store.Enqueue(ctx, orgID, queue.TriggerManual)
	if err != nil {
		return nil, err
	}
	view := FromRun(run)
	return &view, nil
}

// ListRuns returns runs filtered by optional status names, newest last.
func ListRuns(ctx context.Context, cfg *config.Config, statusNames ...string) ([]RunView, error) {
	statuses := make([]queue.Status, 0, len(statusNames))
	for _, name := range statusNames {
		status, ok := queue.ParseStatus(name)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", name)
		}
		statuses = append(statuses, status)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	runs, err := store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	views := make([]RunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, FromRun(run))
	}
	return views, nil
}

// RetryRuns revives failed or dead-letter runs. Without ids every
// retryable run is revived.
func RetryRuns(ctx context.Context, cfg *config.Config, ids ...int64) (int64, error) {
	store, err := queue.Open(cfg)
	if err != nil {
		return 0, fmt.Errorf("open queue store: %w", err)
	}
	defer store.Close()

	return store.RetryRuns(ctx, ids...)
}
