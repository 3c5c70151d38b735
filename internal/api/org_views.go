package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
)

// ListOrgs returns every organization with imported assets.
func ListOrgs(ctx context.Context, cfg *config.Config) ([]string, error) {
	store, err := intel.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open intel store: %w", err)
	}
	defer store.Close()

	return store.OrgIDs(ctx)
}

// OrgOverview assembles the status view for one organization: rollup
// metrics, freshness, per-patent chain states, and recent runs.
func OrgOverview(ctx context.Context, cfg *config.Config, orgID string) (*Overview, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("organization id is required")
	}

	istore, err := intel.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open intel store: %w", err)
	}
	defer istore.Close()

	assets, err := istore.Assets(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "api", "org overview",
			fmt.Sprintf("organization %s has no imported assets", orgID), nil)
	}

	overview := &Overview{OrgID: orgID, TabCounts: make(map[string]int)}
	if overview.Summary, err = istore.SummaryFor(ctx, orgID); err != nil {
		return nil, err
	}
	if overview.Freshness, err = istore.FreshnessFor(ctx, orgID); err != nil {
		return nil, err
	}

	items, err := istore.DashboardItems(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		overview.Dashboard = append(overview.Dashboard, DashboardRow{
			PatentID:     item.PatentID,
			Tab:          item.Tab,
			TypeCode:     item.TypeCode,
			IsBroken:     item.IsBroken,
			BrokenReason: item.BrokenReason,
			NodeCount:    len(item.Tree),
		})
		overview.TabCounts[item.Tab]++
	}

	qstore, err := queue.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open queue store: %w", err)
	}
	defer qstore.Close()

	runs, err := qstore.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for i, run := range runs {
		view := FromRun(run)
		if run.Status == queue.StatusWaiting || run.Status == queue.StatusActive {
			overview.ActiveRun = &view
		}
		if i < 5 {
			overview.RecentRuns = append(overview.RecentRuns, view)
		}
	}
	if overview.QueueHealth, err = qstore.Health(ctx); err != nil {
		return nil, err
	}
	return overview, nil
}

// OrgTimeline returns an organization's activity buckets for rendering.
func OrgTimeline(ctx context.Context, cfg *config.Config, orgID string) ([]TimelineRow, error) {
	store, err := intel.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open intel store: %w", err)
	}
	defer store.Close()

	entries, err := store.TimelineEntries(ctx, orgID)
	if err != nil {
		return nil, err
	}
	rows := make([]TimelineRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, TimelineRow{
			Date:            entry.Date,
			AssignmentCount: entry.AssignmentCount,
			Types:           strings.Join(entry.Types, ", "),
		})
	}
	return rows, nil
}

// OrgEntities returns an organization's canonical parties for rendering.
func OrgEntities(ctx context.Context, cfg *config.Config, orgID string) ([]EntityRow, error) {
	store, err := intel.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open intel store: %w", err)
	}
	defer store.Close()

	groups, err := store.Entities(ctx, orgID)
	if err != nil {
		return nil, err
	}
	rows := make([]EntityRow, 0, len(groups))
	for _, group := range groups {
		aliases := make([]string, 0, len(group.Aliases))
		for _, alias := range group.Aliases {
			if alias.Name != group.CanonicalName {
				aliases = append(aliases, alias.Name)
			}
		}
		rows = append(rows, EntityRow{
			CanonicalName: group.CanonicalName,
			Occurrences:   group.Occurrences,
			Aliases:       strings.Join(aliases, ", "),
		})
	}
	return rows, nil
}
