package pipeline

import (
	"context"

	"github.com/Synpathub/PatenTrack3/internal/entities"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
)

// summaryStep rebuilds the organization's entity groups from all party
// names seen across its assignments and writes the rollup counts.
type summaryStep struct {
	base
}

func (s *summaryStep) Execute(ctx context.Context, run *queue.Run) error {
	assets, err := s.store.Assets(ctx, run.OrgID)
	if err != nil {
		return services.Wrap(services.ErrStorage, s.name, "load assets", "", err)
	}
	assignments, err := s.store.AssignmentsByOrg(ctx, run.OrgID)
	if err != nil {
		return services.Wrap(services.ErrStorage, s.name, "load assignments", "", err)
	}

	occurrences := make(map[string]int)
	for _, assignment := range assignments {
		for _, name := range assignment.Assignors {
			occurrences[name]++
		}
		for _, name := range assignment.Assignees {
			occurrences[name]++
		}
	}
	candidates := make([]entities.Candidate, 0, len(occurrences))
	for name, count := range occurrences {
		candidates = append(candidates, entities.Candidate{Name: name, Occurrences: count})
	}
	groups := entities.GroupCandidates(candidates, s.cfg.Matching.EntityThreshold)
	if err := s.store.ReplaceEntities(ctx, run.OrgID, groups); err != nil {
		return services.Wrap(services.ErrStorage, s.name, "write entities", "", err)
	}

	items, err := s.store.DashboardItems(ctx, run.OrgID)
	if err != nil {
		return services.Wrap(services.ErrStorage, s.name, "load dashboard items", "", err)
	}
	summary := intel.Summary{
		OrgID:             run.OrgID,
		TotalAssets:       len(assets),
		TotalEntities:     len(groups),
		TotalTransactions: len(assignments),
	}
	for _, item := range items {
		switch item.Tab {
		case intel.TabComplete:
			summary.CompleteCount++
		case intel.TabBroken:
			summary.BrokenCount++
		case intel.TabEncumbered:
			summary.EncumberedCount++
		}
	}
	if err := s.store.UpsertSummary(ctx, summary); err != nil {
		return services.Wrap(services.ErrStorage, s.name, "write summary", "", err)
	}

	s.logger.Info("wrote organization summary",
		logging.String(logging.FieldOrgID, run.OrgID),
		logging.Int("entities", len(groups)),
		logging.Int("assets", len(assets)))
	return nil
}
