package pipeline

import (
	"context"

	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
	"github.com/Synpathub/PatenTrack3/internal/tree"
)

// treeStep renders each patent's classified history into the ownership
// diagram nodes the dashboard serves. A failing patent is logged and
// skipped so one bad history never blocks the rest of the portfolio.
type treeStep struct {
	base
}

func (s *treeStep) Execute(ctx context.Context, run *queue.Run) error {
	byPatent, order, err := s.transactionsByPatent(ctx, run.OrgID)
	if err != nil {
		return err
	}

	var failures int
	for _, patentID := range order {
		nodes := tree.Build(byPatent[patentID])
		tab := intel.TabComplete
		if tree.HasEncumbrance(nodes) {
			tab = intel.TabEncumbered
		}
		if err := s.store.UpdateDashboardTree(ctx, run.OrgID, patentID, tab, nodes); err != nil {
			failures++
			s.logger.Error("tree build failed",
				logging.String(logging.FieldOrgID, run.OrgID),
				logging.String(logging.FieldPatentID, patentID),
				logging.Error(err))
		}
	}
	if failures > 0 && failures == len(order) {
		return services.Wrap(services.ErrStorage, s.name, "write trees", "every patent failed", nil)
	}

	s.logger.Info("built ownership trees",
		logging.String(logging.FieldOrgID, run.OrgID),
		logging.Int("patents", len(order)),
		logging.Int("failures", failures))
	return nil
}
