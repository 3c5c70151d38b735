package pipeline

import (
	"context"

	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
	"github.com/Synpathub/PatenTrack3/internal/title"
)

// dashboardStep assigns the final type code and tab to every patent.
// Broken chains outrank encumbrances, which outrank clean chains; a
// patent with no recorded history lands in the other tab.
type dashboardStep struct {
	base
}

func (s *dashboardStep) Execute(ctx context.Context, run *queue.Run) error {
	byPatent, order, err := s.transactionsByPatent(ctx, run.OrgID)
	if err != nil {
		return err
	}

	threshold := s.cfg.Matching.ChainThreshold
	var failures int
	for _, patentID := range order {
		analysis := title.Analyze(byPatent[patentID], threshold)
		if err := s.store.UpdateDashboardBucket(ctx, run.OrgID, patentID, analysis.DashboardCode, tabFor(analysis.Status)); err != nil {
			failures++
			s.logger.Error("dashboard bucket write failed",
				logging.String(logging.FieldOrgID, run.OrgID),
				logging.String(logging.FieldPatentID, patentID),
				logging.Error(err))
		}
	}
	if failures > 0 && failures == len(order) {
		return services.Wrap(services.ErrStorage, s.name, "write dashboard buckets", "every patent failed", nil)
	}

	s.logger.Info("bucketed dashboard",
		logging.String(logging.FieldOrgID, run.OrgID),
		logging.Int("patents", len(order)),
		logging.Int("failures", failures))
	return nil
}

func tabFor(status title.Status) string {
	switch status {
	case title.StatusBroken:
		return intel.TabBroken
	case title.StatusEncumbered:
		return intel.TabEncumbered
	case title.StatusComplete:
		return intel.TabComplete
	default:
		return intel.TabOther
	}
}
