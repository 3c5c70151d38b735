package pipeline

import (
	"context"

	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
	"github.com/Synpathub/PatenTrack3/internal/title"
)

// brokenTitleStep runs the chain-of-title analysis for every patent and
// records continuity breaks on the dashboard rows.
type brokenTitleStep struct {
	base
}

func (s *brokenTitleStep) Execute(ctx context.Context, run *queue.Run) error {
	byPatent, order, err := s.transactionsByPatent(ctx, run.OrgID)
	if err != nil {
		return err
	}

	threshold := s.cfg.Matching.ChainThreshold
	var broken, failures int
	for _, patentID := range order {
		analysis := title.Analyze(byPatent[patentID], threshold)
		isBroken := analysis.Status == title.StatusBroken
		reason := ""
		if len(analysis.Breaks) > 0 {
			reason = analysis.Breaks[0].Reason
		}
		if isBroken {
			broken++
		}
		if err := s.store.UpdateChainFindings(ctx, run.OrgID, patentID, isBroken, reason); err != nil {
			failures++
			s.logger.Error("chain findings write failed",
				logging.String(logging.FieldOrgID, run.OrgID),
				logging.String(logging.FieldPatentID, patentID),
				logging.Error(err))
		}
	}
	if failures > 0 && failures == len(order) {
		return services.Wrap(services.ErrStorage, s.name, "write chain findings", "every patent failed", nil)
	}

	s.logger.Info("analyzed chains of title",
		logging.String(logging.FieldOrgID, run.OrgID),
		logging.Int("patents", len(order)),
		logging.Int("broken", broken),
		logging.Int("failures", failures))
	return nil
}
