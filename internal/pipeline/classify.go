package pipeline

import (
	"context"

	"github.com/Synpathub/PatenTrack3/internal/classify"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
)

// classifyStep stamps a conveyance type on every assignment that lacks
// one. Re-imports clear the type when the conveyance text changed, so
// this step only touches rows that actually need work.
type classifyStep struct {
	base
}

func (s *classifyStep) Execute(ctx context.Context, run *queue.Run) error {
	pending, err := s.store.UnclassifiedAssignments(ctx, run.OrgID)
	if err != nil {
		return services.Wrap(services.ErrStorage, s.name, "load unclassified", "", err)
	}
	if len(pending) == 0 {
		s.logger.Info("no assignments to classify",
			logging.String(logging.FieldOrgID, run.OrgID))
		return nil
	}

	results := make([]intel.Classification, 0, len(pending))
	for _, assignment := range pending {
		conveyType, employer := classify.Classify(assignment.ConveyText)
		results = append(results, intel.Classification{
			AssignmentID:   assignment.ID,
			ConveyanceType: conveyType,
			EmployerAssign: employer,
		})
	}
	if err := s.store.SaveClassifications(ctx, results); err != nil {
		return services.Wrap(services.ErrStorage, s.name, "save classifications", "", err)
	}

	s.logger.Info("classified assignments",
		logging.String(logging.FieldOrgID, run.OrgID),
		logging.Int("classified", len(results)))
	return nil
}
