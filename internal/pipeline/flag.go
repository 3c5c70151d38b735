package pipeline

import (
	"context"

	"github.com/Synpathub/PatenTrack3/internal/classify"
	"github.com/Synpathub/PatenTrack3/internal/inventors"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/registry"
	"github.com/Synpathub/PatenTrack3/internal/services"
)

// flagStep marks employer assignments the conveyance text alone cannot
// reveal: when the earliest ownership transfer of a patent lists one of
// its inventors as assignor, the chain starts with the inventor handing
// the patent to an employer.
type flagStep struct {
	base
}

func (s *flagStep) Execute(ctx context.Context, run *queue.Run) error {
	assignments, err := s.store.AssignmentsByOrg(ctx, run.OrgID)
	if err != nil {
		return services.Wrap(services.ErrStorage, s.name, "load assignments", "", err)
	}
	roster, err := s.store.InventorsByPatent(ctx, run.OrgID)
	if err != nil {
		return services.Wrap(services.ErrStorage, s.name, "load inventors", "", err)
	}

	threshold := s.cfg.Matching.InventorThreshold
	var flagged []int64
	seen := make(map[string]bool)
	for _, assignment := range assignments {
		if seen[assignment.PatentID] || !ownershipTransfer(assignment.ConveyanceType) {
			continue
		}
		// Rows arrive in chronological patent order, so the first
		// ownership transfer per patent is the chain start.
		seen[assignment.PatentID] = true
		if assignment.EmployerAssign {
			continue
		}
		match := inventors.MatchAssignment(toInventors(roster[assignment.PatentID]), assignment.Assignors, threshold)
		if match.IsEmployerAssignment {
			flagged = append(flagged, assignment.ID)
			s.logger.Debug("inventor matched chain start",
				logging.String(logging.FieldOrgID, run.OrgID),
				logging.String(logging.FieldPatentID, assignment.PatentID),
				logging.String("inventor", match.MatchedInventor),
				logging.String("assignor", match.MatchedAssignor))
		}
	}

	if err := s.store.SetEmployerAssign(ctx, flagged, true); err != nil {
		return services.Wrap(services.ErrStorage, s.name, "set employer flags", "", err)
	}

	s.logger.Info("flagged employer assignments",
		logging.String(logging.FieldOrgID, run.OrgID),
		logging.Int("flagged", len(flagged)))
	return nil
}

// ownershipTransfer reports whether a conveyance moves title rather than
// encumbering or annotating it.
func ownershipTransfer(conveyType classify.Type) bool {
	switch conveyType {
	case classify.TypeSecurity, classify.TypeRelease, classify.TypeLicense:
		return false
	}
	return true
}

func toInventors(roster []registry.Inventor) []inventors.Inventor {
	converted := make([]inventors.Inventor, len(roster))
	for i, inventor := range roster {
		converted[i] = inventors.Inventor{
			FirstName:  inventor.FirstName,
			MiddleName: inventor.MiddleName,
			LastName:   inventor.LastName,
		}
	}
	return converted
}
