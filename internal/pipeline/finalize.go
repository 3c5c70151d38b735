package pipeline

import (
	"context"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
)

// finalizeStep stamps the freshness marker consumers use to tell how
// current an organization's derived data is.
type finalizeStep struct {
	base
}

func (s *finalizeStep) Execute(ctx context.Context, run *queue.Run) error {
	if err := s.store.MarkFresh(ctx, run.OrgID, run.RunKey, time.Now().UTC()); err != nil {
		return services.Wrap(services.ErrStorage, s.name, "mark freshness", "", err)
	}
	s.logger.Info("run results published",
		logging.String(logging.FieldOrgID, run.OrgID),
		logging.String("run_key", run.RunKey))
	return nil
}
