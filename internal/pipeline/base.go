package pipeline

import (
	"context"
	"log/slog"

	"github.com/Synpathub/PatenTrack3/internal/config"
	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/services"
	"github.com/Synpathub/PatenTrack3/internal/stage"
	"github.com/Synpathub/PatenTrack3/internal/title"
)

type deps struct {
	cfg    *config.Config
	store  *intel.Store
	logger *slog.Logger
}

type base struct {
	name string
	deps
}

func newBase(name string, d deps) base {
	return base{name: name, deps: d}
}

func (b *base) Name() string {
	return b.name
}

// SetLogger implements stage.LoggerAware.
func (b *base) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

func (b *base) HealthCheck(ctx context.Context) stage.Health {
	if b.store == nil {
		return stage.Unhealthy(b.name, "intel store unavailable")
	}
	return stage.Healthy(b.name)
}

// transactionsByPatent loads an organization's classified history as
// chain transactions, keyed by patent id and sorted chronologically.
// Patents without any recorded transactions are present with a nil slice
// so downstream steps still produce rows for them.
func (b *base) transactionsByPatent(ctx context.Context, orgID string) (map[string][]title.Transaction, []string, error) {
	assets, err := b.store.Assets(ctx, orgID)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrStorage, b.name, "load assets", "", err)
	}
	assignments, err := b.store.AssignmentsByOrg(ctx, orgID)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrStorage, b.name, "load assignments", "", err)
	}

	byPatent := make(map[string][]title.Transaction, len(assets))
	order := make([]string, 0, len(assets))
	for _, asset := range assets {
		byPatent[asset.PatentID] = nil
		order = append(order, asset.PatentID)
	}
	for _, assignment := range assignments {
		if _, ok := byPatent[assignment.PatentID]; !ok {
			continue
		}
		byPatent[assignment.PatentID] = append(byPatent[assignment.PatentID], title.Transaction{
			RFID:           assignment.RFID,
			AssignorNames:  assignment.Assignors,
			AssigneeNames:  assignment.Assignees,
			Type:           assignment.ConveyanceType,
			EmployerAssign: assignment.EmployerAssign,
			RecordDate:     assignment.RecordDate,
		})
	}
	for patentID := range byPatent {
		title.SortTransactions(byPatent[patentID])
	}
	return byPatent, order, nil
}
