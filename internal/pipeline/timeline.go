package pipeline

import (
	"context"
	"sort"

	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/logging"
	"github.com/Synpathub/PatenTrack3/internal/queue"
	"github.com/Synpathub/PatenTrack3/internal/services"
)

// timelineStep buckets an organization's recorded activity by record
// date. Assignments without a record date carry no position on a
// timeline and are skipped.
type timelineStep struct {
	base
}

func (s *timelineStep) Execute(ctx context.Context, run *queue.Run) error {
	assignments, err := s.store.AssignmentsByOrg(ctx, run.OrgID)
	if err != nil {
		return services.Wrap(services.ErrStorage, s.name, "load assignments", "", err)
	}

	type bucket struct {
		count int
		types map[string]struct{}
	}
	buckets := make(map[string]*bucket)
	for _, assignment := range assignments {
		if assignment.RecordDate == nil {
			continue
		}
		date := assignment.RecordDate.Format("2006-01-02")
		b := buckets[date]
		if b == nil {
			b = &bucket{types: make(map[string]struct{})}
			buckets[date] = b
		}
		b.count++
		if assignment.ConveyanceType != "" {
			b.types[string(assignment.ConveyanceType)] = struct{}{}
		}
	}

	entries := make([]intel.TimelineEntry, 0, len(buckets))
	for date, b := range buckets {
		types := make([]string, 0, len(b.types))
		for conveyType := range b.types {
			types = append(types, conveyType)
		}
		sort.Strings(types)
		entries = append(entries, intel.TimelineEntry{
			OrgID:           run.OrgID,
			Date:            date,
			AssignmentCount: b.count,
			Types:           types,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	if err := s.store.ReplaceTimeline(ctx, run.OrgID, entries); err != nil {
		return services.Wrap(services.ErrStorage, s.name, "write timeline", "", err)
	}

	s.logger.Info("built activity timeline",
		logging.String(logging.FieldOrgID, run.OrgID),
		logging.Int("dates", len(entries)))
	return nil
}
