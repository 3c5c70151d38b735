package intel

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/entities"
	"github.com/Synpathub/PatenTrack3/internal/tree"
)

// UpsertDashboardItem writes one per-patent dashboard row keyed by
// organization and patent.
func (s *Store) UpsertDashboardItem(ctx context.Context, item DashboardItem) error {
	treeJSON, err := json.Marshal(item.Tree)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	if item.ComputedAt.IsZero() {
		item.ComputedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO dashboard_items (org_id, patent_id, type, tab, is_broken, broken_reason, tree_json, computed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (org_id, patent_id) DO UPDATE SET
             type = excluded.type,
             tab = excluded.tab,
             is_broken = excluded.is_broken,
             broken_reason = excluded.broken_reason,
             tree_json = excluded.tree_json,
             computed_at = excluded.computed_at`,
		item.OrgID, item.PatentID, item.TypeCode, item.Tab,
		boolToInt(item.IsBroken), item.BrokenReason, string(treeJSON),
		item.ComputedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert dashboard item %s: %w", item.PatentID, err)
	}
	return nil
}

// UpdateDashboardTree replaces only the tree payload and tab of an
// existing row, creating it when absent. The tree stage writes trees
// before the broken-title stage fills in type codes.
func (s *Store) UpdateDashboardTree(ctx context.Context, orgID, patentID, tab string, nodes []tree.Node) error {
	treeJSON, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO dashboard_items (org_id, patent_id, tab, tree_json, computed_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (org_id, patent_id) DO UPDATE SET
             tab = excluded.tab,
             tree_json = excluded.tree_json,
             computed_at = excluded.computed_at`,
		orgID, patentID, tab, string(treeJSON), now,
	)
	if err != nil {
		return fmt.Errorf("update dashboard tree %s: %w", patentID, err)
	}
	return nil
}

// UpdateChainFindings records the chain-analysis verdict on a patent's
// dashboard row, creating the row when the tree stage has not written
// one yet.
func (s *Store) UpdateChainFindings(ctx context.Context, orgID, patentID string, isBroken bool, reason string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO dashboard_items (org_id, patent_id, is_broken, broken_reason, computed_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (org_id, patent_id) DO UPDATE SET
             is_broken = excluded.is_broken,
             broken_reason = excluded.broken_reason,
             computed_at = excluded.computed_at`,
		orgID, patentID, boolToInt(isBroken), reason, now,
	)
	if err != nil {
		return fmt.Errorf("update chain findings %s: %w", patentID, err)
	}
	return nil
}

// UpdateDashboardBucket records the final type code and tab on a
// patent's dashboard row.
func (s *Store) UpdateDashboardBucket(ctx context.Context, orgID, patentID string, typeCode int, tab string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO dashboard_items (org_id, patent_id, type, tab, computed_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (org_id, patent_id) DO UPDATE SET
             type = excluded.type,
             tab = excluded.tab,
             computed_at = excluded.computed_at`,
		orgID, patentID, typeCode, tab, now,
	)
	if err != nil {
		return fmt.Errorf("update dashboard bucket %s: %w", patentID, err)
	}
	return nil
}

// DashboardItems returns an organization's dashboard rows ordered by
// patent id.
func (s *Store) DashboardItems(ctx context.Context, orgID string) ([]DashboardItem, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT org_id, patent_id, type, tab, is_broken, broken_reason, tree_json, computed_at
         FROM dashboard_items WHERE org_id = ? ORDER BY patent_id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list dashboard items: %w", err)
	}
	defer rows.Close()

	var items []DashboardItem
	for rows.Next() {
		var (
			item        DashboardItem
			isBroken    int
			treeRaw     string
			computedRaw string
		)
		if err := rows.Scan(
			&item.OrgID, &item.PatentID, &item.TypeCode, &item.Tab,
			&isBroken, &item.BrokenReason, &treeRaw, &computedRaw,
		); err != nil {
			return nil, err
		}
		item.IsBroken = isBroken != 0
		if treeRaw != "" {
			if err := json.Unmarshal([]byte(treeRaw), &item.Tree); err != nil {
				return nil, fmt.Errorf("unmarshal tree %s: %w", item.PatentID, err)
			}
		}
		if computed, err := parseTimeString(computedRaw); err == nil {
			item.ComputedAt = computed
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReplaceTimeline upserts an organization's date buckets in one
// transaction, keyed by organization and date.
func (s *Store) ReplaceTimeline(ctx context.Context, orgID string, entries []TimelineEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timeline tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, entry := range entries {
		types, err := json.Marshal(entry.Types)
		if err != nil {
			return fmt.Errorf("marshal types: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO timeline_entries (org_id, entry_date, assignment_count, types, updated_at)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT (org_id, entry_date) DO UPDATE SET
                 assignment_count = excluded.assignment_count,
                 types = excluded.types,
                 updated_at = excluded.updated_at`,
			orgID, entry.Date, entry.AssignmentCount, string(types), now,
		); err != nil {
			return fmt.Errorf("upsert timeline %s: %w", entry.Date, err)
		}
	}
	return tx.Commit()
}

// TimelineEntries returns an organization's date buckets in ascending
// date order.
func (s *Store) TimelineEntries(ctx context.Context, orgID string) ([]TimelineEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT org_id, entry_date, assignment_count, types, updated_at
         FROM timeline_entries WHERE org_id = ? ORDER BY entry_date`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	defer rows.Close()

	var entries []TimelineEntry
	for rows.Next() {
		var (
			entry      TimelineEntry
			typesRaw   string
			updatedRaw string
		)
		if err := rows.Scan(&entry.OrgID, &entry.Date, &entry.AssignmentCount, &typesRaw, &updatedRaw); err != nil {
			return nil, err
		}
		if typesRaw != "" {
			if err := json.Unmarshal([]byte(typesRaw), &entry.Types); err != nil {
				return nil, fmt.Errorf("unmarshal types %s: %w", entry.Date, err)
			}
		}
		if updated, err := parseTimeString(updatedRaw); err == nil {
			entry.UpdatedAt = updated
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ReplaceEntities rebuilds an organization's entity groups from scratch.
// Entities are derived state with no stable identity across runs, so the
// whole set is swapped atomically rather than merged.
func (s *Store) ReplaceEntities(ctx context.Context, orgID string, groups []entities.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin entities tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE org_id = ?`, orgID); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}

	for _, group := range groups {
		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO entities (org_id, canonical_name, occurrences) VALUES (?, ?, ?)`,
			orgID, group.CanonicalName, group.TotalOccurrences(),
		)
		if err != nil {
			return fmt.Errorf("insert entity %q: %w", group.CanonicalName, err)
		}
		entityID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("entity id: %w", err)
		}
		for _, member := range group.Members {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO entity_aliases (entity_id, name, occurrences) VALUES (?, ?, ?)`,
				entityID, member.Name, member.Occurrences,
			); err != nil {
				return fmt.Errorf("insert alias %q: %w", member.Name, err)
			}
		}
	}
	return tx.Commit()
}

// Entities returns an organization's entity groups with aliases,
// highest occurrence first.
func (s *Store) Entities(ctx context.Context, orgID string) ([]Entity, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, org_id, canonical_name, occurrences
         FROM entities WHERE org_id = ? ORDER BY occurrences DESC, canonical_name`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	var list []Entity
	index := make(map[int64]int)
	for rows.Next() {
		var entity Entity
		if err := rows.Scan(&entity.ID, &entity.OrgID, &entity.CanonicalName, &entity.Occurrences); err != nil {
			return nil, err
		}
		index[entity.ID] = len(list)
		list = append(list, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	aliasRows, err := s.db.QueryContext(
		ctx,
		`SELECT ea.entity_id, ea.name, ea.occurrences
         FROM entity_aliases ea
         JOIN entities e ON e.id = ea.entity_id
         WHERE e.org_id = ? ORDER BY ea.entity_id, ea.id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer aliasRows.Close()

	for aliasRows.Next() {
		var (
			entityID int64
			alias    EntityAlias
		)
		if err := aliasRows.Scan(&entityID, &alias.Name, &alias.Occurrences); err != nil {
			return nil, err
		}
		if i, ok := index[entityID]; ok {
			list[i].Aliases = append(list[i].Aliases, alias)
		}
	}
	return list, aliasRows.Err()
}

// UpsertSummary writes the organization rollup, keyed by organization.
func (s *Store) UpsertSummary(ctx context.Context, summary Summary) error {
	if summary.ComputedAt.IsZero() {
		summary.ComputedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO summary_metrics (org_id, total_assets, total_entities, total_transactions,
             complete_count, broken_count, encumbered_count, computed_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (org_id) DO UPDATE SET
             total_assets = excluded.total_assets,
             total_entities = excluded.total_entities,
             total_transactions = excluded.total_transactions,
             complete_count = excluded.complete_count,
             broken_count = excluded.broken_count,
             encumbered_count = excluded.encumbered_count,
             computed_at = excluded.computed_at`,
		summary.OrgID, summary.TotalAssets, summary.TotalEntities, summary.TotalTransactions,
		summary.CompleteCount, summary.BrokenCount, summary.EncumberedCount,
		summary.ComputedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// SummaryFor returns the organization rollup, or nil when no run has
// written one yet.
func (s *Store) SummaryFor(ctx context.Context, orgID string) (*Summary, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT org_id, total_assets, total_entities, total_transactions,
             complete_count, broken_count, encumbered_count, computed_at
         FROM summary_metrics WHERE org_id = ?`,
		orgID,
	)
	var (
		summary     Summary
		computedRaw string
	)
	err := row.Scan(
		&summary.OrgID, &summary.TotalAssets, &summary.TotalEntities, &summary.TotalTransactions,
		&summary.CompleteCount, &summary.BrokenCount, &summary.EncumberedCount, &computedRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	if computed, err := parseTimeString(computedRaw); err == nil {
		summary.ComputedAt = computed
	}
	return &summary, nil
}

// MarkFresh records the completion marker for a finished run.
func (s *Store) MarkFresh(ctx context.Context, orgID, runKey string, completedAt time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO data_freshness (org_id, run_key, completed_at)
         VALUES (?, ?, ?)
         ON CONFLICT (org_id) DO UPDATE SET
             run_key = excluded.run_key,
             completed_at = excluded.completed_at`,
		orgID, runKey, completedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("mark freshness: %w", err)
	}
	return nil
}

// FreshnessFor returns the last completion marker for an organization,
// or nil when no run has finished.
func (s *Store) FreshnessFor(ctx context.Context, orgID string) (*Freshness, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT org_id, run_key, completed_at FROM data_freshness WHERE org_id = ?`,
		orgID,
	)
	var (
		freshness    Freshness
		completedRaw string
	)
	err := row.Scan(&freshness.OrgID, &freshness.RunKey, &completedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get freshness: %w", err)
	}
	if completed, err := parseTimeString(completedRaw); err == nil {
		freshness.CompletedAt = completed
	}
	return &freshness, nil
}
