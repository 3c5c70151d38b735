package intel

import (
	"context"
	"fmt"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/registry"
)

// ImportPortfolio upserts an organization's monitored asset set. Assets
// and assignments are keyed by their natural keys, so re-importing the
// same portfolio is a no-op. When an assignment's conveyance text has
// changed since the last import its derived classification is cleared,
// which makes the classify stage pick the row up again on the next run.
func (s *Store) ImportPortfolio(ctx context.Context, portfolio *registry.Portfolio) error {
	if portfolio == nil {
		return fmt.Errorf("portfolio is nil")
	}
	if err := portfolio.Validate(); err != nil {
		return fmt.Errorf("validate portfolio: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	orgID := portfolio.OrgID

	for _, patent := range portfolio.Patents {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO org_assets (org_id, patent_id, title, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT (org_id, patent_id) DO UPDATE SET
                 title = excluded.title,
                 updated_at = excluded.updated_at`,
			orgID, patent.PatentID, patent.Title, now, now,
		)
		if err != nil {
			return fmt.Errorf("upsert asset %s: %w", patent.PatentID, err)
		}

		if _, err = tx.ExecContext(
			ctx,
			`DELETE FROM patent_inventors WHERE org_id = ? AND patent_id = ?`,
			orgID, patent.PatentID,
		); err != nil {
			return fmt.Errorf("clear inventors %s: %w", patent.PatentID, err)
		}
		for _, inventor := range patent.Inventors {
			if _, err = tx.ExecContext(
				ctx,
				`INSERT INTO patent_inventors (org_id, patent_id, first_name, middle_name, last_name)
                 VALUES (?, ?, ?, ?, ?)`,
				orgID, patent.PatentID, inventor.FirstName, inventor.MiddleName, inventor.LastName,
			); err != nil {
				return fmt.Errorf("insert inventor for %s: %w", patent.PatentID, err)
			}
		}

		for _, record := range patent.Transactions {
			_, err = tx.ExecContext(
				ctx,
				`INSERT INTO org_assignments (org_id, patent_id, rf_id, convey_text, record_date, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?)
                 ON CONFLICT (org_id, patent_id, rf_id) DO UPDATE SET
                     conveyance_type = CASE
                         WHEN org_assignments.convey_text <> excluded.convey_text THEN NULL
                         ELSE org_assignments.conveyance_type
                     END,
                     convey_text = excluded.convey_text,
                     record_date = excluded.record_date,
                     updated_at = excluded.updated_at`,
				orgID, patent.PatentID, record.RFID, record.ConveyText,
				nullableTime(record.RecordDate.Ptr()), now,
			)
			if err != nil {
				return fmt.Errorf("upsert assignment %s: %w", record.RFID, err)
			}

			if _, err = tx.ExecContext(
				ctx,
				`DELETE FROM assignment_parties WHERE org_id = ? AND rf_id = ?`,
				orgID, record.RFID,
			); err != nil {
				return fmt.Errorf("clear parties %s: %w", record.RFID, err)
			}
			for i, name := range record.AssignorNames {
				if _, err = tx.ExecContext(
					ctx,
					`INSERT INTO assignment_parties (org_id, rf_id, role, position, name) VALUES (?, ?, ?, ?, ?)`,
					orgID, record.RFID, RoleAssignor, i, name,
				); err != nil {
					return fmt.Errorf("insert assignor for %s: %w", record.RFID, err)
				}
			}
			for i, name := range record.AssigneeNames {
				if _, err = tx.ExecContext(
					ctx,
					`INSERT INTO assignment_parties (org_id, rf_id, role, position, name) VALUES (?, ?, ?, ?, ?)`,
					orgID, record.RFID, RoleAssignee, i, name,
				); err != nil {
					return fmt.Errorf("insert assignee for %s: %w", record.RFID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// OrgIDs returns every organization with at least one monitored asset.
func (s *Store) OrgIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT org_id FROM org_assets ORDER BY org_id`)
	if err != nil {
		return nil, fmt.Errorf("list orgs: %w", err)
	}
	defer rows.Close()

	var orgs []string
	for rows.Next() {
		var orgID string
		if err := rows.Scan(&orgID); err != nil {
			return nil, err
		}
		orgs = append(orgs, orgID)
	}
	return orgs, rows.Err()
}

// Assets returns an organization's monitored patents ordered by patent id.
func (s *Store) Assets(ctx context.Context, orgID string) ([]Asset, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, org_id, patent_id, title, created_at, updated_at
         FROM org_assets WHERE org_id = ? ORDER BY patent_id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var (
			asset      Asset
			createdRaw string
			updatedRaw string
		)
		if err := rows.Scan(&asset.ID, &asset.OrgID, &asset.PatentID, &asset.Title, &createdRaw, &updatedRaw); err != nil {
			return nil, err
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			asset.CreatedAt = created
		}
		if updated, err := parseTimeString(updatedRaw); err == nil {
			asset.UpdatedAt = updated
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// InventorsByPatent returns the inventor roster for every patent the
// organization monitors, keyed by patent id, in one batched read.
func (s *Store) InventorsByPatent(ctx context.Context, orgID string) (map[string][]registry.Inventor, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT patent_id, first_name, middle_name, last_name
         FROM patent_inventors WHERE org_id = ? ORDER BY patent_id, id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventors: %w", err)
	}
	defer rows.Close()

	roster := make(map[string][]registry.Inventor)
	for rows.Next() {
		var (
			patentID string
			inventor registry.Inventor
		)
		if err := rows.Scan(&patentID, &inventor.FirstName, &inventor.MiddleName, &inventor.LastName); err != nil {
			return nil, err
		}
		roster[patentID] = append(roster[patentID], inventor)
	}
	return roster, rows.Err()
}
