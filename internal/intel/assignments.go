package intel

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/classify"
)

// AssignmentsByOrg returns every assignment for an organization with its
// party names attached, grouped in memory from two batched queries.
// Rows come back ordered by patent id, then record date (date-less rows
// last), then reel/frame for a stable walk order.
func (s *Store) AssignmentsByOrg(ctx context.Context, orgID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, org_id, patent_id, rf_id, convey_text, conveyance_type, employer_assign, record_date
         FROM org_assignments WHERE org_id = ?
         ORDER BY patent_id, record_date IS NULL, record_date, rf_id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	// One recorded document can cover several patents, so an rf_id
	// maps to every row it produced.
	index := make(map[string][]int)
	for rows.Next() {
		var (
			assignment Assignment
			convey     sql.NullString
			employer   int
			dateRaw    sql.NullString
		)
		if err := rows.Scan(
			&assignment.ID, &assignment.OrgID, &assignment.PatentID, &assignment.RFID,
			&assignment.ConveyText, &convey, &employer, &dateRaw,
		); err != nil {
			return nil, err
		}
		assignment.ConveyanceType = classify.Type(convey.String)
		assignment.EmployerAssign = employer != 0
		assignment.RecordDate = parseOptionalTime(dateRaw)
		index[assignment.RFID] = append(index[assignment.RFID], len(assignments))
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	partyRows, err := s.db.QueryContext(
		ctx,
		`SELECT rf_id, role, name FROM assignment_parties
         WHERE org_id = ? ORDER BY rf_id, role, position`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	defer partyRows.Close()

	for partyRows.Next() {
		var rfID, role, name string
		if err := partyRows.Scan(&rfID, &role, &name); err != nil {
			return nil, err
		}
		for _, i := range index[rfID] {
			switch role {
			case RoleAssignor:
				assignments[i].Assignors = append(assignments[i].Assignors, name)
			case RoleAssignee:
				assignments[i].Assignees = append(assignments[i].Assignees, name)
			}
		}
	}
	return assignments, partyRows.Err()
}

// UnclassifiedAssignments returns the rows the classify stage still has
// to process: those with no conveyance type yet.
func (s *Store) UnclassifiedAssignments(ctx context.Context, orgID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, org_id, patent_id, rf_id, convey_text, employer_assign, record_date
         FROM org_assignments WHERE org_id = ? AND conveyance_type IS NULL ORDER BY id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("list unclassified: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var (
			assignment Assignment
			employer   int
			dateRaw    sql.NullString
		)
		if err := rows.Scan(
			&assignment.ID, &assignment.OrgID, &assignment.PatentID, &assignment.RFID,
			&assignment.ConveyText, &employer, &dateRaw,
		); err != nil {
			return nil, err
		}
		assignment.EmployerAssign = employer != 0
		assignment.RecordDate = parseOptionalTime(dateRaw)
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

// Classification is one classify-stage result ready to persist.
type Classification struct {
	AssignmentID   int64
	ConveyanceType classify.Type
	EmployerAssign bool
}

// SaveClassifications stamps classify results in a single transaction.
func (s *Store) SaveClassifications(ctx context.Context, results []Classification) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin classify tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, result := range results {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE org_assignments SET conveyance_type = ?, employer_assign = ?, updated_at = ? WHERE id = ?`,
			string(result.ConveyanceType), boolToInt(result.EmployerAssign), now, result.AssignmentID,
		); err != nil {
			return fmt.Errorf("save classification %d: %w", result.AssignmentID, err)
		}
	}
	return tx.Commit()
}

// SetEmployerAssign updates the employer flag on a set of assignments in
// one transaction. The flag stage uses this after inventor matching.
func (s *Store) SetEmployerAssign(ctx context.Context, ids []int64, value bool) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin flag tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, id := range ids {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE org_assignments SET employer_assign = ?, updated_at = ? WHERE id = ?`,
			boolToInt(value), now, id,
		); err != nil {
			return fmt.Errorf("set employer flag %d: %w", id, err)
		}
	}
	return tx.Commit()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
