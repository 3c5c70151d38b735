// Package registry defines the ingested patent-registry contract: the
// per-patent inventor roster and recorded transactions an organization
// monitors. Acquisition and parsing of raw assignment data happen
// upstream; this package only loads and validates the structured form.
package registry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date wraps time.Time with lenient JSON decoding: null, "", a bare
// calendar date, or a full RFC 3339 timestamp are all accepted.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.Time = time.Time{}
		return nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			d.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse date %q", value)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// Ptr returns the date as *time.Time, nil when unset.
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// Inventor is one named inventor on a patent.
type Inventor struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
}

// Transaction is one recorded conveyance as delivered by the upstream
// ingestion layer. RFID is the reel/frame document identifier, treated
// as an opaque string key.
type Transaction struct {
	RFID          string   `json:"rf_id"`
	AssignorNames []string `json:"assignor_names"`
	AssigneeNames []string `json:"assignee_names"`
	ConveyText    string   `json:"convey_text"`
	RecordDate    Date     `json:"record_date"`
}

// Patent is one monitored asset with its roster and history.
type Patent struct {
	PatentID     string        `json:"patent_id"`
	Title        string        `json:"title,omitempty"`
	Inventors    []Inventor    `json:"inventors"`
	Transactions []Transaction `json:"transactions"`
}

// Portfolio is the monitored asset set for one organization.
type Portfolio struct {
	OrgID   string   `json:"org_id"`
	OrgName string   `json:"org_name,omitempty"`
	Patents []Patent `json:"patents"`
}

// Validate checks the structural invariants a portfolio must satisfy
// before ingestion.
func (p *Portfolio) Validate() error {
	if strings.TrimSpace(p.OrgID) == "" {
		return fmt.Errorf("portfolio has no org_id")
	}
	seen := make(map[string]struct{}, len(p.Patents))
	for i, patent := range p.Patents {
		if strings.TrimSpace(patent.PatentID) == "" {
			return fmt.Errorf("patent %d has no patent_id", i)
		}
		if _, dup := seen[patent.PatentID]; dup {
			return fmt.Errorf("duplicate patent_id %q", patent.PatentID)
		}
		seen[patent.PatentID] = struct{}{}
		rfids := make(map[string]struct{}, len(patent.Transactions))
		for j, tx := range patent.Transactions {
			if strings.TrimSpace(tx.RFID) == "" {
				return fmt.Errorf("patent %q transaction %d has no rf_id", patent.PatentID, j)
			}
			if _, dup := rfids[tx.RFID]; dup {
				return fmt.Errorf("patent %q has duplicate rf_id %q", patent.PatentID, tx.RFID)
			}
			rfids[tx.RFID] = struct{}{}
		}
	}
	return nil
}
