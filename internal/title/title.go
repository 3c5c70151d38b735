package title

import (
	"sort"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/classify"
	"github.com/Synpathub/PatenTrack3/internal/names"
)

// Transaction is one recorded conveyance affecting a patent, with its
// derived classification already applied.
type Transaction struct {
	RFID           string
	AssignorNames  []string
	AssigneeNames  []string
	Type           classify.Type
	EmployerAssign bool
	RecordDate     *time.Time
}

// Status is the chain-of-title state for one patent.
type Status string

const (
	StatusComplete       Status = "complete"
	StatusBroken         Status = "broken"
	StatusEncumbered     Status = "encumbered"
	StatusNoTransactions Status = "no-transactions"
)

// Dashboard type codes consumed by the UI bucketing layer.
const (
	DashboardComplete   = 0
	DashboardBroken     = 1
	DashboardEncumbered = 18
)

// Break describes one continuity gap between adjacent ownership
// transactions, or a missing chain start when FromRFID is empty.
type Break struct {
	FromRFID  string
	ToRFID    string
	FromNames []string
	ToNames   []string
	Reason    string
}

// Analysis is the derived chain state for one patent. It is recomputed
// in full on every pipeline run.
type Analysis struct {
	Status                  Status
	Breaks                  []Break
	HasEmployeeStart        bool
	HasUnreleasedSecurity   bool
	UnreleasedSecurityRFIDs []string
	DashboardCode           int
}

// SortTransactions orders transactions chronologically in place.
// Date-less transactions sort after dated ones; the sort is stable so
// equal dates keep their ingestion order.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		di, dj := txs[i].RecordDate, txs[j].RecordDate
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return di.Before(*dj)
	})
}

// Analyze classifies a patent's full transaction history. The input must
// already be in chronological order (see SortTransactions) and carry
// classified types. Transactions of type security, release, and license
// are excluded from the ownership walk; security interests with no
// fuzzy-matching release remain as encumbrances.
//
// The caller is responsible for marking the earliest ownership
// transaction EmployerAssign when its assignors match a known inventor;
// Analyze records a missing-start break when the flag is absent and no
// link break already explains the gap.
func Analyze(txs []Transaction, threshold int) Analysis {
	if len(txs) == 0 {
		return Analysis{Status: StatusNoTransactions, DashboardCode: DashboardBroken}
	}

	var ownership, securities, releases []Transaction
	for _, tx := range txs {
		switch tx.Type {
		case classify.TypeSecurity:
			securities = append(securities, tx)
		case classify.TypeRelease:
			releases = append(releases, tx)
		case classify.TypeLicense:
			// Licenses neither transfer nor encumber title.
		default:
			ownership = append(ownership, tx)
		}
	}

	unreleased := unreleasedSecurities(securities, releases, threshold)

	analysis := Analysis{
		HasUnreleasedSecurity:   len(unreleased) > 0,
		UnreleasedSecurityRFIDs: unreleased,
	}

	if len(ownership) == 0 {
		if analysis.HasUnreleasedSecurity {
			analysis.Status = StatusEncumbered
			analysis.DashboardCode = DashboardEncumbered
		} else {
			analysis.Status = StatusNoTransactions
			analysis.DashboardCode = DashboardBroken
		}
		return analysis
	}

	analysis.HasEmployeeStart = ownership[0].EmployerAssign

	for i := 0; i+1 < len(ownership); i++ {
		prev, next := ownership[i], ownership[i+1]
		if names.MatchAny(prev.AssigneeNames, next.AssignorNames, threshold) {
			continue
		}
		analysis.Breaks = append(analysis.Breaks, Break{
			FromRFID:  prev.RFID,
			ToRFID:    next.RFID,
			FromNames: prev.AssigneeNames,
			ToNames:   next.AssignorNames,
			Reason:    "assignee does not match next assignor",
		})
	}

	// The missing-start break is only reported when every link holds;
	// broken links already account for the gap, and HasEmployeeStart
	// still carries the flag either way.
	if !analysis.HasEmployeeStart && len(analysis.Breaks) == 0 {
		analysis.Breaks = append(analysis.Breaks, Break{
			ToRFID:  ownership[0].RFID,
			ToNames: ownership[0].AssignorNames,
			Reason:  "chain does not start with an inventor assignment",
		})
	}

	switch {
	case len(analysis.Breaks) > 0:
		analysis.Status = StatusBroken
		analysis.DashboardCode = DashboardBroken
	case analysis.HasUnreleasedSecurity:
		analysis.Status = StatusEncumbered
		analysis.DashboardCode = DashboardEncumbered
	default:
		analysis.Status = StatusComplete
		analysis.DashboardCode = DashboardComplete
	}
	return analysis
}

// unreleasedSecurities returns the identifiers of security transactions
// with no release whose assignor-name set fuzzy-matches the security's
// assignee-name set. Any release counts regardless of recorded order;
// ambiguity resolves in favor of the release.
func unreleasedSecurities(securities, releases []Transaction, threshold int) []string {
	var unreleased []string
	for _, security := range securities {
		released := false
		for _, release := range releases {
			if names.MatchAny(release.AssignorNames, security.AssigneeNames, threshold) {
				released = true
				break
			}
		}
		if !released {
			unreleased = append(unreleased, security.RFID)
		}
	}
	return unreleased
}
