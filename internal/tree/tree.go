// Package tree builds the per-patent ownership tree consumed by the
// dashboard diagram layer.
package tree

import (
	"time"

	"github.com/Synpathub/PatenTrack3/internal/classify"
	"github.com/Synpathub/PatenTrack3/internal/title"
)

// Kind pairs a node's numeric type code with its display tab.
// Tab 0 holds employee assignments, tab 1 ownership transfers, tab 2
// encumbrances, tab 3 administrative records.
type Kind struct {
	Type int
	Tab  int
}

var (
	KindEmployee    = Kind{Type: 0, Tab: 0}
	KindPurchase    = Kind{Type: 1, Tab: 1}
	KindSale        = Kind{Type: 2, Tab: 1}
	KindMergerIn    = Kind{Type: 3, Tab: 1}
	KindMergerOut   = Kind{Type: 4, Tab: 1}
	KindSecurityOut = Kind{Type: 5, Tab: 2}
	KindSecurityIn  = Kind{Type: 6, Tab: 2}
	KindReleaseOut  = Kind{Type: 7, Tab: 2}
	KindReleaseIn   = Kind{Type: 8, Tab: 2}
	KindNameChange  = Kind{Type: 9, Tab: 3}
	KindGovern      = Kind{Type: 10, Tab: 3}
	KindCorrect     = Kind{Type: 11, Tab: 3}
	KindMissing     = Kind{Type: 12, Tab: 3}
	KindOther       = Kind{Type: 13, Tab: 3}
)

// Diagram colors keyed by conveyance type.
const (
	colorAssignment = "#E60000"
	colorNameChange = "#2493f2"
	colorSecurity   = "#ffaa00"
	colorRelease    = "#70A800"
	colorLicense    = "#E6E600"
	colorDefault    = "#E60000"
)

// Node is one transaction rendered in the ownership diagram.
type Node struct {
	RFID           string     `json:"rf_id"`
	Type           int        `json:"type"`
	Tab            int        `json:"tab"`
	Color          string     `json:"color"`
	AssignorNames  []string   `json:"assignor_names"`
	AssigneeNames  []string   `json:"assignee_names"`
	ConveyanceType string     `json:"conveyance_type"`
	EmployerAssign bool       `json:"employer_assign"`
	RecordDate     *time.Time `json:"record_date"`
}

// KindFor maps a classified transaction to its node kind. An employer
// assignment is always an employee node regardless of conveyance type.
func KindFor(conveyType classify.Type, employerAssign bool) Kind {
	if employerAssign {
		return KindEmployee
	}
	switch conveyType {
	case classify.TypeEmployee:
		return KindEmployee
	case classify.TypeAssignment:
		return KindPurchase
	case classify.TypeMerger:
		return KindMergerIn
	case classify.TypeSecurity:
		return KindSecurityOut
	case classify.TypeRelease:
		return KindReleaseOut
	case classify.TypeNameChange:
		return KindNameChange
	case classify.TypeGovern:
		return KindGovern
	case classify.TypeCorrect:
		return KindCorrect
	case classify.TypeMissing:
		return KindMissing
	default:
		return KindOther
	}
}

// Color returns the diagram color for a conveyance type.
func Color(conveyType classify.Type) string {
	switch conveyType {
	case classify.TypeAssignment:
		return colorAssignment
	case classify.TypeNameChange:
		return colorNameChange
	case classify.TypeSecurity:
		return colorSecurity
	case classify.TypeRelease:
		return colorRelease
	case classify.TypeLicense:
		return colorLicense
	default:
		return colorDefault
	}
}

// Build converts a patent's classified transactions, already in
// chronological order, into diagram nodes.
func Build(txs []title.Transaction) []Node {
	nodes := make([]Node, 0, len(txs))
	for _, tx := range txs {
		kind := KindFor(tx.Type, tx.EmployerAssign)
		nodes = append(nodes, Node{
			RFID:           tx.RFID,
			Type:           kind.Type,
			Tab:            kind.Tab,
			Color:          Color(tx.Type),
			AssignorNames:  tx.AssignorNames,
			AssigneeNames:  tx.AssigneeNames,
			ConveyanceType: string(tx.Type),
			EmployerAssign: tx.EmployerAssign,
			RecordDate:     tx.RecordDate,
		})
	}
	return nodes
}

// HasEncumbrance reports whether any node sits on the encumbrance tab.
func HasEncumbrance(nodes []Node) bool {
	for _, node := range nodes {
		if node.Tab == KindSecurityOut.Tab {
			return true
		}
	}
	return false
}
