package tree_test

import (
	"testing"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/classify"
	"github.com/Synpathub/PatenTrack3/internal/title"
	"github.com/Synpathub/PatenTrack3/internal/tree"
)

func TestKindFor(t *testing.T) {
	cases := []struct {
		name           string
		conveyType     classify.Type
		employerAssign bool
		want           tree.Kind
	}{
		{"employer flag wins", classify.TypeAssignment, true, tree.KindEmployee},
		{"employee", classify.TypeEmployee, false, tree.KindEmployee},
		{"assignment is purchase", classify.TypeAssignment, false, tree.KindPurchase},
		{"merger", classify.TypeMerger, false, tree.KindMergerIn},
		{"security", classify.TypeSecurity, false, tree.KindSecurityOut},
		{"release", classify.TypeRelease, false, tree.KindReleaseOut},
		{"name change", classify.TypeNameChange, false, tree.KindNameChange},
		{"govern", classify.TypeGovern, false, tree.KindGovern},
		{"correct", classify.TypeCorrect, false, tree.KindCorrect},
		{"missing", classify.TypeMissing, false, tree.KindMissing},
		{"license falls to other", classify.TypeLicense, false, tree.KindOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tree.KindFor(tc.conveyType, tc.employerAssign); got != tc.want {
				t.Fatalf("KindFor(%s, %v) = %+v, want %+v", tc.conveyType, tc.employerAssign, got, tc.want)
			}
		})
	}
}

func TestColor(t *testing.T) {
	cases := []struct {
		conveyType classify.Type
		want       string
	}{
		{classify.TypeAssignment, "#E60000"},
		{classify.TypeNameChange, "#2493f2"},
		{classify.TypeSecurity, "#ffaa00"},
		{classify.TypeRelease, "#70A800"},
		{classify.TypeLicense, "#E6E600"},
		{classify.TypeMissing, "#E60000"},
		{classify.TypeMerger, "#E60000"},
	}
	for _, tc := range cases {
		if got := tree.Color(tc.conveyType); got != tc.want {
			t.Fatalf("Color(%s) = %q, want %q", tc.conveyType, got, tc.want)
		}
	}
}

func TestBuildAndHasEncumbrance(t *testing.T) {
	date := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)
	txs := []title.Transaction{
		{
			RFID:           "500/1",
			AssignorNames:  []string{"Smith John"},
			AssigneeNames:  []string{"Acme Widget Co"},
			Type:           classify.TypeEmployee,
			EmployerAssign: true,
			RecordDate:     &date,
		},
		{
			RFID:          "500/2",
			AssignorNames: []string{"Acme Widget Co"},
			AssigneeNames: []string{"First National Bank"},
			Type:          classify.TypeSecurity,
		},
	}

	nodes := tree.Build(txs)
	if len(nodes) != 2 {
		t.Fatalf("node count = %d, want 2", len(nodes))
	}
	if nodes[0].Type != 0 || nodes[0].Tab != 0 {
		t.Fatalf("employee node = type %d tab %d, want 0/0", nodes[0].Type, nodes[0].Tab)
	}
	if nodes[1].Type != 5 || nodes[1].Tab != 2 {
		t.Fatalf("security node = type %d tab %d, want 5/2", nodes[1].Type, nodes[1].Tab)
	}
	if nodes[1].Color != "#ffaa00" {
		t.Fatalf("security color = %q", nodes[1].Color)
	}
	if nodes[0].RecordDate == nil || !nodes[0].RecordDate.Equal(date) {
		t.Fatalf("record date not carried through: %v", nodes[0].RecordDate)
	}
	if !tree.HasEncumbrance(nodes) {
		t.Fatal("expected encumbrance tab to be detected")
	}
	if tree.HasEncumbrance(nodes[:1]) {
		t.Fatal("expected no encumbrance with only the employee node")
	}
}

func TestBuildEmptyInput(t *testing.T) {
	if nodes := tree.Build(nil); len(nodes) != 0 {
		t.Fatalf("expected no nodes, got %+v", nodes)
	}
}
