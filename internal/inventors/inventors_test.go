package inventors_test

import (
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/inventors"
)

func TestVariationsOrderAndDeduplication(t *testing.T) {
	inv := inventors.Inventor{FirstName: "John", MiddleName: "Q", LastName: "Smith"}
	want := []string{
		"Smith John",
		"John Smith",
		"John Q Smith",
		"Smith John Q",
		"Smith",
		"John",
	}
	got := inv.Variations()
	if len(got) != len(want) {
		t.Fatalf("variation count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("variation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestVariationsWithoutMiddleName(t *testing.T) {
	inv := inventors.Inventor{FirstName: "Ada", LastName: "Lovelace"}
	got := inv.Variations()
	// first-middle-last and last-first-middle collapse into the two-part forms.
	want := []string{"Lovelace Ada", "Ada Lovelace", "Lovelace", "Ada"}
	if len(got) != len(want) {
		t.Fatalf("variation count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("variation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMatchAssignment(t *testing.T) {
	roster := []inventors.Inventor{
		{FirstName: "John", MiddleName: "Q", LastName: "Smith"},
		{FirstName: "Ada", LastName: "Lovelace"},
	}

	match := inventors.MatchAssignment(roster, []string{"Unrelated Holdings", "SMITH JOHN"}, 5)
	if !match.IsEmployerAssignment {
		t.Fatal("expected employer assignment for matching assignor")
	}
	if match.MatchedInventor != "John Q Smith" {
		t.Fatalf("matched inventor = %q, want %q", match.MatchedInventor, "John Q Smith")
	}
	if match.MatchedAssignor != "SMITH JOHN" {
		t.Fatalf("matched assignor = %q, want %q", match.MatchedAssignor, "SMITH JOHN")
	}

	match = inventors.MatchAssignment(roster, []string{"Globex Corporation"}, 5)
	if match.IsEmployerAssignment {
		t.Fatalf("expected no match against unrelated assignor, got %+v", match)
	}

	match = inventors.MatchAssignment(nil, []string{"Smith John"}, 5)
	if match.IsEmployerAssignment {
		t.Fatal("expected no match with empty roster")
	}

	match = inventors.MatchAssignment(roster, nil, 5)
	if match.IsEmployerAssignment {
		t.Fatal("expected no match with no assignors")
	}
}

func TestMatchAssignmentFirstHitWins(t *testing.T) {
	roster := []inventors.Inventor{
		{FirstName: "Jane", LastName: "Doe"},
		{FirstName: "Janet", LastName: "Doe"},
	}
	match := inventors.MatchAssignment(roster, []string{"Doe Jane", "Doe Janet"}, 3)
	if !match.IsEmployerAssignment {
		t.Fatal("expected a match")
	}
	if match.MatchedInventor != "Jane Doe" || match.MatchedAssignor != "Doe Jane" {
		t.Fatalf("expected first inventor and assignor to win, got %+v", match)
	}
}