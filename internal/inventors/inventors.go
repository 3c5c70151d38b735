// Package inventors decides whether a transaction is an
// inventor-to-employer assignment by fuzzy-matching inventor name
// variations against assignor names.
package inventors

import (
	"strings"

	"github.com/Synpathub/PatenTrack3/internal/names"
)

// Inventor is one named inventor on a patent.
type Inventor struct {
	FirstName  string
	MiddleName string
	LastName   string
}

// FullName returns the inventor's display name.
func (i Inventor) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{i.FirstName, i.MiddleName, i.LastName} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	return strings.Join(parts, " ")
}

// Variations returns the name-order permutations tested against assignor
// strings. The order is fixed so match results are reproducible:
// last-first, first-last, first-middle-last, last-first-middle, surname
// alone, given name alone. Empty components are skipped and duplicate
// permutations collapse.
func (i Inventor) Variations() []string {
	first := strings.TrimSpace(i.FirstName)
	middle := strings.TrimSpace(i.MiddleName)
	last := strings.TrimSpace(i.LastName)

	candidates := []string{
		joinParts(last, first),
		joinParts(first, last),
		joinParts(first, middle, last),
		joinParts(last, first, middle),
		last,
		first,
	}

	seen := make(map[string]struct{}, len(candidates))
	variations := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		key := strings.ToLower(candidate)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		variations = append(variations, candidate)
	}
	return variations
}

func joinParts(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}

// Match describes the outcome of testing a transaction's assignors
// against an inventor roster.
type Match struct {
	IsEmployerAssignment bool
	MatchedInventor      string
	MatchedAssignor      string
}

// MatchAssignment reports whether any inventor's name variation
// fuzzy-matches any assignor name. Inventors, variations, and assignors
// are scanned in order and the first hit wins.
func MatchAssignment(roster []Inventor, assignorNames []string, threshold int) Match {
	for _, inventor := range roster {
		for _, variation := range inventor.Variations() {
			for _, assignor := range assignorNames {
				if names.Match(variation, assignor, threshold) {
					return Match{
						IsEmployerAssignment: true,
						MatchedInventor:      inventor.FullName(),
						MatchedAssignor:      assignor,
					}
				}
			}
		}
	}
	return Match{}
}
