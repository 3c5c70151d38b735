// Package entities clusters near-duplicate entity name strings into
// canonical entities.
package entities

import (
	"sort"
	"strings"

	"github.com/Synpathub/PatenTrack3/internal/names"
)

// Candidate is one raw name string observed across an organization's
// transactions, with its occurrence count.
type Candidate struct {
	ID          int64
	Name        string
	Occurrences int
}

// Group is a cluster of name variants judged to denote the same party.
// The canonical member is the one with the highest occurrence count.
type Group struct {
	CanonicalID   int64
	CanonicalName string
	Members       []Candidate
}

// TotalOccurrences sums the occurrence counts of every member.
func (g Group) TotalOccurrences() int {
	total := 0
	for _, member := range g.Members {
		total += member.Occurrences
	}
	return total
}

// Group clusters candidates whose normalized names sit within threshold
// edit distance of a group seed. Candidates are sorted by descending
// token count first so multi-word names anchor groups. The pass is
// greedy and single-level: a candidate joins a group only when it
// matches that group's seed directly, so transitive closure is not
// guaranteed. This bounds comparisons on large name sets; callers
// wanting exact closure would need a union-find pass instead.
func GroupCandidates(candidates []Candidate, threshold int) []Group {
	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		ti := len(strings.Fields(ordered[i].Name))
		tj := len(strings.Fields(ordered[j].Name))
		if ti != tj {
			return ti > tj
		}
		return ordered[i].Occurrences > ordered[j].Occurrences
	})

	normalized := make([]string, len(ordered))
	for i, candidate := range ordered {
		normalized[i] = names.Normalize(candidate.Name)
	}

	assigned := make([]bool, len(ordered))
	groups := make([]Group, 0, len(ordered))
	for i := range ordered {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		group := Group{
			CanonicalID:   ordered[i].ID,
			CanonicalName: ordered[i].Name,
			Members:       []Candidate{ordered[i]},
		}
		best := ordered[i].Occurrences
		for j := i + 1; j < len(ordered); j++ {
			if assigned[j] {
				continue
			}
			if !names.Match(normalized[i], normalized[j], threshold) {
				continue
			}
			assigned[j] = true
			group.Members = append(group.Members, ordered[j])
			if ordered[j].Occurrences > best {
				best = ordered[j].Occurrences
				group.CanonicalID = ordered[j].ID
				group.CanonicalName = ordered[j].Name
			}
		}
		groups = append(groups, group)
	}
	return groups
}
