package names

import "strings"

// Distance returns the Levenshtein edit distance between a and b with
// unit-cost insertions, deletions, and substitutions. Comparison is
// byte-exact; callers fold case before comparing.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Match reports whether two names are close enough to be treated as the
// same party: their case-folded, whitespace-trimmed edit distance is
// strictly below threshold.
func Match(a, b string, threshold int) bool {
	fa := strings.ToLower(strings.TrimSpace(a))
	fb := strings.ToLower(strings.TrimSpace(b))
	if fa == "" || fb == "" {
		return false
	}
	return Distance(fa, fb) < threshold
}

// MatchAny reports whether any name in the first set matches any name in
// the second. Matching is symmetric; list order does not matter.
func MatchAny(first, second []string, threshold int) bool {
	for _, a := range first {
		for _, b := range second {
			if Match(a, b, threshold) {
				return true
			}
		}
	}
	return false
}
