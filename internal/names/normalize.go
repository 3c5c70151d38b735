package names

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// suffixFolds lists trailing corporate suffixes and their short forms,
// longest first. At most one fold is applied per name.
var suffixFolds = []struct {
	long  string
	short string
}{
	{"incorporated", "inc"},
	{"corporation", "corp"},
	{"limited", "ltd"},
	{"company", "co"},
}

// Normalize canonicalizes an entity name: trims surrounding whitespace,
// folds one trailing corporate suffix to its short form, collapses
// internal whitespace runs, and title-cases the result. Empty input
// yields the empty string.
func Normalize(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, fold := range suffixFolds {
		if strings.HasSuffix(lower, fold.long) {
			trimmed = trimmed[:len(trimmed)-len(fold.long)] + fold.short
			break
		}
	}
	collapsed := strings.Join(strings.Fields(trimmed), " ")
	return cases.Title(language.English).String(strings.ToLower(collapsed))
}
