// Package classify maps free-text conveyance descriptions to a closed
// set of transaction types.
package classify

import "strings"

// Type is a conveyance transaction type.
type Type string

const (
	TypeAssignment Type = "assignment"
	TypeEmployee   Type = "employee"
	TypeGovern     Type = "govern"
	TypeMerger     Type = "merger"
	TypeNameChange Type = "namechg"
	TypeLicense    Type = "license"
	TypeRelease    Type = "release"
	TypeSecurity   Type = "security"
	TypeCorrect    Type = "correct"
	TypeMissing    Type = "missing"
)

// Valid reports whether t is a member of the closed type set.
func (t Type) Valid() bool {
	switch t {
	case TypeAssignment, TypeEmployee, TypeGovern, TypeMerger, TypeNameChange,
		TypeLicense, TypeRelease, TypeSecurity, TypeCorrect, TypeMissing:
		return true
	}
	return false
}

// rule binds a keyword set to a classification. Rules are evaluated in
// slice order and the first keyword hit wins, so a corrective assignment
// resolves to correct rather than assignment and an employee assignment
// resolves to employee.
type rule struct {
	keywords       []string
	result         Type
	employerAssign bool
}

var rules = []rule{
	{keywords: []string{"correct", "re-record", "re record"}, result: TypeCorrect},
	{keywords: []string{"employee", "employment"}, result: TypeEmployee, employerAssign: true},
	{keywords: []string{"confirmator", "government"}, result: TypeGovern},
	{keywords: []string{"merger", "merged"}, result: TypeMerger},
	{keywords: []string{"change of name", "change of address"}, result: TypeNameChange},
	{keywords: []string{"license", "letters of testamentary"}, result: TypeLicense},
	{keywords: []string{"release"}, result: TypeRelease},
	{keywords: []string{"security", "mortgage"}, result: TypeSecurity},
	{keywords: []string{"assign"}, result: TypeAssignment},
}

// Classify maps a conveyance description to its transaction type and
// employer-assignment flag. Unmatched, empty, or whitespace-only input
// yields TypeMissing with the flag unset.
func Classify(text string) (Type, bool) {
	folded := strings.ToLower(strings.TrimSpace(text))
	if folded == "" {
		return TypeMissing, false
	}
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(folded, keyword) {
				return r.result, r.employerAssign
			}
		}
	}
	return TypeMissing, false
}
