package classify_test

import (
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/classify"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name         string
		text         string
		wantType     classify.Type
		wantEmployer bool
	}{
		{"plain assignment", "ASSIGNMENT OF ASSIGNORS INTEREST", classify.TypeAssignment, false},
		{"corrective beats assignment", "CORRECTIVE ASSIGNMENT TO CORRECT THE RECEIVING PARTY", classify.TypeCorrect, false},
		{"re-record beats assignment", "RE-RECORD TO CORRECT ASSIGNEE NAME", classify.TypeCorrect, false},
		{"employee beats assignment", "EMPLOYEE ASSIGNMENT AGREEMENT", classify.TypeEmployee, true},
		{"employment agreement", "ASSIGNMENT PURSUANT TO EMPLOYMENT AGREEMENT", classify.TypeEmployee, true},
		{"confirmatory license is government", "CONFIRMATORY LICENSE", classify.TypeGovern, false},
		{"government interest", "GOVERNMENT INTEREST AGREEMENT", classify.TypeGovern, false},
		{"merger", "MERGER AND CHANGE OF NAME", classify.TypeMerger, false},
		{"name change", "CHANGE OF NAME", classify.TypeNameChange, false},
		{"address change", "CHANGE OF ADDRESS", classify.TypeNameChange, false},
		{"license", "EXCLUSIVE LICENSE AGREEMENT", classify.TypeLicense, false},
		{"testamentary letters", "LETTERS OF TESTAMENTARY", classify.TypeLicense, false},
		{"release beats security", "RELEASE OF SECURITY INTEREST", classify.TypeRelease, false},
		{"security interest", "SECURITY INTEREST", classify.TypeSecurity, false},
		{"mortgage", "MORTGAGE AND GRANT OF PATENT RIGHTS", classify.TypeSecurity, false},
		{"unmatched", "QUITCLAIM OF SOME SORT", classify.TypeMissing, false},
		{"empty", "", classify.TypeMissing, false},
		{"whitespace only", "   \t\n ", classify.TypeMissing, false},
		{"mixed case", "Corrective Assignment", classify.TypeCorrect, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotType, gotEmployer := classify.Classify(tc.text)
			if gotType != tc.wantType || gotEmployer != tc.wantEmployer {
				t.Fatalf("Classify(%q) = (%s, %v), want (%s, %v)",
					tc.text, gotType, gotEmployer, tc.wantType, tc.wantEmployer)
			}
		})
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []classify.Type{
		classify.TypeAssignment, classify.TypeEmployee, classify.TypeGovern,
		classify.TypeMerger, classify.TypeNameChange, classify.TypeLicense,
		classify.TypeRelease, classify.TypeSecurity, classify.TypeCorrect,
		classify.TypeMissing,
	} {
		if !typ.Valid() {
			t.Fatalf("expected %q to be valid", typ)
		}
	}
	if classify.Type("transfer").Valid() {
		t.Fatal("expected unknown type to be invalid")
	}
}
