package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Synpathub/PatenTrack3/internal/intel"
	"github.com/Synpathub/PatenTrack3/internal/registry"
)

// Date builds a registry date from a 2006-01-02 string, failing the
// test on a malformed value.
func Date(t testing.TB, value string) registry.Date {
	t.Helper()

	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return registry.Date{Time: parsed}
}

// SamplePortfolio returns a small two-patent portfolio exercising a
// clean assignment chain and a security interest.
func SamplePortfolio(t testing.TB, orgID string) *registry.Portfolio {
	t.Helper()

	return &registry.Portfolio{
		OrgID:   orgID,
		OrgName: "Test Org",
		Patents: []registry.Patent{
			{
				PatentID: "US1000001",
				Title:    "Widget",
				Inventors: []registry.Inventor{
					{FirstName: "Ada", LastName: "Lovelace"},
				},
				Transactions: []registry.Transaction{
					{
						RFID:          "1001-0001",
						AssignorNames: []string{"Lovelace Ada"},
						AssigneeNames: []string{"Initech Inc"},
						ConveyText:    "ASSIGNMENT OF ASSIGNORS INTEREST",
						RecordDate:    Date(t, "2019-03-01"),
					},
					{
						RFID:          "1001-0002",
						AssignorNames: []string{"Initech Inc"},
						AssigneeNames: []string{"Globex Corp"},
						ConveyText:    "ASSIGNMENT OF ASSIGNORS INTEREST",
						RecordDate:    Date(t, "2020-06-15"),
					},
				},
			},
			{
				PatentID: "US1000002",
				Title:    "Gadget",
				Inventors: []registry.Inventor{
					{FirstName: "Grace", MiddleName: "Brewster", LastName: "Hopper"},
				},
				Transactions: []registry.Transaction{
					{
						RFID:          "1002-0001",
						AssignorNames: []string{"Hopper Grace"},
						AssigneeNames: []string{"Initech Inc"},
						ConveyText:    "ASSIGNMENT OF ASSIGNORS INTEREST",
						RecordDate:    Date(t, "2018-11-20"),
					},
					{
						RFID:          "1002-0002",
						AssignorNames: []string{"Initech Inc"},
						AssigneeNames: []string{"First National Bank"},
						ConveyText:    "SECURITY INTEREST",
						RecordDate:    Date(t, "2021-01-10"),
					},
				},
			},
		},
	}
}

// WritePortfolio serializes a portfolio into the config portfolio
// directory and returns the file path.
func WritePortfolio(t testing.TB, dir string, portfolio *registry.Portfolio) string {
	t.Helper()

	data, err := json.MarshalIndent(portfolio, "", "  ")
	if err != nil {
		t.Fatalf("marshal portfolio: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, portfolio.OrgID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write portfolio: %v", err)
	}
	return path
}

// ImportPortfolio loads a portfolio into the intel store, failing the
// test on error.
func ImportPortfolio(t testing.TB, store *intel.Store, portfolio *registry.Portfolio) {
	t.Helper()

	if err := store.ImportPortfolio(context.Background(), portfolio); err != nil {
		t.Fatalf("import portfolio: %v", err)
	}
}
