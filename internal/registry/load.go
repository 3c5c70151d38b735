package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadPortfolio reads and validates a portfolio JSON file.
func LoadPortfolio(path string) (*Portfolio, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open portfolio: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()

	var portfolio Portfolio
	if err := decoder.Decode(&portfolio); err != nil {
		return nil, fmt.Errorf("parse portfolio %s: %w", filepath.Base(path), err)
	}
	if err := portfolio.Validate(); err != nil {
		return nil, fmt.Errorf("validate portfolio %s: %w", filepath.Base(path), err)
	}
	return &portfolio, nil
}

// LoadDir loads every portfolio JSON file in a directory, sorted by file
// name so ingestion order is stable.
func LoadDir(dir string) ([]*Portfolio, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read portfolio dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	portfolios := make([]*Portfolio, 0, len(paths))
	for _, path := range paths {
		portfolio, err := LoadPortfolio(path)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, portfolio)
	}
	return portfolios, nil
}
