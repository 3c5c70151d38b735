package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Synpathub/PatenTrack3/internal/testsupport"
)

type cliTestEnv struct {
	baseDir      string
	configPath   string
	portfolioDir string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	portfolioDir := filepath.Join(base, "portfolios")
	if err := os.MkdirAll(portfolioDir, 0o755); err != nil {
		t.Fatalf("mkdir portfolio dir: %v", err)
	}

	configPath := filepath.Join(base, "patenttrack.toml")
	contents := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
portfolio_dir = %q
`, filepath.Join(base, "data"), filepath.Join(base, "logs"), portfolioDir)
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:      base,
		configPath:   configPath,
		portfolioDir: portfolioDir,
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func (e *cliTestEnv) writeSamplePortfolio(t *testing.T, orgID string) string {
	t.Helper()
	return testsupport.WritePortfolio(t, e.portfolioDir, testsupport.SamplePortfolio(t, orgID))
}
