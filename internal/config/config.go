package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	LogDir       string `toml:"log_dir"`
	PortfolioDir string `toml:"portfolio_dir"`
}

// Workflow contains daemon timing, retry, and concurrency settings.
type Workflow struct {
	QueuePollInterval   int            `toml:"queue_poll_interval"`
	ErrorRetryInterval  int            `toml:"error_retry_interval"`
	HeartbeatInterval   int            `toml:"heartbeat_interval"`
	HeartbeatTimeout    int            `toml:"heartbeat_timeout"`
	MaxAttempts         int            `toml:"max_attempts"`
	RetryBackoffSeconds int            `toml:"retry_backoff_seconds"`
	StageWorkers        map[string]int `toml:"stage_workers"`
}

// Matching contains fuzzy-comparison thresholds. A pair of names matches
// when its edit distance is strictly below the threshold.
type Matching struct {
	ChainThreshold    int `toml:"chain_threshold"`
	EntityThreshold   int `toml:"entity_threshold"`
	InventorThreshold int `toml:"inventor_threshold"`
}

// Scheduler contains settings for recurring analysis runs.
type Scheduler struct {
	Enabled       bool `toml:"enabled"`
	IntervalHours int  `toml:"interval_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Notifications contains ntfy push settings. An empty topic disables
// notifications entirely.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Config encapsulates all configuration values for PatenTrack.
//
// Configuration sections by subsystem:
//   - Paths: data, log, and portfolio import directories
//   - Workflow: daemon polling, heartbeat, retry, and worker-count settings
//   - Matching: edit-distance thresholds for name comparison
//   - Scheduler: recurring run cadence
//   - Logging: log format and level
//   - Notifications: optional ntfy push alerts
type Config struct {
	Paths         Paths         `toml:"paths"`
	Workflow      Workflow      `toml:"workflow"`
	Matching      Matching      `toml:"matching"`
	Scheduler     Scheduler     `toml:"scheduler"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/patenttrack/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/patenttrack/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("patenttrack.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.PortfolioDir) != "" {
		// Best-effort so config load survives an import dir on offline storage.
		_ = os.MkdirAll(c.Paths.PortfolioDir, 0o755)
	}
	return nil
}

// QueueDatabasePath returns the location of the run-queue SQLite database.
func (c *Config) QueueDatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "queue.db")
}

// IntelDatabasePath returns the location of the analysis results SQLite database.
func (c *Config) IntelDatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "intel.db")
}

// WorkersFor reports the configured worker count for a pipeline step,
// defaulting to one when the step has no explicit entry.
func (c *Config) WorkersFor(step string) int {
	if n, ok := c.Workflow.StageWorkers[step]; ok && n > 0 {
		return n
	}
	return 1
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
