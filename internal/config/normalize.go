package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeMatching()
	c.normalizeScheduler()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.PortfolioDir) == "" {
		c.Paths.PortfolioDir = defaultPortfolioDir
	}
	if c.Paths.PortfolioDir, err = expandPath(c.Paths.PortfolioDir); err != nil {
		return fmt.Errorf("paths.portfolio_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxAttempts <= 0 {
		c.Workflow.MaxAttempts = defaultMaxAttempts
	}
	if c.Workflow.RetryBackoffSeconds <= 0 {
		c.Workflow.RetryBackoffSeconds = defaultRetryBackoffSeconds
	}
	if c.Workflow.StageWorkers == nil {
		c.Workflow.StageWorkers = map[string]int{}
	}
	workers := make(map[string]int, len(c.Workflow.StageWorkers))
	for step, count := range c.Workflow.StageWorkers {
		normalized := strings.ToLower(strings.TrimSpace(step))
		if normalized == "" || count <= 0 {
			continue
		}
		workers[normalized] = count
	}
	c.Workflow.StageWorkers = workers
}

func (c *Config) normalizeMatching() {
	if c.Matching.ChainThreshold <= 0 {
		c.Matching.ChainThreshold = defaultMatchThreshold
	}
	if c.Matching.EntityThreshold <= 0 {
		c.Matching.EntityThreshold = defaultMatchThreshold
	}
	if c.Matching.InventorThreshold <= 0 {
		c.Matching.InventorThreshold = defaultMatchThreshold
	}
}

func (c *Config) normalizeScheduler() {
	if c.Scheduler.IntervalHours <= 0 {
		c.Scheduler.IntervalHours = defaultSchedulerIntervalHours
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
