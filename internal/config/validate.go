package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateScheduler(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":   c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval":  c.Workflow.ErrorRetryInterval,
		"workflow.max_attempts":          c.Workflow.MaxAttempts,
		"workflow.retry_backoff_seconds": c.Workflow.RetryBackoffSeconds,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	for step, count := range c.Workflow.StageWorkers {
		if count <= 0 {
			return fmt.Errorf("workflow.stage_workers.%s must be positive", step)
		}
	}
	return nil
}

func (c *Config) validateMatching() error {
	return ensurePositiveMap(map[string]int{
		"matching.chain_threshold":    c.Matching.ChainThreshold,
		"matching.entity_threshold":   c.Matching.EntityThreshold,
		"matching.inventor_threshold": c.Matching.InventorThreshold,
	})
}

func (c *Config) validateScheduler() error {
	if c.Scheduler.Enabled && c.Scheduler.IntervalHours <= 0 {
		return errors.New("scheduler.interval_hours must be positive when scheduler.enabled is true")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
