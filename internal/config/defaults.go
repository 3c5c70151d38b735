package config

const (
	defaultDataDir                 = "~/.local/share/patenttrack"
	defaultLogDir                  = "~/.local/share/patenttrack/logs"
	defaultPortfolioDir            = "~/.local/share/patenttrack/portfolios"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultQueuePollInterval       = 5
	defaultErrorRetryInterval      = 10
	defaultHeartbeatInterval       = 15
	defaultHeartbeatTimeout        = 120
	defaultMaxAttempts             = 3
	defaultRetryBackoffSeconds     = 30
	defaultMatchThreshold          = 5
	defaultSchedulerIntervalHours  = 24
	defaultNtfyRequestTimeout      = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
			PortfolioDir: defaultPortfolioDir,
		},
		Workflow: Workflow{
			QueuePollInterval:   defaultQueuePollInterval,
			ErrorRetryInterval:  defaultErrorRetryInterval,
			HeartbeatInterval:   defaultHeartbeatInterval,
			HeartbeatTimeout:    defaultHeartbeatTimeout,
			MaxAttempts:         defaultMaxAttempts,
			RetryBackoffSeconds: defaultRetryBackoffSeconds,
			StageWorkers:        map[string]int{},
		},
		Matching: Matching{
			ChainThreshold:    defaultMatchThreshold,
			EntityThreshold:   defaultMatchThreshold,
			InventorThreshold: defaultMatchThreshold,
		},
		Scheduler: Scheduler{
			Enabled:       false,
			IntervalHours: defaultSchedulerIntervalHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
	}
}
