package config

const (
	defaultStagingDir        = "~/.local/share/curator/staging"
	defaultLibraryDir        = "~/library"
	defaultLedgerDir         = "~/.local/share/curator/ledger"
	defaultLogDir            = "~/.local/share/curator/logs"
	defaultMaxItemsPerRun    = 100
	defaultDownloadBatchSize = 10
	defaultBatchPauseSeconds = 2
	defaultBucketStrategy    = "year-month"
	defaultRetryAttempts     = 3
	defaultRetryBaseSeconds  = 1
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LedgerDir:  defaultLedgerDir,
			LogDir:     defaultLogDir,
		},
		Pipeline: Pipeline{
			MaxItemsPerRun:    defaultMaxItemsPerRun,
			DownloadBatchSize: defaultDownloadBatchSize,
			BatchPauseSeconds: defaultBatchPauseSeconds,
			BucketStrategy:    defaultBucketStrategy,
		},
		Extraction: Extraction{
			RetryAttempts:    defaultRetryAttempts,
			RetryBaseSeconds: defaultRetryBaseSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
