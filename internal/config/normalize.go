package config

import "strings"

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.StagingDir,
		&c.Paths.LibraryDir,
		&c.Paths.LedgerDir,
		&c.Paths.LogDir,
		&c.Source.Root,
	} {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Source.Scope = strings.TrimSpace(c.Source.Scope)
	c.Pipeline.BucketStrategy = strings.ToLower(strings.TrimSpace(c.Pipeline.BucketStrategy))
	if c.Pipeline.BucketStrategy == "" {
		c.Pipeline.BucketStrategy = defaultBucketStrategy
	}
	if c.Pipeline.MaxItemsPerRun <= 0 {
		c.Pipeline.MaxItemsPerRun = defaultMaxItemsPerRun
	}
	if c.Pipeline.DownloadBatchSize <= 0 {
		c.Pipeline.DownloadBatchSize = defaultDownloadBatchSize
	}
	if c.Pipeline.BatchPauseSeconds < 0 {
		c.Pipeline.BatchPauseSeconds = 0
	}
	if c.Extraction.RetryAttempts <= 0 {
		c.Extraction.RetryAttempts = defaultRetryAttempts
	}
	if c.Extraction.RetryBaseSeconds < 0 {
		c.Extraction.RetryBaseSeconds = defaultRetryBaseSeconds
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
