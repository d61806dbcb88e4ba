package config

import (
	"fmt"
	"strings"
)

var validBucketStrategies = map[string]struct{}{
	"year-month": {},
	"year":       {},
	"flat":       {},
}

var validLogFormats = map[string]struct{}{
	"console": {},
	"json":    {},
}

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return fmt.Errorf("config: staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LedgerDir) == "" {
		return fmt.Errorf("config: ledger_dir must be set")
	}
	if _, ok := validBucketStrategies[c.Pipeline.BucketStrategy]; !ok {
		return fmt.Errorf("config: bucket_strategy %q is not one of year-month, year, flat", c.Pipeline.BucketStrategy)
	}
	if _, ok := validLogFormats[c.Logging.Format]; !ok {
		return fmt.Errorf("config: log format %q is not one of console, json", c.Logging.Format)
	}
	if c.Pipeline.DownloadBatchSize > c.Pipeline.MaxItemsPerRun {
		return fmt.Errorf("config: download_batch_size (%d) must not exceed max_items_per_run (%d)",
			c.Pipeline.DownloadBatchSize, c.Pipeline.MaxItemsPerRun)
	}
	return nil
}
