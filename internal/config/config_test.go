package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("exists = true for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Pipeline.MaxItemsPerRun != defaultMaxItemsPerRun {
		t.Fatalf("max_items_per_run = %d", cfg.Pipeline.MaxItemsPerRun)
	}
	if cfg.Pipeline.DownloadBatchSize != defaultDownloadBatchSize {
		t.Fatalf("download_batch_size = %d", cfg.Pipeline.DownloadBatchSize)
	}
	if cfg.Pipeline.BucketStrategy != "year-month" {
		t.Fatalf("bucket_strategy = %q", cfg.Pipeline.BucketStrategy)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "curator.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "stage") + `"
ledger_dir = "` + filepath.Join(dir, "ledger") + `"

[pipeline]
max_items_per_run = 50
download_batch_size = 5
bucket_strategy = "Year"

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists = false for present file")
	}
	if cfg.Pipeline.MaxItemsPerRun != 50 || cfg.Pipeline.DownloadBatchSize != 5 {
		t.Fatalf("pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Pipeline.BucketStrategy != "year" {
		t.Fatalf("strategy not lowercased: %q", cfg.Pipeline.BucketStrategy)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("format not lowercased: %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsInvalidStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curator.toml")
	if err := os.WriteFile(path, []byte("[pipeline]\nbucket_strategy = \"weekly\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "bucket_strategy") {
		t.Fatalf("error = %v, want bucket_strategy validation failure", err)
	}
}

func TestValidateRejectsBatchLargerThanCap(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.MaxItemsPerRun = 10
	cfg.Pipeline.DownloadBatchSize = 20
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for batch size above run cap")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandPath("~/media")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "media") {
		t.Fatalf("ExpandPath = %q", got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}
}
