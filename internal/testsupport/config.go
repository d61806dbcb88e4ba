// Package testsupport builds throwaway configurations and stores for
// package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"curator/internal/config"
	"curator/internal/ledger"
)

// NewConfig returns a validated configuration whose directories all live
// under the test's temp dir. Batch pauses are zeroed so pipeline tests
// run at full speed.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.LedgerDir = filepath.Join(base, "ledger")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Source.Root = filepath.Join(base, "source")
	cfg.Pipeline.BatchPauseSeconds = 0

	if err := os.MkdirAll(cfg.Source.Root, 0o755); err != nil {
		t.Fatalf("create source root: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// MustOpenLedger opens a ledger store for the configuration and closes
// it when the test ends.
func MustOpenLedger(t *testing.T, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close ledger: %v", err)
		}
	})
	return store
}

// WriteSourceFile drops a file with the given content under the source
// root and returns its identity (the root-relative path).
func WriteSourceFile(t *testing.T, cfg *config.Config, relPath string, content []byte) string {
	t.Helper()

	path := filepath.Join(cfg.Source.Root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create source subdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write source file: %v", err)
	}
	return relPath
}
