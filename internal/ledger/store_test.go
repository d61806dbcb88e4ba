package ledger_test

import (
	"context"
	"errors"
	"testing"

	"curator/internal/ledger"
	"curator/internal/testsupport"
)

func TestEnsureProjectIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	first, err := store.EnsureProject(ctx, "trip", "Europe Trip", "photos/europe")
	if err != nil {
		t.Fatalf("EnsureProject: %v", err)
	}
	second, err := store.EnsureProject(ctx, "trip", "Renamed", "elsewhere")
	if err != nil {
		t.Fatalf("EnsureProject again: %v", err)
	}
	if second.Name != first.Name || second.SourceScope != first.SourceScope {
		t.Fatalf("second ensure altered the project: %+v", second)
	}
}

func TestCheckProcessedMissingProjectIsAllNew(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)

	result, err := store.CheckProcessed(context.Background(), "never-created", []string{"a", "b"})
	if err != nil {
		t.Fatalf("CheckProcessed: %v", err)
	}
	if len(result.New) != 2 || len(result.AlreadyProcessed) != 0 {
		t.Fatalf("result = %+v, want everything new", result)
	}
}

func TestCommitRecordsIdentitiesAndBuckets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	if _, err := store.EnsureProject(ctx, "trip", "Trip", ""); err != nil {
		t.Fatalf("EnsureProject: %v", err)
	}
	err := store.Commit(ctx, ledger.CommitRequest{
		ProjectID: "trip",
		RunID:     "run-1",
		Identities: map[string]string{
			"a": "2024-01",
			"b": "2024-01",
			"c": "2024-02",
		},
		DisplayNames: map[string]string{"2024-01": "January 2024", "2024-02": "February 2024"},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	check, err := store.CheckProcessed(ctx, "trip", []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("CheckProcessed: %v", err)
	}
	if len(check.AlreadyProcessed) != 3 || len(check.New) != 1 || check.New[0] != "d" {
		t.Fatalf("check = %+v", check)
	}

	buckets, err := store.Buckets(ctx, "trip")
	if err != nil {
		t.Fatalf("Buckets: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("bucket count = %d", len(buckets))
	}
	if buckets[0].Key != "2024-01" || buckets[0].ItemCount != 2 {
		t.Fatalf("first bucket = %+v", buckets[0])
	}
	if buckets[0].DisplayName != "January 2024" {
		t.Fatalf("display name = %q", buckets[0].DisplayName)
	}

	count, err := store.ProcessedCount(ctx, "trip")
	if err != nil {
		t.Fatalf("ProcessedCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("processed count = %d", count)
	}
}

func TestCommitGrowsBucketsMonotonically(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	if _, err := store.EnsureProject(ctx, "trip", "Trip", ""); err != nil {
		t.Fatalf("EnsureProject: %v", err)
	}
	commit := func(runID string, identities map[string]string) {
		t.Helper()
		if err := store.Commit(ctx, ledger.CommitRequest{
			ProjectID:  "trip",
			RunID:      runID,
			Identities: identities,
		}); err != nil {
			t.Fatalf("Commit %s: %v", runID, err)
		}
	}

	commit("run-1", map[string]string{"a": "2024-01", "b": "2024-01"})
	commit("run-2", map[string]string{"c": "2024-01", "d": "2024-02"})
	// Re-committing an identity must change nothing.
	commit("run-3", map[string]string{"a": "2024-01"})

	buckets, err := store.Buckets(ctx, "trip")
	if err != nil {
		t.Fatalf("Buckets: %v", err)
	}
	if buckets[0].Key != "2024-01" || buckets[0].ItemCount != 3 {
		t.Fatalf("2024-01 bucket = %+v, want 3 items across two runs", buckets[0])
	}
	if len(buckets[0].ContributingRunIDs) != 2 {
		t.Fatalf("contributing runs = %v, want run-1 and run-2", buckets[0].ContributingRunIDs)
	}
	if buckets[1].Key != "2024-02" || buckets[1].ItemCount != 1 {
		t.Fatalf("2024-02 bucket = %+v", buckets[1])
	}
}

func TestLedgerSurvivesReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	if _, err := store.EnsureProject(ctx, "trip", "Trip", ""); err != nil {
		t.Fatalf("EnsureProject: %v", err)
	}
	if err := store.Commit(ctx, ledger.CommitRequest{
		ProjectID:  "trip",
		RunID:      "run-1",
		Identities: map[string]string{"a": "2024-01"},
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close ledger: %v", err)
	}

	reopened, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("reopen ledger: %v", err)
	}
	defer reopened.Close()

	check, err := reopened.CheckProcessed(ctx, "trip", []string{"a", "b"})
	if err != nil {
		t.Fatalf("CheckProcessed after reopen: %v", err)
	}
	if len(check.AlreadyProcessed) != 1 || check.AlreadyProcessed[0] != "a" {
		t.Fatalf("check after reopen = %+v, identity a must stay processed", check)
	}
}

func TestOpenRejectsSecondWriter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	_ = store

	if _, err := ledger.Open(cfg); !errors.Is(err, ledger.ErrLedgerLocked) {
		t.Fatalf("second open error = %v, want ErrLedgerLocked", err)
	}
}

func TestClearProject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	if _, err := store.EnsureProject(ctx, "trip", "Trip", ""); err != nil {
		t.Fatalf("EnsureProject: %v", err)
	}
	if err := store.Commit(ctx, ledger.CommitRequest{
		ProjectID:  "trip",
		RunID:      "run-1",
		Identities: map[string]string{"a": "2024-01"},
	}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	removed, err := store.ClearProject(ctx, "trip")
	if err != nil {
		t.Fatalf("ClearProject: %v", err)
	}
	if !removed {
		t.Fatal("expected project removal")
	}

	check, err := store.CheckProcessed(ctx, "trip", []string{"a"})
	if err != nil {
		t.Fatalf("CheckProcessed: %v", err)
	}
	if len(check.New) != 1 {
		t.Fatalf("cleared identity not eligible again: %+v", check)
	}
}
