package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"curator/internal/logging"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSubmitRunsToCompletion(t *testing.T) {
	registry := NewRegistry(logging.NewNop())
	defer registry.Shutdown()

	var mu sync.Mutex
	var units []int
	id := registry.Submit("index photos", KindBulkExtraction, 4, func(ctx context.Context, unit int) error {
		mu.Lock()
		units = append(units, unit)
		mu.Unlock()
		return nil
	})

	waitFor(t, "task completion", func() bool {
		task, ok := registry.Get(id)
		return ok && task.Status == StatusCompleted
	})

	task, _ := registry.Get(id)
	if task.ProcessedUnits != 4 {
		t.Fatalf("processed = %d, want 4", task.ProcessedUnits)
	}
	if task.EndedAt == nil {
		t.Fatal("completed task missing end time")
	}
	mu.Lock()
	defer mu.Unlock()
	for i, unit := range units {
		if unit != i {
			t.Fatalf("units ran out of order: %v", units)
		}
	}
}

func TestFailureRecordsDetailAndRetryRestarts(t *testing.T) {
	registry := NewRegistry(logging.NewNop())
	defer registry.Shutdown()

	var mu sync.Mutex
	failOnce := true
	id := registry.Submit("flaky export", KindManifestGeneration, 3, func(ctx context.Context, unit int) error {
		mu.Lock()
		defer mu.Unlock()
		if unit == 1 && failOnce {
			failOnce = false
			return errors.New("disk full")
		}
		return nil
	})

	waitFor(t, "task failure", func() bool {
		task, ok := registry.Get(id)
		return ok && task.Status == StatusFailed
	})
	task, _ := registry.Get(id)
	if task.ErrorDetail != "disk full" {
		t.Fatalf("error detail = %q", task.ErrorDetail)
	}
	if task.ProcessedUnits != 1 {
		t.Fatalf("processed at failure = %d, want 1", task.ProcessedUnits)
	}

	if err := registry.Retry(id); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	waitFor(t, "retried completion", func() bool {
		task, ok := registry.Get(id)
		return ok && task.Status == StatusCompleted
	})
	task, _ = registry.Get(id)
	if task.ProcessedUnits != 3 || task.ErrorDetail != "" {
		t.Fatalf("after retry: %+v", task)
	}
}

func TestPauseRetainsProgressAndResumeContinues(t *testing.T) {
	registry := NewRegistry(logging.NewNop())
	defer registry.Shutdown()

	started := make(chan int, 8)
	release := make(chan struct{}, 8)
	id := registry.Submit("bulk download", KindBulkDownload, 3, func(ctx context.Context, unit int) error {
		started <- unit
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	// Let the first unit finish, then pause while the second is in flight.
	if unit := <-started; unit != 0 {
		t.Fatalf("first unit = %d", unit)
	}
	release <- struct{}{}
	if unit := <-started; unit != 1 {
		t.Fatalf("second unit = %d", unit)
	}
	if err := registry.Pause(id); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	waitFor(t, "paused state", func() bool {
		task, ok := registry.Get(id)
		return ok && task.Status == StatusPaused
	})
	task, _ := registry.Get(id)
	if task.ProcessedUnits != 1 {
		t.Fatalf("paused progress = %d, want the completed unit retained", task.ProcessedUnits)
	}

	if err := registry.Resume(id); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	// Resume re-runs the interrupted unit, not the whole task.
	if unit := <-started; unit != 1 {
		t.Fatalf("resumed unit = %d, want 1", unit)
	}
	release <- struct{}{}
	if unit := <-started; unit != 2 {
		t.Fatalf("final unit = %d", unit)
	}
	release <- struct{}{}

	waitFor(t, "completion after resume", func() bool {
		task, ok := registry.Get(id)
		return ok && task.Status == StatusCompleted
	})
}

func TestCancelRemovesTask(t *testing.T) {
	registry := NewRegistry(logging.NewNop())
	defer registry.Shutdown()

	started := make(chan int, 1)
	id := registry.Submit("never finishes", KindBulkDownload, 1, func(ctx context.Context, unit int) error {
		started <- unit
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	if err := registry.Cancel(id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	waitFor(t, "task removal", func() bool {
		_, ok := registry.Get(id)
		return !ok
	})
	if err := registry.Cancel(id); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("cancel of removed task = %v, want ErrUnknownTask", err)
	}
}

func TestUpdateProgressClamps(t *testing.T) {
	registry := NewRegistry(logging.NewNop())
	defer registry.Shutdown()

	block := make(chan struct{})
	defer close(block)
	id := registry.Submit("external worker", KindBulkDownload, 10, func(ctx context.Context, unit int) error {
		select {
		case <-block:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	if err := registry.UpdateProgress(id, 25); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	task, _ := registry.Get(id)
	if task.ProcessedUnits != 10 {
		t.Fatalf("processed = %d, want clamped to total", task.ProcessedUnits)
	}
	if err := registry.UpdateProgress("missing", 1); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("unknown task error = %v", err)
	}
}

func TestTasksListsOrderedSnapshots(t *testing.T) {
	registry := NewRegistry(logging.NewNop())
	defer registry.Shutdown()

	first := registry.Submit("one", KindBulkExtraction, 1, func(context.Context, int) error { return nil })
	second := registry.Submit("two", KindBulkExtraction, 1, func(context.Context, int) error { return nil })

	waitFor(t, "both tasks complete", func() bool {
		a, okA := registry.Get(first)
		b, okB := registry.Get(second)
		return okA && okB && a.Status == StatusCompleted && b.Status == StatusCompleted
	})

	snapshots := registry.Tasks()
	if len(snapshots) != 2 {
		t.Fatalf("snapshot count = %d", len(snapshots))
	}
	if snapshots[0].StartedAt.After(snapshots[1].StartedAt) {
		t.Fatalf("snapshots not ordered by start time")
	}
}
