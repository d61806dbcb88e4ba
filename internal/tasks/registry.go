package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"curator/internal/logging"
)

// Kind labels the category of background work.
type Kind string

const (
	KindBulkExtraction     Kind = "bulk_extraction"
	KindBulkDownload       Kind = "bulk_download"
	KindManifestGeneration Kind = "manifest_generation"
)

// Status is the lifecycle of a background task.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is a point-in-time snapshot of one background job.
type Task struct {
	ID             string
	Label          string
	Kind           Kind
	Status         Status
	TotalUnits     int
	ProcessedUnits int
	StartedAt      time.Time
	EndedAt        *time.Time
	ErrorDetail    string
}

// UnitFunc performs one unit of a task's work. The context is cancelled
// when the task is paused or cancelled; long units should honor it, but
// the registry only guarantees interruption between units.
type UnitFunc func(ctx context.Context, unit int) error

// ErrUnknownTask is returned for operations on task ids the registry
// does not hold.
var ErrUnknownTask = errors.New("tasks: unknown task")

type taskState struct {
	snapshot Task
	fn       UnitFunc
	cancel   context.CancelFunc
	pausing  bool
}

// Registry owns the set of background tasks. Tasks run independently of
// each other and of the pipeline; cancelling one never affects another.
type Registry struct {
	logger *slog.Logger

	mu    sync.Mutex
	tasks map[string]*taskState
	wg    sync.WaitGroup
}

// NewRegistry constructs an empty registry. A nil logger is replaced
// with a no-op.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logging.NewComponentLogger(logger, "tasks"),
		tasks:  make(map[string]*taskState),
	}
}

// Submit registers a new task and starts it immediately. The returned id
// addresses the task in all other registry calls.
func (r *Registry) Submit(label string, kind Kind, totalUnits int, fn UnitFunc) string {
	id := uuid.NewString()
	state := &taskState{
		snapshot: Task{
			ID:         id,
			Label:      strings.TrimSpace(label),
			Kind:       kind,
			Status:     StatusQueued,
			TotalUnits: totalUnits,
		},
		fn: fn,
	}

	r.mu.Lock()
	r.tasks[id] = state
	r.mu.Unlock()

	r.start(id)
	return id
}

func (r *Registry) start(id string) {
	r.mu.Lock()
	state, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	state.cancel = cancel
	state.pausing = false
	state.snapshot.Status = StatusRunning
	if state.snapshot.StartedAt.IsZero() {
		state.snapshot.StartedAt = time.Now().UTC()
	}
	state.snapshot.EndedAt = nil
	r.mu.Unlock()

	r.wg.Add(1)
	go r.runTask(ctx, id)
}

func (r *Registry) runTask(ctx context.Context, id string) {
	defer r.wg.Done()

	for {
		r.mu.Lock()
		state, ok := r.tasks[id]
		if !ok {
			r.mu.Unlock()
			return
		}
		if state.snapshot.ProcessedUnits >= state.snapshot.TotalUnits {
			now := time.Now().UTC()
			state.snapshot.Status = StatusCompleted
			state.snapshot.EndedAt = &now
			r.mu.Unlock()
			r.logger.Info("task completed",
				logging.String(logging.FieldTaskID, id),
				logging.String("label", state.snapshot.Label),
			)
			return
		}
		unit := state.snapshot.ProcessedUnits
		fn := state.fn
		r.mu.Unlock()

		// Suspension point: cancellation and pause take effect between
		// units, never mid-unit.
		if err := ctx.Err(); err != nil {
			r.finishInterrupted(id)
			return
		}

		err := fn(ctx, unit)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				r.finishInterrupted(id)
				return
			}
			r.mu.Lock()
			if state, ok := r.tasks[id]; ok {
				now := time.Now().UTC()
				state.snapshot.Status = StatusFailed
				state.snapshot.ErrorDetail = err.Error()
				state.snapshot.EndedAt = &now
			}
			r.mu.Unlock()
			r.logger.Warn("task failed",
				logging.String(logging.FieldTaskID, id),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "retry the task to restart it from zero"),
			)
			return
		}

		r.mu.Lock()
		if state, ok := r.tasks[id]; ok && state.snapshot.ProcessedUnits < state.snapshot.TotalUnits {
			state.snapshot.ProcessedUnits++
		}
		r.mu.Unlock()
	}
}

// finishInterrupted resolves a cancelled unit into either paused state
// (progress retained) or removal, depending on what was requested.
func (r *Registry) finishInterrupted(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.tasks[id]
	if !ok {
		return
	}
	if state.pausing {
		state.pausing = false
		state.snapshot.Status = StatusPaused
		return
	}
	delete(r.tasks, id)
}

// Pause cancels the task's current unit and retains completed work.
func (r *Registry) Pause(id string) error {
	r.mu.Lock()
	state, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownTask
	}
	if state.snapshot.Status != StatusRunning && state.snapshot.Status != StatusQueued {
		r.mu.Unlock()
		return nil
	}
	state.pausing = true
	cancel := state.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// Resume re-queues a paused task without discarding progress.
func (r *Registry) Resume(id string) error {
	r.mu.Lock()
	state, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownTask
	}
	if state.snapshot.Status != StatusPaused {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	r.start(id)
	return nil
}

// Cancel stops the task and removes it from the registry entirely.
func (r *Registry) Cancel(id string) error {
	r.mu.Lock()
	state, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownTask
	}
	cancel := state.cancel
	running := state.snapshot.Status == StatusRunning || state.snapshot.Status == StatusQueued
	if !running {
		delete(r.tasks, id)
	}
	state.pausing = false
	r.mu.Unlock()

	// Running workers observe the cancellation and remove the entry.
	if running && cancel != nil {
		cancel()
	}
	return nil
}

// Retry resets progress and error detail, then re-queues the task.
func (r *Registry) Retry(id string) error {
	r.mu.Lock()
	state, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownTask
	}
	if state.snapshot.Status == StatusRunning || state.snapshot.Status == StatusQueued {
		r.mu.Unlock()
		return nil
	}
	state.snapshot.ProcessedUnits = 0
	state.snapshot.ErrorDetail = ""
	r.mu.Unlock()

	r.start(id)
	return nil
}

// UpdateProgress overrides a task's processed unit count, for workers
// that report progress externally.
func (r *Registry) UpdateProgress(id string, processedUnits int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.tasks[id]
	if !ok {
		return ErrUnknownTask
	}
	if processedUnits < 0 {
		processedUnits = 0
	}
	if processedUnits > state.snapshot.TotalUnits {
		processedUnits = state.snapshot.TotalUnits
	}
	state.snapshot.ProcessedUnits = processedUnits
	return nil
}

// Get returns a snapshot of one task.
func (r *Registry) Get(id string) (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return state.snapshot, true
}

// Tasks returns snapshots of all tasks ordered by start time.
func (r *Registry) Tasks() []Task {
	r.mu.Lock()
	snapshots := make([]Task, 0, len(r.tasks))
	for _, state := range r.tasks {
		snapshots = append(snapshots, state.snapshot)
	}
	r.mu.Unlock()

	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].StartedAt.Equal(snapshots[j].StartedAt) {
			return snapshots[i].StartedAt.Before(snapshots[j].StartedAt)
		}
		return snapshots[i].ID < snapshots[j].ID
	})
	return snapshots
}

// Shutdown cancels every task and waits for workers to exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	for _, state := range r.tasks {
		state.pausing = false
		if state.cancel != nil {
			state.cancel()
		}
	}
	r.mu.Unlock()
	r.wg.Wait()
}
