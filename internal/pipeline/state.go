package pipeline

import (
	"time"

	"curator/internal/media"
)

// Status is the current stage of the pipeline.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusVerifying   Status = "verifying"
	StatusDownloading Status = "downloading"
	StatusExtracting  Status = "extracting"
	StatusOrganizing  Status = "organizing"
	StatusRenaming    Status = "renaming"
	StatusGenerating  Status = "generating"
	StatusPreviewing  Status = "previewing"
	StatusCommitting  Status = "committing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// runSteps is the ordered stage sequence of one run, used for the
// step-of-total display. Verification happens before a run starts and is
// not counted here.
var runSteps = []Status{
	StatusDownloading,
	StatusExtracting,
	StatusOrganizing,
	StatusRenaming,
	StatusGenerating,
	StatusPreviewing,
	StatusCommitting,
}

// Progress weighting per stage, in percent of the whole run.
const (
	progressVerifyEnd   = 20.0
	progressDownloadEnd = 60.0
	progressOrganizeEnd = 80.0
	progressGenerateEnd = 90.0
	progressCommitEnd   = 100.0
)

// Counters tracks run throughput for the status surface.
type Counters struct {
	Downloaded int
	Processed  int
	TotalBytes int64
	MovedBytes int64
}

// State is a point-in-time snapshot of the pipeline. Snapshots are
// value types; the orchestrator replaces its state wholesale on every
// transition, so a caller holding a State never observes a later change.
type State struct {
	Status Status
	// Paused is orthogonal to Status: a paused run keeps its stage and
	// resumes exactly where it stopped.
	Paused bool

	RunID       string
	ProjectID   string
	ProjectName string

	StepIndex  int
	TotalSteps int
	// ProgressPercent is the weighted whole-run progress, 0 to 100.
	ProgressPercent  float64
	CurrentItemLabel string
	// ETA is nil until at least one item has completed in the current
	// stage; estimates from zero completions would be meaningless.
	ETA *time.Duration

	Counters  Counters
	StartedAt time.Time

	ErrorDetail string
	// Exclusions lists every item dropped from the run with the stage and
	// reason. Skipped items always leave a record.
	Exclusions []media.Exclusion
	// RemainingBeyondCap counts eligible items left for a follow-up run
	// because the per-run cap was reached.
	RemainingBeyondCap int

	ManifestPath string
}

// Active reports whether a run is in progress (between start and
// preview/commit resolution).
func (s State) Active() bool {
	switch s.Status {
	case StatusIdle, StatusCompleted, StatusFailed:
		return false
	default:
		return true
	}
}

func stepIndexOf(status Status) int {
	for i, step := range runSteps {
		if step == status {
			return i + 1
		}
	}
	return 0
}
