package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"curator/internal/config"
	"curator/internal/ledger"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/notifications"
	"curator/internal/organize"
	"curator/internal/services"
	"curator/internal/textutil"
	"curator/internal/verify"
)

var (
	// ErrRunActive is returned when an operation requires an idle pipeline.
	ErrRunActive = errors.New("pipeline: a run is already active")
	// ErrNotVerified is returned when a run starts without a verification pass.
	ErrNotVerified = errors.New("pipeline: no verified items, run verification first")
	// ErrNoPreview is returned when commit or discard is requested without
	// a run awaiting review.
	ErrNoPreview = errors.New("pipeline: no run awaiting review")
	// ErrNothingToCommit is returned when a verified set dedupes to empty.
	ErrNothingToCommit = errors.New("pipeline: all eligible items were already processed")
)

// Deps bundles the services the orchestrator coordinates.
type Deps struct {
	Lister   services.Lister
	Store    services.ContentStore
	Verifier *verify.Verifier
	Ledger   *ledger.Store
	Notifier notifications.Service
	Logger   *slog.Logger
}

// runSession is the mutable carry-over between a previewed run and its
// commit. It survives a failed commit so the tail can be retried without
// re-placing items that already moved.
type runSession struct {
	runID       string
	projectID   string
	projectName string
	stagingDir  string
	processed   []media.ProcessedItem
	sizes       map[string]int64
	placed      map[string]bool
	startedAt   time.Time
}

// Orchestrator owns the pipeline state machine. All public methods are
// safe for concurrent use; Pause, Resume, and Cancel are expected to be
// called from a different goroutine than the one driving the run.
type Orchestrator struct {
	cfg      *config.Config
	logger   *slog.Logger
	lister   services.Lister
	store    services.ContentStore
	verifier *verify.Verifier
	ledger   *ledger.Store
	notifier notifications.Service
	strategy organize.Strategy

	pausePoll time.Duration
	now       func() time.Time

	mu      sync.Mutex
	state   State
	results verify.ResultSet
	items   []media.Item
	session *runSession
	cancel  context.CancelFunc
}

// Option customizes orchestrator behavior, mostly for tests.
type Option func(*Orchestrator)

// WithPausePoll overrides how often a paused run re-checks the flag.
func WithPausePoll(interval time.Duration) Option {
	return func(o *Orchestrator) {
		if interval > 0 {
			o.pausePoll = interval
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New constructs an orchestrator in the idle state.
func New(cfg *config.Config, deps Deps, opts ...Option) (*Orchestrator, error) {
	strategy, err := organize.ParseStrategy(cfg.Pipeline.BucketStrategy)
	if err != nil {
		return nil, err
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	o := &Orchestrator{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(deps.Logger, "pipeline"),
		lister:    deps.Lister,
		store:     deps.Store,
		verifier:  deps.Verifier,
		ledger:    deps.Ledger,
		notifier:  notifier,
		strategy:  strategy,
		pausePoll: 200 * time.Millisecond,
		now:       time.Now,
		state:     State{Status: StatusIdle, TotalSteps: len(runSteps)},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// State returns the current snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// VerificationCounts tallies the retained verification results by status.
func (o *Orchestrator) VerificationCounts() map[verify.Status]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.results == nil {
		return map[verify.Status]int{}
	}
	return o.results.Counts()
}

// VerificationResults returns the retained results ordered by item name.
func (o *Orchestrator) VerificationResults() []*verify.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*verify.Result, 0, len(o.results))
	for _, res := range o.results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Item.Name != out[j].Item.Name {
			return out[i].Item.Name < out[j].Item.Name
		}
		return out[i].Item.Identity < out[j].Item.Identity
	})
	return out
}

// Pause requests suspension of the active run. It takes effect at the
// next item boundary; in-flight item work is never interrupted.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Active() {
		next := o.state
		next.Paused = true
		o.state = next
	}
}

// Resume clears the pause flag.
func (o *Orchestrator) Resume() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Paused {
		next := o.state
		next.Paused = false
		o.state = next
	}
}

// Cancel aborts the active run and returns the pipeline to idle. The
// staged files of the cancelled run are removed.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancel
	next := o.state
	next.Paused = false
	o.state = next
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Verify lists the configured scope and runs a verification pass,
// retaining the results for the next run. Targeted mode reuses the last
// listing and only re-probes items that previously failed; everything
// already verified keeps its result byte for byte.
func (o *Orchestrator) Verify(ctx context.Context, mode verify.Mode) error {
	o.mu.Lock()
	if o.state.Active() {
		o.mu.Unlock()
		return ErrRunActive
	}
	o.state = State{
		Status:     StatusVerifying,
		TotalSteps: len(runSteps),
		StartedAt:  o.now().UTC(),
	}
	items := o.items
	prior := o.results
	o.mu.Unlock()

	if mode == verify.ModeFull || len(items) == 0 {
		listed, err := o.lister.List(ctx, o.cfg.Source.Scope)
		if err != nil {
			o.failIdle(fmt.Errorf("list items: %w", err))
			return fmt.Errorf("list items: %w", err)
		}
		items = listed
		if mode == verify.ModeFull {
			prior = nil
		}
	}

	results, err := o.verifier.Run(ctx, items, prior, mode)

	o.mu.Lock()
	o.items = items
	o.results = results
	o.mu.Unlock()

	if err != nil {
		o.failIdle(err)
		o.notifyError(err, "verification")
		return err
	}

	o.mu.Lock()
	next := o.state
	next.Status = StatusIdle
	next.ProgressPercent = progressVerifyEnd
	next.CurrentItemLabel = ""
	o.state = next
	o.mu.Unlock()
	return nil
}

// StartRun executes one run from download through manifest generation,
// then parks in the previewing state awaiting ConfirmCommit or
// DiscardPreview. Requires a prior verification pass with at least one
// verified item.
func (o *Orchestrator) StartRun(ctx context.Context) (string, error) {
	o.mu.Lock()
	if o.state.Active() {
		o.mu.Unlock()
		return "", ErrRunActive
	}
	verified := o.results.Verified()
	if len(verified) == 0 {
		o.mu.Unlock()
		return "", ErrNotVerified
	}

	// Items that never verified are excluded up front, with the reason
	// carried into the run state so nothing vanishes silently.
	var verifyExclusions []media.Exclusion
	for _, res := range o.results {
		if res.Status == verify.StatusVerified {
			continue
		}
		verifyExclusions = append(verifyExclusions, media.Exclusion{
			Identity: res.Item.Identity,
			Name:     res.Item.Name,
			Stage:    "verification",
			Reason:   res.ErrorDetail,
		})
	}
	sort.Slice(verifyExclusions, func(i, j int) bool {
		return verifyExclusions[i].Identity < verifyExclusions[j].Identity
	})

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	runID := uuid.NewString()
	scope := o.cfg.Source.Scope
	if strings.TrimSpace(scope) == "" {
		scope = o.cfg.Source.Root
	}
	session := &runSession{
		runID:       runID,
		projectID:   textutil.SanitizeToken(scope),
		projectName: ledger.DeriveProjectName(scope),
		stagingDir:  filepath.Join(o.cfg.Paths.StagingDir, runID),
		sizes:       make(map[string]int64),
		placed:      make(map[string]bool),
		startedAt:   o.now().UTC(),
	}
	o.session = session
	o.state = State{
		Status:      StatusDownloading,
		RunID:       runID,
		ProjectID:   session.projectID,
		ProjectName: session.projectName,
		StepIndex:   stepIndexOf(StatusDownloading),
		TotalSteps:  len(runSteps),
		StartedAt:   session.startedAt,
	}
	o.mu.Unlock()

	err := o.executeRun(runCtx, session, verified, verifyExclusions)

	o.mu.Lock()
	o.cancel = nil
	o.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			o.discardSession(session)
			o.setIdle()
			return runID, err
		}
		o.failIdle(err)
		o.notifyError(err, "run "+runID)
		return runID, err
	}
	return runID, nil
}

func (o *Orchestrator) executeRun(ctx context.Context, session *runSession, verified []*verify.Result, exclusions []media.Exclusion) error {
	// Capture-time order decides which items make the cut when the run
	// cap applies, so the oldest media always lands first.
	sort.Slice(verified, func(i, j int) bool {
		if !verified[i].CapturedAt.Equal(verified[j].CapturedAt) {
			return verified[i].CapturedAt.Before(verified[j].CapturedAt)
		}
		return verified[i].Item.Identity < verified[j].Item.Identity
	})

	if _, err := o.ledger.EnsureProject(ctx, session.projectID, session.projectName, o.cfg.Source.Scope); err != nil {
		return err
	}

	identities := make([]string, len(verified))
	for i, res := range verified {
		identities[i] = res.Item.Identity
	}
	check, err := o.ledger.CheckProcessed(ctx, session.projectID, identities)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(check.AlreadyProcessed))
	for _, identity := range check.AlreadyProcessed {
		known[identity] = true
	}
	candidates := make([]*verify.Result, 0, len(verified))
	for _, res := range verified {
		if known[res.Item.Identity] {
			exclusions = append(exclusions, media.Exclusion{
				Identity: res.Item.Identity,
				Name:     res.Item.Name,
				Stage:    "dedup",
				Reason:   "already processed in a previous run",
			})
			continue
		}
		candidates = append(candidates, res)
	}
	if len(candidates) == 0 {
		return ErrNothingToCommit
	}

	remaining := 0
	if limit := o.cfg.Pipeline.MaxItemsPerRun; limit > 0 && len(candidates) > limit {
		remaining = len(candidates) - limit
		candidates = candidates[:limit]
	}

	var totalBytes int64
	for _, res := range candidates {
		totalBytes += res.Item.Size
	}

	o.mu.Lock()
	next := o.state
	next.Exclusions = exclusions
	next.RemainingBeyondCap = remaining
	next.Counters.TotalBytes = totalBytes
	next.ProgressPercent = progressVerifyEnd
	o.state = next
	o.mu.Unlock()

	if err := o.notifier.NotifyRunStarted(ctx, session.projectName, len(candidates)); err != nil {
		o.logger.Debug("run started notification failed", logging.Error(err))
	}

	downloaded, err := o.downloadStage(ctx, session, candidates)
	if err != nil {
		return err
	}
	if len(downloaded) == 0 {
		return fmt.Errorf("run %s: every download failed", session.runID)
	}

	// Extraction already ran during verification; surface the stage so
	// the status timeline matches what operators expect, then hand the
	// retained metadata to the organizer.
	o.transition(StatusExtracting, progressDownloadEnd, "")

	o.transition(StatusOrganizing, progressDownloadEnd, "")
	organized, err := organize.Organize(downloaded, o.strategy)
	if err != nil {
		return err
	}
	o.transition(StatusOrganizing, progressOrganizeEnd, "")

	if err := o.renameStage(ctx, session, organized); err != nil {
		return err
	}

	o.transition(StatusGenerating, progressOrganizeEnd, "")
	manifestPath, err := organize.WriteRunManifest(session.stagingDir, session.runID, session.processed, session.sizes)
	if err != nil {
		return fmt.Errorf("write run manifest: %w", err)
	}
	if _, err := organize.WriteBucketManifests(session.stagingDir, session.processed, session.sizes); err != nil {
		return fmt.Errorf("write bucket manifests: %w", err)
	}

	o.mu.Lock()
	next = o.state
	next.Status = StatusPreviewing
	next.StepIndex = stepIndexOf(StatusPreviewing)
	next.ProgressPercent = progressGenerateEnd
	next.CurrentItemLabel = ""
	next.ManifestPath = manifestPath
	next.ETA = nil
	o.state = next
	o.mu.Unlock()

	if err := o.notifier.NotifyAwaitingReview(ctx, session.projectName, len(session.processed)); err != nil {
		o.logger.Debug("review notification failed", logging.Error(err))
	}
	o.logger.Info("run previewing",
		logging.String(logging.FieldRunID, session.runID),
		logging.Int("items", len(session.processed)),
		logging.String("manifest", manifestPath),
	)
	return nil
}

// downloadStage pulls candidate bytes into staging in sub-batches. A
// failed item is recorded as an exclusion and the batch continues; only
// cancellation stops the stage.
func (o *Orchestrator) downloadStage(ctx context.Context, session *runSession, candidates []*verify.Result) ([]media.ProcessedItem, error) {
	if err := os.MkdirAll(session.stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	batchSize := o.cfg.Pipeline.DownloadBatchSize
	if batchSize <= 0 {
		batchSize = len(candidates)
	}
	batchPause := time.Duration(o.cfg.Pipeline.BatchPauseSeconds) * time.Second

	downloaded := make([]media.ProcessedItem, 0, len(candidates))
	stageStart := o.now()
	total := len(candidates)

	for i, res := range candidates {
		if i > 0 && i%batchSize == 0 && batchPause > 0 {
			if err := o.sleep(ctx, batchPause); err != nil {
				return nil, err
			}
		}
		if err := o.pauseGate(ctx); err != nil {
			return nil, err
		}

		item := res.Item
		o.transition(StatusDownloading, o.downloadProgress(i, total), item.Name)

		localPath := filepath.Join(session.stagingDir, textutil.SanitizeFileName(item.Identity+"_"+item.Name))
		written, err := o.downloadItem(ctx, item.Identity, localPath)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.recordExclusion(media.Exclusion{
				Identity: item.Identity,
				Name:     item.Name,
				Stage:    "download",
				Reason:   strings.TrimSpace(err.Error()),
			})
			o.logger.Warn("item download failed",
				logging.String(logging.FieldItem, item.Identity),
				logging.Error(err),
			)
			continue
		}

		session.sizes[item.Identity] = written
		downloaded = append(downloaded, media.ProcessedItem{
			Identity:     item.Identity,
			OriginalName: item.Name,
			CapturedAt:   res.CapturedAt,
			LocalPath:    localPath,
			Meta:         res.Meta,
		})

		o.mu.Lock()
		next := o.state
		next.Counters.Downloaded++
		next.ProgressPercent = o.downloadProgress(i+1, total)
		elapsed := o.now().Sub(stageStart)
		completed := i + 1
		if completed > 0 && completed < total {
			eta := time.Duration(float64(elapsed) / float64(completed) * float64(total-completed))
			next.ETA = &eta
		} else {
			next.ETA = nil
		}
		o.state = next
		o.mu.Unlock()
	}
	return downloaded, nil
}

func (o *Orchestrator) downloadItem(ctx context.Context, identity, localPath string) (int64, error) {
	reader, err := o.store.Download(ctx, identity)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return 0, err
	}
	written, copyErr := io.Copy(out, reader)
	if closeErr := out.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(localPath)
		return 0, copyErr
	}
	return written, nil
}

// renameStage applies assigned names to the staged copies so the preview
// on disk matches exactly what a commit will publish.
func (o *Orchestrator) renameStage(ctx context.Context, session *runSession, organized []media.ProcessedItem) error {
	o.transition(StatusRenaming, progressOrganizeEnd, "")
	for i := range organized {
		if err := o.pauseGate(ctx); err != nil {
			return err
		}
		target := filepath.Join(session.stagingDir, organized[i].AssignedName)
		if organized[i].LocalPath != target {
			if err := os.Rename(organized[i].LocalPath, target); err != nil {
				return fmt.Errorf("rename staged item %s: %w", organized[i].Identity, err)
			}
			organized[i].LocalPath = target
		}
		o.transition(StatusRenaming, progressOrganizeEnd, organized[i].AssignedName)
	}
	session.processed = organized

	o.mu.Lock()
	next := o.state
	next.Counters.Processed = len(organized)
	o.state = next
	o.mu.Unlock()
	return nil
}

// ConfirmCommit publishes a previewed run: every item is placed in its
// bucket, then the run is recorded in the ledger. A placement failure
// leaves already-placed items marked so RetryCommit resumes the tail
// instead of starting over.
func (o *Orchestrator) ConfirmCommit(ctx context.Context) error {
	o.mu.Lock()
	session := o.session
	if session == nil || (o.state.Status != StatusPreviewing && o.state.Status != StatusFailed) {
		o.mu.Unlock()
		return ErrNoPreview
	}
	next := o.state
	next.Status = StatusCommitting
	next.StepIndex = stepIndexOf(StatusCommitting)
	next.ErrorDetail = ""
	o.state = next
	o.mu.Unlock()

	total := len(session.processed)
	for i, item := range session.processed {
		if session.placed[item.Identity] {
			continue
		}
		if err := o.pauseGate(ctx); err != nil {
			return o.failCommit(err)
		}

		bucketPath := organize.BucketPath(item.CapturedAt, o.strategy)
		o.transition(StatusCommitting, o.commitProgress(i, total), item.AssignedName)
		if err := o.store.Place(ctx, item.Identity, item.AssignedName, bucketPath); err != nil {
			return o.failCommit(fmt.Errorf("place %s: %w", item.Identity, err))
		}
		session.placed[item.Identity] = true
		session.processed[i].PlacedPath = filepath.Join(bucketPath, item.AssignedName)

		o.mu.Lock()
		next := o.state
		next.Counters.MovedBytes += session.sizes[item.Identity]
		next.ProgressPercent = o.commitProgress(i+1, total)
		o.state = next
		o.mu.Unlock()
	}

	req := ledger.CommitRequest{
		ProjectID:    session.projectID,
		RunID:        session.runID,
		Identities:   make(map[string]string, total),
		DisplayNames: make(map[string]string),
	}
	for _, item := range session.processed {
		req.Identities[item.Identity] = item.BucketKey
		req.DisplayNames[item.BucketKey] = organize.BucketDisplayName(item.BucketKey, o.strategy)
	}
	if err := o.ledger.Commit(ctx, req); err != nil {
		return o.failCommit(fmt.Errorf("ledger commit: %w", err))
	}

	duration := o.now().UTC().Sub(session.startedAt)
	o.mu.Lock()
	excluded := len(o.state.Exclusions)
	next = o.state
	next.Status = StatusCompleted
	next.ProgressPercent = progressCommitEnd
	next.CurrentItemLabel = ""
	next.ETA = nil
	o.state = next
	o.session = nil
	// Committed identities are now in the ledger; the next run must
	// re-verify against a fresh listing.
	o.results = nil
	o.items = nil
	o.mu.Unlock()

	if err := o.notifier.NotifyRunCompleted(ctx, session.projectName, total, excluded, duration); err != nil {
		o.logger.Debug("completion notification failed", logging.Error(err))
	}
	o.logger.Info("run committed",
		logging.String(logging.FieldRunID, session.runID),
		logging.String(logging.FieldProject, session.projectID),
		logging.Int("items", total),
		logging.Int("excluded", excluded),
	)
	return nil
}

// RetryCommit re-runs the commit tail after a placement or ledger
// failure. Items already placed are not placed again.
func (o *Orchestrator) RetryCommit(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Status != StatusFailed || o.session == nil {
		o.mu.Unlock()
		return ErrNoPreview
	}
	o.mu.Unlock()
	return o.ConfirmCommit(ctx)
}

// DiscardPreview abandons a previewed run: staged files are deleted,
// nothing is recorded in the ledger, and the pipeline returns to idle.
// Verification results are kept so a new run does not re-probe.
func (o *Orchestrator) DiscardPreview() error {
	o.mu.Lock()
	session := o.session
	if session == nil || o.state.Status != StatusPreviewing {
		o.mu.Unlock()
		return ErrNoPreview
	}
	o.session = nil
	o.mu.Unlock()

	o.discardSession(session)
	o.setIdle()
	o.logger.Info("preview discarded", logging.String(logging.FieldRunID, session.runID))
	return nil
}

func (o *Orchestrator) discardSession(session *runSession) {
	if session == nil {
		return
	}
	if err := os.RemoveAll(session.stagingDir); err != nil {
		o.logger.Warn("remove staging dir failed",
			logging.String(logging.FieldRunID, session.runID),
			logging.Error(err),
		)
	}
}

// failCommit records a commit failure while keeping the session so the
// tail can be retried.
func (o *Orchestrator) failCommit(err error) error {
	o.mu.Lock()
	next := o.state
	next.Status = StatusFailed
	next.ErrorDetail = err.Error()
	next.CurrentItemLabel = ""
	o.state = next
	o.mu.Unlock()
	o.notifyError(err, "commit")
	return err
}

func (o *Orchestrator) failIdle(err error) {
	o.mu.Lock()
	next := o.state
	next.Status = StatusFailed
	next.ErrorDetail = err.Error()
	next.CurrentItemLabel = ""
	next.Paused = false
	next.ETA = nil
	o.state = next
	o.session = nil
	o.mu.Unlock()
}

func (o *Orchestrator) setIdle() {
	o.mu.Lock()
	o.state = State{Status: StatusIdle, TotalSteps: len(runSteps)}
	o.mu.Unlock()
}

func (o *Orchestrator) transition(status Status, progress float64, itemLabel string) {
	o.mu.Lock()
	next := o.state
	next.Status = status
	if idx := stepIndexOf(status); idx > 0 {
		next.StepIndex = idx
	}
	next.ProgressPercent = progress
	next.CurrentItemLabel = itemLabel
	o.state = next
	o.mu.Unlock()
}

func (o *Orchestrator) recordExclusion(exclusion media.Exclusion) {
	o.mu.Lock()
	next := o.state
	next.Exclusions = append(append([]media.Exclusion(nil), next.Exclusions...), exclusion)
	o.state = next
	o.mu.Unlock()
}

func (o *Orchestrator) downloadProgress(completed, total int) float64 {
	if total == 0 {
		return progressDownloadEnd
	}
	span := progressDownloadEnd - progressVerifyEnd
	return progressVerifyEnd + span*float64(completed)/float64(total)
}

func (o *Orchestrator) commitProgress(completed, total int) float64 {
	if total == 0 {
		return progressCommitEnd
	}
	span := progressCommitEnd - progressGenerateEnd
	return progressGenerateEnd + span*float64(completed)/float64(total)
}

// pauseGate blocks while the pause flag is set, polling at the
// configured interval. Cancellation wins over pause.
func (o *Orchestrator) pauseGate(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.mu.Lock()
		paused := o.state.Paused
		o.mu.Unlock()
		if !paused {
			return nil
		}
		if err := o.sleep(ctx, o.pausePoll); err != nil {
			return err
		}
	}
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (o *Orchestrator) notifyError(err error, label string) {
	notifyCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if notifyErr := o.notifier.NotifyError(notifyCtx, err, label); notifyErr != nil {
		o.logger.Debug("error notification failed", logging.Error(notifyErr))
	}
}
