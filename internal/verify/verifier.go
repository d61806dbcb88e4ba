package verify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"curator/internal/extraction"
	"curator/internal/logging"
	"curator/internal/media"
)

// Status is the verification outcome for one item.
type Status string

const (
	StatusPending      Status = "pending"
	StatusVerified     Status = "verified"
	StatusUnverifiable Status = "unverifiable"
	StatusError        Status = "error"
)

// ReasonNoCaptureDate is the detail recorded when extraction succeeds
// but the asset carries no original capture timestamp.
const ReasonNoCaptureDate = "no original capture date in metadata"

// Result is the verification record for one item. Results are mutated in
// place as verification proceeds and retained for the processing session
// so failed items can be re-verified in isolation.
type Result struct {
	Item        media.Item
	Status      Status
	CapturedAt  time.Time
	Meta        media.Metadata
	ErrorDetail string
}

// Mode selects which items a verification pass touches.
type Mode string

const (
	// ModeFull verifies every item.
	ModeFull Mode = "full"
	// ModeTargeted re-verifies only items currently unverifiable or in
	// error, leaving all other entries untouched.
	ModeTargeted Mode = "targeted"
)

// ResultSet maps item identity to its verification result. The map is
// shared across passes; a targeted pass only overwrites entries for the
// targeted subset.
type ResultSet map[string]*Result

// Verified returns the results with a trusted capture timestamp.
func (rs ResultSet) Verified() []*Result {
	out := make([]*Result, 0, len(rs))
	for _, res := range rs {
		if res.Status == StatusVerified {
			out = append(out, res)
		}
	}
	return out
}

// Counts tallies results per status.
func (rs ResultSet) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, res := range rs {
		counts[res.Status]++
	}
	return counts
}

// Verifier runs verification passes against the extraction client.
type Verifier struct {
	client *extraction.Client
	logger *slog.Logger
}

// NewVerifier constructs a verifier. A nil logger is replaced with a no-op.
func NewVerifier(client *extraction.Client, logger *slog.Logger) *Verifier {
	return &Verifier{
		client: client,
		logger: logging.NewComponentLogger(logger, "verifier"),
	}
}

// Run verifies items and merges outcomes into prior. A nil prior starts a
// fresh result set. In targeted mode only entries currently unverifiable
// or in error are re-probed; all other entries are left unchanged. An
// authentication failure aborts the whole pass immediately, since every
// further call would fail identically.
func (v *Verifier) Run(ctx context.Context, items []media.Item, prior ResultSet, mode Mode) (ResultSet, error) {
	results := prior
	if results == nil {
		results = make(ResultSet, len(items))
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		existing := results[item.Identity]
		if mode == ModeTargeted {
			if existing == nil {
				continue
			}
			if existing.Status != StatusUnverifiable && existing.Status != StatusError {
				continue
			}
		}

		result := existing
		if result == nil {
			result = &Result{Item: item, Status: StatusPending}
			results[item.Identity] = result
		}

		meta, err := v.client.Extract(ctx, item.Identity)
		switch {
		case err == nil && meta.HasCaptureTime():
			result.Status = StatusVerified
			result.CapturedAt = meta.CapturedAt
			result.Meta = meta
			result.ErrorDetail = ""
		case err == nil:
			result.Status = StatusUnverifiable
			result.CapturedAt = time.Time{}
			result.Meta = meta
			result.ErrorDetail = ReasonNoCaptureDate
		case errors.Is(err, extraction.ErrCredentialsExpired):
			// Not a per-item condition: abort the batch and surface it.
			v.logger.Warn("verification aborted",
				logging.String(logging.FieldEventType, "credentials_expired"),
				logging.String(logging.FieldErrorHint, "re-authenticate and re-run verification"),
			)
			return results, err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return results, err
		default:
			result.Status = StatusError
			result.CapturedAt = time.Time{}
			result.ErrorDetail = strings.TrimSpace(err.Error())
			v.logger.Debug("item verification failed",
				logging.String(logging.FieldItem, item.Identity),
				logging.Error(err),
			)
		}
	}

	counts := results.Counts()
	v.logger.Info("verification pass finished",
		logging.String("mode", string(mode)),
		logging.Int("verified", counts[StatusVerified]),
		logging.Int("unverifiable", counts[StatusUnverifiable]),
		logging.Int("errors", counts[StatusError]),
	)
	return results, nil
}
