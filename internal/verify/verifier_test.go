package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"curator/internal/extraction"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/services"
)

type mapExtractor struct {
	calls map[string]int
	meta  map[string]media.Metadata
	errs  map[string]error
}

func newMapExtractor() *mapExtractor {
	return &mapExtractor{
		calls: make(map[string]int),
		meta:  make(map[string]media.Metadata),
		errs:  make(map[string]error),
	}
}

func (m *mapExtractor) Extract(ctx context.Context, identity string) (media.Metadata, error) {
	m.calls[identity]++
	if err := m.errs[identity]; err != nil {
		return media.Metadata{}, err
	}
	return m.meta[identity], nil
}

func newTestVerifier(extractor services.Extractor) *Verifier {
	client := extraction.NewClient(extractor, extraction.WithSleeper(func(time.Duration) {}))
	return NewVerifier(client, logging.NewNop())
}

func items(identities ...string) []media.Item {
	out := make([]media.Item, len(identities))
	for i, id := range identities {
		out[i] = media.Item{Identity: id, Name: id + ".jpg"}
	}
	return out
}

func TestRunFullPass(t *testing.T) {
	extractor := newMapExtractor()
	extractor.meta["with-date"] = media.Metadata{CapturedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	extractor.meta["no-date"] = media.Metadata{DeviceMake: "Canon"}
	extractor.errs["broken"] = services.NewError("extract", services.ClassPermanent, errors.New("corrupt"))

	verifier := newTestVerifier(extractor)
	results, err := verifier.Run(context.Background(), items("with-date", "no-date", "broken"), nil, ModeFull)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := results["with-date"].Status; got != StatusVerified {
		t.Fatalf("with-date status = %s", got)
	}
	if got := results["no-date"].Status; got != StatusUnverifiable {
		t.Fatalf("no-date status = %s", got)
	}
	if results["no-date"].ErrorDetail != ReasonNoCaptureDate {
		t.Fatalf("no-date detail = %q", results["no-date"].ErrorDetail)
	}
	if got := results["broken"].Status; got != StatusError {
		t.Fatalf("broken status = %s", got)
	}

	counts := results.Counts()
	if counts[StatusVerified] != 1 || counts[StatusUnverifiable] != 1 || counts[StatusError] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestRunTargetedLeavesVerifiedUntouched(t *testing.T) {
	extractor := newMapExtractor()
	extractor.meta["ok"] = media.Metadata{CapturedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	extractor.errs["flaky"] = services.NewError("extract", services.ClassPermanent, errors.New("unreadable"))

	verifier := newTestVerifier(extractor)
	all := items("ok", "flaky")
	results, err := verifier.Run(context.Background(), all, nil, ModeFull)
	if err != nil {
		t.Fatalf("full pass: %v", err)
	}
	beforeStatus := results["ok"].Status
	beforeCaptured := results["ok"].CapturedAt

	// The flaky item recovers, and the verified one would now return a
	// different timestamp if re-probed. A targeted pass must not re-probe it.
	delete(extractor.errs, "flaky")
	extractor.meta["flaky"] = media.Metadata{CapturedAt: time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)}
	extractor.meta["ok"] = media.Metadata{CapturedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)}

	results, err = verifier.Run(context.Background(), all, results, ModeTargeted)
	if err != nil {
		t.Fatalf("targeted pass: %v", err)
	}

	if extractor.calls["ok"] != 1 {
		t.Fatalf("verified item was re-probed %d times", extractor.calls["ok"])
	}
	if results["ok"].Status != beforeStatus || !results["ok"].CapturedAt.Equal(beforeCaptured) {
		t.Fatalf("verified result changed across targeted pass: %+v", results["ok"])
	}
	if got := results["flaky"].Status; got != StatusVerified {
		t.Fatalf("flaky status after targeted pass = %s", got)
	}
}

func TestRunAbortsOnCredentialFailure(t *testing.T) {
	extractor := newMapExtractor()
	extractor.meta["first"] = media.Metadata{CapturedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	extractor.errs["second"] = services.NewError("extract", services.ClassAuth, errors.New("token expired"))

	verifier := newTestVerifier(extractor)
	results, err := verifier.Run(context.Background(), items("first", "second", "third"), nil, ModeFull)
	if !errors.Is(err, extraction.ErrCredentialsExpired) {
		t.Fatalf("error = %v, want ErrCredentialsExpired", err)
	}
	// The batch stops at the failure: the third item is never probed.
	if extractor.calls["third"] != 0 {
		t.Fatalf("third item was probed after credential failure")
	}
	if results["first"].Status != StatusVerified {
		t.Fatalf("first item result lost on abort")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	extractor := newMapExtractor()
	verifier := newTestVerifier(extractor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := verifier.Run(ctx, items("a"), nil, ModeFull); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
