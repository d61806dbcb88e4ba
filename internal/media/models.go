package media

import (
	"strings"
	"time"
)

// Item describes a media file as listed by the external store. Items are
// immutable once listed; the pipeline references them by Identity until
// download.
type Item struct {
	// Identity is the store-assigned opaque identifier.
	Identity string
	// Name is the display name reported by the store.
	Name string
	// Size is the declared byte size.
	Size int64
	// Duration is the declared media duration, when the store provides one.
	Duration time.Duration
	// StoreModifiedAt is the store's upload/modification timestamp. It is
	// carried for display only and is never used as a capture time.
	StoreModifiedAt time.Time
}

// Metadata is the payload returned by the extraction service for one item.
type Metadata struct {
	// CapturedAt is the original capture timestamp recorded by the device.
	// Zero when the asset carries no original capture date.
	CapturedAt  time.Time
	DeviceMake  string
	DeviceModel string
	Width       int
	Height      int
	// Raw preserves extractor-specific fields for manifest output.
	Raw map[string]string
}

// HasCaptureTime reports whether the extraction produced a usable
// original capture timestamp.
func (m Metadata) HasCaptureTime() bool {
	return !m.CapturedAt.IsZero()
}

// ProcessedItem is the result of a successful run-through for one item.
// Created by the organizer, consumed by manifest generation and the
// ledger commit.
type ProcessedItem struct {
	Identity     string
	OriginalName string
	AssignedName string
	CapturedAt   time.Time
	BucketKey    string
	// LocalPath is where the downloaded bytes live in staging.
	LocalPath string
	// PlacedPath is the final path after commit, empty until then.
	PlacedPath string
	Meta       Metadata
}

// Exclusion records an item dropped from a run together with the reason.
// Every skipped item must leave one of these behind; silent loss is a
// defect.
type Exclusion struct {
	Identity string
	Name     string
	Stage    string
	Reason   string
}

func (e Exclusion) String() string {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = e.Identity
	}
	return name + ": " + e.Reason
}
