package services

import (
	"context"
	"io"

	"curator/internal/media"
)

// Lister enumerates candidate media items within a scope.
type Lister interface {
	List(ctx context.Context, scope string) ([]media.Item, error)
}

// ContentStore transfers item bytes and applies the final rename/move.
type ContentStore interface {
	// Download opens the item content for reading. The caller closes it.
	Download(ctx context.Context, identity string) (io.ReadCloser, error)
	// Place renames/moves an item into its bucket path with its assigned
	// name. The item must already have been downloaded.
	Place(ctx context.Context, identity, assignedName, bucketPath string) error
}

// Extractor probes an item for capture metadata. Errors should be
// classified via Error so callers can distinguish transient capacity
// failures from credential and permanent ones.
type Extractor interface {
	Extract(ctx context.Context, identity string) (media.Metadata, error)
}
