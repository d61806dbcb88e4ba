package localstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"curator/internal/config"
	"curator/internal/fileutil"
	"curator/internal/logging"
	"curator/internal/media"
	"curator/internal/services"
)

// mediaExtensions lists the file types the lister considers media.
var mediaExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".heic": true,
	".dng":  true,
	".cr2":  true,
	".nef":  true,
	".arw":  true,
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".avi":  true,
}

// Store serves media items from a directory tree. Identities are paths
// relative to the root, so they stay stable across remounts.
type Store struct {
	root    string
	library string
	logger  *slog.Logger
}

// New builds a store rooted at the configured source directory. Final
// placement lands under the configured library directory.
func New(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	root, err := config.ExpandPath(cfg.Source.Root)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("localstore: source root not configured")
	}
	library, err := config.ExpandPath(cfg.Paths.LibraryDir)
	if err != nil {
		return nil, err
	}
	return &Store{
		root:    root,
		library: library,
		logger:  logging.NewComponentLogger(logger, "localstore"),
	}, nil
}

// List walks the scope directory under the root and returns every media
// file found, ordered by name. The walk never follows symlinks.
func (s *Store) List(ctx context.Context, scope string) ([]media.Item, error) {
	base := s.root
	if strings.TrimSpace(scope) != "" {
		base = filepath.Join(s.root, scope)
	}

	var items []media.Item
	err := filepath.WalkDir(base, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		if !mediaExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		items = append(items, media.Item{
			Identity:        filepath.ToSlash(rel),
			Name:            entry.Name(),
			Size:            info.Size(),
			StoreModifiedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, classify("list", err)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Identity < items[j].Identity
	})
	s.logger.Debug("listed source items",
		logging.String("scope", scope),
		logging.Int("count", len(items)),
	)
	return items, nil
}

// Download opens the item content for reading.
func (s *Store) Download(ctx context.Context, identity string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(identity)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, classify("download", err)
	}
	return file, nil
}

// Place moves the source file into its bucket folder under the library
// root with its assigned name. Rename is tried first; a verified copy
// plus delete covers cross-device moves.
func (s *Store) Place(ctx context.Context, identity, assignedName, bucketPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(s.library) == "" {
		return services.NewError("place", services.ClassPermanent, errors.New("library directory not configured"))
	}
	src, err := s.resolve(identity)
	if err != nil {
		return err
	}

	targetDir := filepath.Join(s.library, bucketPath)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return classify("place", err)
	}
	dst := filepath.Join(targetDir, assignedName)
	if err := fileutil.MoveFile(src, dst); err != nil {
		return classify("place", err)
	}
	return nil
}

// resolve maps an identity back to an absolute path under the root,
// rejecting traversal outside it.
func (s *Store) resolve(identity string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(identity))
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", services.NewError("resolve", services.ClassPermanent,
			fmt.Errorf("identity %q escapes the source root", identity))
	}
	return path, nil
}

// classify maps filesystem errors onto the pipeline's recovery classes.
// Permission failures look like expired credentials to callers; missing
// files are permanent.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return services.NewError(op, services.ClassAuth, err)
	case errors.Is(err, fs.ErrNotExist):
		return services.NewError(op, services.ClassPermanent, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return services.NewError(op, services.ClassPermanent, err)
	}
}
