package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"curator/internal/config"
)

// ErrLedgerLocked is returned when another process holds the ledger lock.
var ErrLedgerLocked = errors.New("ledger is locked by another process")

// Store manages ledger persistence backed by SQLite. The design assumes
// single-writer access per ledger directory; Open enforces that at the
// process level with a file lock.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the ledger database and applies the
// schema. The exclusive lock is held until Close.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.LedgerDir, "ledger.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !locked {
		return nil, ErrLedgerLocked
	}

	dbPath := filepath.Join(cfg.Paths.LedgerDir, "ledger.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close releases the database connection and the ledger lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// EnsureProject fetches the project, creating it when absent.
func (s *Store) EnsureProject(ctx context.Context, id, name, sourceScope string) (*Project, error) {
	existing, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO projects (id, name, source_scope, created_at, last_updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		id, name, nullableString(sourceScope), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// GetProject fetches a project by id, returning nil when it does not exist.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, name, source_scope, created_at, last_updated_at,
                total_runs_completed, total_items_processed
         FROM projects WHERE id = ?`,
		id,
	)

	var (
		project    Project
		scope      sql.NullString
		createdRaw string
		updatedRaw string
	)
	err := row.Scan(
		&project.ID,
		&project.Name,
		&scope,
		&createdRaw,
		&updatedRaw,
		&project.TotalRunsCompleted,
		&project.TotalItemsProcessed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	project.SourceScope = scope.String
	project.CreatedAt = parseTimeString(createdRaw)
	project.LastUpdatedAt = parseTimeString(updatedRaw)
	return &project, nil
}

// CheckProcessed partitions identities into new and already-processed
// sets. A missing project degrades to "everything is new" rather than
// failing; callers invoke this before scheduling any download or
// extraction work.
func (s *Store) CheckProcessed(ctx context.Context, projectID string, identities []string) (CheckResult, error) {
	result := CheckResult{}
	if len(identities) == 0 {
		return result, nil
	}

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return result, err
	}
	if project == nil {
		result.New = append(result.New, identities...)
		return result, nil
	}

	placeholders := makePlaceholders(len(identities))
	args := make([]any, 0, len(identities)+1)
	args = append(args, projectID)
	for _, identity := range identities {
		args = append(args, identity)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT identity FROM processed_identities
         WHERE project_id = ? AND identity IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return result, fmt.Errorf("query processed identities: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return result, err
		}
		known[identity] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return result, err
	}

	for _, identity := range identities {
		if _, ok := known[identity]; ok {
			result.AlreadyProcessed = append(result.AlreadyProcessed, identity)
		} else {
			result.New = append(result.New, identity)
		}
	}
	return result, nil
}

// Commit appends a run's identities and additively updates its buckets
// in one transaction. Buckets never shrink and identities are never
// removed; re-committing an identity is a no-op for both the identity
// set and the bucket counters.
func (s *Store) Commit(ctx context.Context, req CommitRequest) error {
	if req.ProjectID == "" {
		return errors.New("commit: project id required")
	}
	if req.RunID == "" {
		return errors.New("commit: run id required")
	}
	if len(req.Identities) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	insertedPerBucket := make(map[string]int)
	totalInserted := 0

	for identity, bucketKey := range req.Identities {
		res, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO processed_identities (project_id, identity, bucket_key, committed_at)
             VALUES (?, ?, ?, ?)`,
			req.ProjectID, identity, bucketKey, now,
		)
		if err != nil {
			return fmt.Errorf("insert identity %s: %w", identity, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected > 0 {
			insertedPerBucket[bucketKey]++
			totalInserted++
		}
	}

	for bucketKey, count := range insertedPerBucket {
		if err := s.upsertBucket(ctx, tx, req, bucketKey, count, now); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE projects
         SET total_runs_completed = total_runs_completed + 1,
             total_items_processed = total_items_processed + ?,
             last_updated_at = ?
         WHERE id = ?`,
		totalInserted, now, req.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update project totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

func (s *Store) upsertBucket(ctx context.Context, tx *sql.Tx, req CommitRequest, bucketKey string, added int, now string) error {
	row := tx.QueryRowContext(
		ctx,
		`SELECT contributing_run_ids FROM buckets WHERE project_id = ? AND bucket_key = ?`,
		req.ProjectID, bucketKey,
	)
	var runsRaw string
	err := row.Scan(&runsRaw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		runs, marshalErr := json.Marshal([]string{req.RunID})
		if marshalErr != nil {
			return fmt.Errorf("marshal run ids: %w", marshalErr)
		}
		displayName := req.DisplayNames[bucketKey]
		if displayName == "" {
			displayName = bucketKey
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO buckets (project_id, bucket_key, display_name, item_count,
                                  first_seen_at, last_updated_at, contributing_run_ids)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			req.ProjectID, bucketKey, displayName, added, now, now, string(runs),
		)
		if err != nil {
			return fmt.Errorf("insert bucket %s: %w", bucketKey, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read bucket %s: %w", bucketKey, err)
	}

	var runs []string
	if unmarshalErr := json.Unmarshal([]byte(runsRaw), &runs); unmarshalErr != nil {
		runs = nil
	}
	if !containsString(runs, req.RunID) {
		runs = append(runs, req.RunID)
	}
	encoded, marshalErr := json.Marshal(runs)
	if marshalErr != nil {
		return fmt.Errorf("marshal run ids: %w", marshalErr)
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE buckets
         SET item_count = item_count + ?, last_updated_at = ?, contributing_run_ids = ?
         WHERE project_id = ? AND bucket_key = ?`,
		added, now, string(encoded), req.ProjectID, bucketKey,
	)
	if err != nil {
		return fmt.Errorf("update bucket %s: %w", bucketKey, err)
	}
	return nil
}

// Buckets returns a project's buckets ordered by key.
func (s *Store) Buckets(ctx context.Context, projectID string) ([]Bucket, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT bucket_key, display_name, remote_folder_id, item_count,
                first_seen_at, last_updated_at, contributing_run_ids
         FROM buckets WHERE project_id = ? ORDER BY bucket_key`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()

	var buckets []Bucket
	for rows.Next() {
		var (
			bucket   Bucket
			folderID sql.NullString
			firstRaw string
			lastRaw  string
			runsRaw  string
		)
		if err := rows.Scan(
			&bucket.Key,
			&bucket.DisplayName,
			&folderID,
			&bucket.ItemCount,
			&firstRaw,
			&lastRaw,
			&runsRaw,
		); err != nil {
			return nil, err
		}
		bucket.RemoteFolderID = folderID.String
		bucket.FirstSeenAt = parseTimeString(firstRaw)
		bucket.LastUpdatedAt = parseTimeString(lastRaw)
		if err := json.Unmarshal([]byte(runsRaw), &bucket.ContributingRunIDs); err != nil {
			bucket.ContributingRunIDs = nil
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}

// SetBucketFolder records the remote folder identifier assigned to a
// bucket during commit.
func (s *Store) SetBucketFolder(ctx context.Context, projectID, bucketKey, folderID string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE buckets SET remote_folder_id = ?, last_updated_at = ?
         WHERE project_id = ? AND bucket_key = ?`,
		nullableString(folderID),
		time.Now().UTC().Format(time.RFC3339Nano),
		projectID, bucketKey,
	)
	if err != nil {
		return fmt.Errorf("set bucket folder: %w", err)
	}
	return nil
}

// ProcessedCount returns the number of identities recorded for a project.
func (s *Store) ProcessedCount(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM processed_identities WHERE project_id = ?`,
		projectID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count processed identities: %w", err)
	}
	return count, nil
}

// ClearProject removes a project and all of its identities and buckets.
// This is the only sanctioned way to make an identity eligible again.
func (s *Store) ClearProject(ctx context.Context, projectID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Projects lists all projects ordered by creation time.
func (s *Store) Projects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, source_scope, created_at, last_updated_at,
                total_runs_completed, total_items_processed
         FROM projects ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var (
			project    Project
			scope      sql.NullString
			createdRaw string
			updatedRaw string
		)
		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&scope,
			&createdRaw,
			&updatedRaw,
			&project.TotalRunsCompleted,
			&project.TotalItemsProcessed,
		); err != nil {
			return nil, err
		}
		project.SourceScope = scope.String
		project.CreatedAt = parseTimeString(createdRaw)
		project.LastUpdatedAt = parseTimeString(updatedRaw)
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	return time.Time{}
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
