package ledger

import "time"

// Project is the aggregate a ledger is keyed by.
type Project struct {
	ID                  string
	Name                string
	SourceScope         string
	CreatedAt           time.Time
	LastUpdatedAt       time.Time
	TotalRunsCompleted  int
	TotalItemsProcessed int
}

// Bucket is a date-derived folder group. Buckets are created on the
// first commit that maps an item to their key and updated additively on
// every later one; they are never deleted automatically.
type Bucket struct {
	Key                string
	DisplayName        string
	RemoteFolderID     string
	ItemCount          int
	FirstSeenAt        time.Time
	LastUpdatedAt      time.Time
	ContributingRunIDs []string
}

// CheckResult partitions an identity set by prior processing state.
type CheckResult struct {
	New              []string
	AlreadyProcessed []string
}

// CommitRequest carries one run's results into the ledger.
type CommitRequest struct {
	ProjectID string
	RunID     string
	// Identities lists the committed item identities with their bucket keys.
	Identities map[string]string
	// DisplayNames resolves bucket keys to human-readable labels for
	// newly created buckets.
	DisplayNames map[string]string
}
