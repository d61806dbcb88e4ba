// Package ledger persists the cross-run dedup memory: which item
// identities have been placed into which date buckets, per project.
// Identities only accumulate and buckets only grow; a committed identity
// is never reprocessed by a later run unless the project is explicitly
// cleared. Persistence is SQLite so state survives process restarts.
package ledger
