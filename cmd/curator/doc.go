// Command curator verifies, organizes, and commits media from a source
// store into a chronological library, with a persisted ledger keeping
// re-runs idempotent.
package main
