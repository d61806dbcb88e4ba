// Package pipeline drives a media organization run through its stages:
// verification, download, extraction, organizing, renaming, manifest
// generation, preview, and commit. The orchestrator owns the run state
// machine, the pause flag, and the session carried between preview and
// commit. Status snapshots are immutable; every transition publishes a
// replacement rather than mutating the previous one.
package pipeline
