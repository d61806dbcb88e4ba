// Package tasks runs independent long-lived background jobs (bulk
// extraction, bulk download, manifest generation) outside the main
// pipeline. Each task owns its own cancellation and pause primitives and
// reports progress for a monitoring surface to poll.
package tasks
