// Package verify probes candidate media items for trustworthy original
// capture timestamps. A verified item is the only kind the pipeline will
// organize; items without an extractable capture date are excluded
// rather than assigned a fallback date.
package verify
