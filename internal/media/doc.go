// Package media defines the shared data model for the organization
// pipeline: source items as listed by the external store, extraction
// metadata, and the processed results produced by a run.
package media
