// Package extraction wraps the metadata extraction service with a
// bounded retry policy. Only transient capacity failures are retried,
// with strictly increasing delays between attempts; credential and
// permanent failures surface immediately.
package extraction
