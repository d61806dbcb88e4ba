// Package notifications delivers best-effort push notices about run
// progress via ntfy. Delivery failures are logged by callers and never
// fail a pipeline run. When no topic is configured a noop service is
// returned.
package notifications
