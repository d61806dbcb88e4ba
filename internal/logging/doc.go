// Package logging configures the slog logger used across curator and
// provides the shared attribute helpers and field name constants so
// components log with a consistent vocabulary.
package logging
