// Package textutil provides filename sanitization helpers shared by the
// organizer and the CLI. Sanitized names must remain valid on the most
// restrictive supported filesystem.
package textutil
