// Package config loads, validates, and normalizes curator configuration
// from TOML. Defaults live in defaults.go; path fields are expanded and
// made absolute during Load.
package config
