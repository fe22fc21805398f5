// Package config loads, normalizes, and validates the TOML configuration
// that wires the ingest pipeline to its external services.
package config
