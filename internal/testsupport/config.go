// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"anicat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Supabase.URL = "https://example.supabase.co"
	cfg.Supabase.ServiceKey = "test-key"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSupabase overrides the store endpoint and credentials.
func WithSupabase(url, key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Supabase.URL = url
		cfg.Supabase.ServiceKey = key
	}
}

// WithStartPage sets the first listing page on the test config.
func WithStartPage(page int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.StartPage = page
	}
}
