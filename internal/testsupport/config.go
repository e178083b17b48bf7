package testsupport

import (
	"path/filepath"
	"testing"

	"performersync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test.
// Catalog defaults point at localhost and history is enabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Catalog.APIKey = "test"
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.Requests.RetryBaseDelayMS = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithCatalogURL points the catalog connection at a test server URL such as
// one returned by httptest.
func WithCatalogURL(raw string) ConfigOption {
	return func(b *configBuilder) {
		scheme, host, port, err := splitURL(raw)
		if err != nil {
			b.t.Fatalf("parse catalog url %q: %v", raw, err)
		}
		b.cfg.Catalog.Scheme = scheme
		b.cfg.Catalog.Host = host
		b.cfg.Catalog.Port = port
	}
}

// WithDryRun toggles preview mode.
func WithDryRun(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.DryRun = enabled
	}
}

// WithHistory toggles the run journal.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
