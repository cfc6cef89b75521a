package testsupport

import (
	"path/filepath"
	"testing"

	"earmark/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp data directory per
// test. Chunking sizes are shrunk so short fixture texts produce several
// chunks.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.OpenAI.APIKey = "test"
	cfg.Chunking.MaxSegmentLength = 120
	cfg.Chunking.MinChunkSize = 4
	cfg.Chunking.MaxChunkSize = 60
	cfg.Chunking.OverlapSize = 10

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCertaintyBar overrides the verdict bar on the test config.
func WithCertaintyBar(bar float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.CertaintyBar = bar
	}
}

// WithMinSimilarity overrides the per-candidate floor on the test config.
func WithMinSimilarity(floor float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.MinSimilarity = floor
	}
}
