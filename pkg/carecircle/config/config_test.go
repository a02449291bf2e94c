package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
	"github.com/canhta/CareCircle/pkg/carecircle/quality"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, quality.ProfileAdvanced, cfg.Quality.Profile)
	assert.Equal(t, 0.5, cfg.Quality.MinContentQuality)
	assert.Equal(t, 0.6, cfg.Quality.MedicalRelevanceThreshold)
	assert.Equal(t, 1000, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 200, cfg.Chunking.OverlapSize)
	assert.Equal(t, 100, cfg.Chunking.MinChunkSize)
	assert.True(t, cfg.Chunking.Semantic)
	assert.True(t, cfg.Features.TerminologyStandardization)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carecircle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`quality:
  profile: simple
  min_content_quality: 0.4
chunking:
  max_chunk_size: 800
kafka:
  brokers: [localhost:9092]
  topic: processed-content
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, quality.ProfileSimple, cfg.Quality.Profile)
	assert.Equal(t, 0.4, cfg.Quality.MinContentQuality)
	assert.Equal(t, 0.6, cfg.Quality.MedicalRelevanceThreshold, "unset keys keep defaults")
	assert.Equal(t, 800, cfg.Chunking.MaxChunkSize)
	assert.Equal(t, 200, cfg.Chunking.OverlapSize)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CARECIRCLE_QUALITY_MIN_CONTENT_QUALITY", "0.7")
	t.Setenv("CARECIRCLE_CHUNKING_OVERLAP_SIZE", "50")
	t.Setenv("CARECIRCLE_FEATURES_ENHANCED_ENTITIES", "false")
	t.Setenv("CARECIRCLE_WORKERS", "4")
	t.Setenv("CARECIRCLE_KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Quality.MinContentQuality)
	assert.Equal(t, 50, cfg.Chunking.OverlapSize)
	assert.False(t, cfg.Features.EnhancedEntities)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/carecircle.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: [unclosed\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality:\n  profile: fancy\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"profile", func(c *Config) { c.Quality.Profile = "other" }},
		{"quality above one", func(c *Config) { c.Quality.MinContentQuality = 1.5 }},
		{"negative relevance", func(c *Config) { c.Quality.MedicalRelevanceThreshold = -0.1 }},
		{"negative min length", func(c *Config) { c.Content.MinContentLength = -1 }},
		{"max below min", func(c *Config) { c.Content.MaxContentLength = 10 }},
		{"chunk overlap", func(c *Config) { c.Chunking.OverlapSize = c.Chunking.MaxChunkSize }},
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), internalerr.ErrInvalidConfig)
		})
	}
}

func TestValidatorConfig(t *testing.T) {
	cfg := Default()
	cfg.Content.MinContentLength = 150
	cfg.Quality.ValidatorMinQuality = 0.6

	vc := cfg.ValidatorConfig()
	assert.Equal(t, 150, vc.MinContentLength)
	assert.Equal(t, 0.6, vc.MinQuality)
	assert.Equal(t, 0.1, vc.MinRelevance)
	assert.NotEmpty(t, vc.Keywords)
}
