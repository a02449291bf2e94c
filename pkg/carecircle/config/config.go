// Package config loads processor settings and dictionary files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/canhta/CareCircle/pkg/carecircle/chunk"
	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
	"github.com/canhta/CareCircle/pkg/carecircle/quality"
)

// EnvPrefix prefixes every environment override, e.g.
// CARECIRCLE_QUALITY_MIN_CONTENT_QUALITY.
const EnvPrefix = "CARECIRCLE"

// Config is the complete processor configuration.
type Config struct {
	Quality      QualityConfig      `yaml:"quality" split_words:"true"`
	Content      ContentConfig      `yaml:"content" split_words:"true"`
	Chunking     chunk.Config       `yaml:"chunking" split_words:"true"`
	Features     FeaturesConfig     `yaml:"features" split_words:"true"`
	Dictionaries DictionariesConfig `yaml:"dictionaries" split_words:"true"`
	Logging      LoggingConfig      `yaml:"logging" split_words:"true"`
	Metrics      MetricsConfig      `yaml:"metrics" split_words:"true"`
	Store        StoreConfig        `yaml:"store" split_words:"true"`
	Kafka        KafkaConfig        `yaml:"kafka" split_words:"true"`
	Workers      int                `yaml:"workers" split_words:"true"`
}

// QualityConfig holds the quality and relevance gates.
type QualityConfig struct {
	Profile                   quality.Profile `yaml:"profile" split_words:"true"`
	MinContentQuality         float64         `yaml:"min_content_quality" split_words:"true"`
	MedicalRelevanceThreshold float64         `yaml:"medical_relevance_threshold" split_words:"true"`
	// ValidatorMinQuality is the base quality a document needs to pass
	// batch validation.
	ValidatorMinQuality   float64 `yaml:"validator_min_quality" split_words:"true"`
	ValidatorMinRelevance float64 `yaml:"validator_min_relevance" split_words:"true"`
}

// ContentConfig bounds normalized content.
type ContentConfig struct {
	MinContentLength    int      `yaml:"min_content_length" split_words:"true"`
	MaxContentLength    int      `yaml:"max_content_length" split_words:"true"`
	BoilerplatePatterns []string `yaml:"boilerplate_patterns" split_words:"true"`
}

// FeaturesConfig toggles optional processing steps.
type FeaturesConfig struct {
	TerminologyStandardization bool `yaml:"terminology_standardization" split_words:"true"`
	EnhancedEntities           bool `yaml:"enhanced_entities" split_words:"true"`
}

// DictionariesConfig points at dictionary files. Empty paths fall back to
// the built-in Vietnamese dictionaries. ExtraStopwords and KeepWords adjust
// whichever stoplist is loaded.
type DictionariesConfig struct {
	Taxonomy       string   `yaml:"taxonomy" split_words:"true"`
	Lexicon        string   `yaml:"lexicon" split_words:"true"`
	Stoplist       string   `yaml:"stoplist" split_words:"true"`
	ExtraStopwords []string `yaml:"extra_stopwords" split_words:"true"`
	KeepWords      []string `yaml:"keep_words" split_words:"true"`
}

// LoggingConfig selects log level and output format (json or console).
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" split_words:"true"`
	Addr    string `yaml:"addr" split_words:"true"`
}

// StoreConfig locates the SQLite store. An empty path disables it.
type StoreConfig struct {
	Path string `yaml:"path" split_words:"true"`
}

// KafkaConfig configures the optional message-bus sink.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" split_words:"true"`
	Topic   string   `yaml:"topic" split_words:"true"`
}

// Enabled reports whether publishing is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Quality: QualityConfig{
			Profile:                   quality.ProfileAdvanced,
			MinContentQuality:         0.5,
			MedicalRelevanceThreshold: 0.6,
			ValidatorMinQuality:       0.5,
			ValidatorMinRelevance:     0.1,
		},
		Content: ContentConfig{
			MinContentLength: 100,
			MaxContentLength: 50_000,
		},
		Chunking: chunk.DefaultConfig(),
		Features: FeaturesConfig{
			TerminologyStandardization: true,
			EnhancedEntities:           true,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Addr: ":9090"},
		Workers: 1,
	}
}

// Load builds a Config from the defaults, the YAML file at path (if not
// empty), a .env file in the working directory (if present) and CARECIRCLE_*
// environment variables, in that order. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks thresholds and sizes. Errors wrap internalerr.ErrInvalidConfig.
func (c *Config) Validate() error {
	switch c.Quality.Profile {
	case quality.ProfileSimple, quality.ProfileAdvanced:
	default:
		return fmt.Errorf("unknown quality profile %q: %w", c.Quality.Profile, internalerr.ErrInvalidConfig)
	}

	for name, v := range map[string]float64{
		"min_content_quality":         c.Quality.MinContentQuality,
		"medical_relevance_threshold": c.Quality.MedicalRelevanceThreshold,
		"validator_min_quality":       c.Quality.ValidatorMinQuality,
		"validator_min_relevance":     c.Quality.ValidatorMinRelevance,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %v: %w", name, v, internalerr.ErrInvalidConfig)
		}
	}

	if c.Content.MinContentLength < 0 {
		return fmt.Errorf("min_content_length must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if c.Content.MaxContentLength > 0 && c.Content.MaxContentLength < c.Content.MinContentLength {
		return fmt.Errorf("max_content_length %d is below min_content_length %d: %w",
			c.Content.MaxContentLength, c.Content.MinContentLength, internalerr.ErrInvalidConfig)
	}

	if err := c.Chunking.Validate(); err != nil {
		return err
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d: %w", c.Workers, internalerr.ErrInvalidConfig)
	}

	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q: %w", c.Logging.Format, internalerr.ErrInvalidConfig)
	}

	return nil
}

// ValidatorConfig derives the batch validator settings.
func (c *Config) ValidatorConfig() quality.ValidatorConfig {
	vc := quality.DefaultValidatorConfig()
	vc.MinContentLength = c.Content.MinContentLength
	vc.MinQuality = c.Quality.ValidatorMinQuality
	vc.MinRelevance = c.Quality.ValidatorMinRelevance
	return vc
}
