// Package config loads the ingestion settings from defaults, an optional YAML
// file, a .env file and the environment, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/NERVsystems/osmingest/pkg/geo"
	"github.com/NERVsystems/osmingest/pkg/listing"
	"github.com/NERVsystems/osmingest/pkg/normalize"
	"github.com/NERVsystems/osmingest/pkg/osm"
	"github.com/NERVsystems/osmingest/pkg/osm/queries"
)

// Environment variables read by ApplyEnv
const (
	EnvEndpoint       = "OSMINGEST_ENDPOINT"
	EnvOutputDir      = "OSMINGEST_OUTPUT_DIR"
	EnvDatabaseURL    = "OSMINGEST_DATABASE_URL"
	EnvPushgatewayURL = "OSMINGEST_PUSHGATEWAY_URL"
	EnvOTLPEndpoint   = "OTLP_ENDPOINT"
	EnvEnvironment    = "ENVIRONMENT"
)

// Config holds every setting of an ingestion run
type Config struct {
	Region       string             `yaml:"region"`
	BBox         geo.BoundingBox    `yaml:"bbox"`
	OutputDir    string             `yaml:"output_dir"`
	Categories   []listing.Category `yaml:"categories"`
	AllowPartial bool               `yaml:"allow_partial"`
	Preflight    bool               `yaml:"preflight"`

	// Seed fixes the placeholder sampler; 0 seeds from the clock
	Seed uint64 `yaml:"seed"`

	Environment string `yaml:"environment"`

	Overpass OverpassConfig `yaml:"overpass"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// OverpassConfig configures the Overpass client
type OverpassConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	UserAgent       string        `yaml:"user_agent"`
	Timeout         time.Duration `yaml:"timeout"`
	RequestInterval time.Duration `yaml:"request_interval"`
	Burst           int           `yaml:"burst"`
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialBackoff  time.Duration `yaml:"initial_backoff"`
	MaxBackoff      time.Duration `yaml:"max_backoff"`
	CacheSize       int           `yaml:"cache_size"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
}

// DatabaseConfig enables the Postgres sink when URL is set
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	EnsureSchema bool   `yaml:"ensure_schema"`
}

// MetricsConfig controls the end-of-run metrics export
type MetricsConfig struct {
	PushgatewayURL string            `yaml:"pushgateway_url"`
	Textfile       string            `yaml:"textfile"`
	Grouping       map[string]string `yaml:"grouping"`
}

// TracingConfig enables OTLP export when Endpoint is set
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns the settings of the stock Kolkata run
func Default() *Config {
	return &Config{
		Region:      normalize.DefaultRegion,
		BBox:        queries.KolkataBounds,
		OutputDir:   "data",
		Categories:  listing.All(),
		Environment: "development",
		Overpass: OverpassConfig{
			Endpoint:        osm.OverpassBaseURL,
			UserAgent:       osm.UserAgent,
			Timeout:         osm.DefaultTimeout,
			RequestInterval: osm.DefaultRequestInterval,
			Burst:           1,
			MaxAttempts:     3,
			InitialBackoff:  time.Second,
			MaxBackoff:      30 * time.Second,
			CacheSize:       16,
			CacheTTL:        time.Hour,
		},
		Tracing: TracingConfig{
			Insecure:    true,
			SampleRatio: 1,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment.
// Missing files are ignored; variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from the process environment
func (c *Config) ApplyEnv() {
	c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvEndpoint, &c.Overpass.Endpoint)
	set(EnvOutputDir, &c.OutputDir)
	set(EnvDatabaseURL, &c.Database.URL)
	set(EnvPushgatewayURL, &c.Metrics.PushgatewayURL)
	set(EnvOTLPEndpoint, &c.Tracing.Endpoint)
	set(EnvEnvironment, &c.Environment)
}

// Validate checks the settings for consistency
func (c *Config) Validate() error {
	var errs []error

	if err := c.BBox.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bbox: %w", err))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	if strings.TrimSpace(c.Region) == "" {
		errs = append(errs, errors.New("region must not be empty"))
	}
	if len(c.Categories) == 0 {
		errs = append(errs, errors.New("categories must not be empty"))
	}
	seen := make(map[listing.Category]bool)
	for _, cat := range c.Categories {
		if !cat.Valid() {
			errs = append(errs, fmt.Errorf("unknown category %q", cat))
		}
		if seen[cat] {
			errs = append(errs, fmt.Errorf("duplicate category %q", cat))
		}
		seen[cat] = true
	}

	o := c.Overpass
	if o.Endpoint == "" {
		errs = append(errs, errors.New("overpass.endpoint must not be empty"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("overpass.timeout must be positive"))
	}
	if o.RequestInterval < 0 {
		errs = append(errs, errors.New("overpass.request_interval must not be negative"))
	}
	if o.MaxAttempts < 1 {
		errs = append(errs, errors.New("overpass.max_attempts must be at least 1"))
	}
	if o.InitialBackoff < 0 || o.MaxBackoff < 0 {
		errs = append(errs, errors.New("overpass backoff must not be negative"))
	}
	if o.CacheSize < 0 {
		errs = append(errs, errors.New("overpass.cache_size must not be negative"))
	}

	if r := c.Tracing.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, errors.New("tracing.sample_ratio must be between 0 and 1"))
	}

	return errors.Join(errs...)
}

// Selected returns the configured categories in processing order
func (c *Config) Selected() []listing.Category {
	want := make(map[listing.Category]bool, len(c.Categories))
	for _, cat := range c.Categories {
		want[cat] = true
	}
	var out []listing.Category
	for _, cat := range listing.All() {
		if want[cat] {
			out = append(out, cat)
		}
	}
	return out
}
