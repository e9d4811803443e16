// Package config loads the runtime configuration of an ingestion run from YAML.
//
// Secrets are never read from the file: the enrichment and ECOS API keys are
// supplied by the caller, typically from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"
	_ "time/tzdata" // calendar.location must resolve on hosts without a zoneinfo database

	"github.com/poiesic/marketfeed/ai"
	"github.com/poiesic/marketfeed/core"
	"github.com/poiesic/marketfeed/ingestion"
	"github.com/poiesic/marketfeed/source"
	"github.com/poiesic/marketfeed/source/calendar"
	"github.com/poiesic/marketfeed/source/ecos"
	"github.com/poiesic/marketfeed/source/rss"
	"gopkg.in/yaml.v3"
)

// Config represents the complete ingestion configuration.
type Config struct {
	StorePath  string           `yaml:"store_path"` // Empty means dry run
	Logging    LoggingConfig    `yaml:"logging"`
	HTTP       HTTPConfig       `yaml:"http"`
	News       NewsConfig       `yaml:"news"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Indicators IndicatorsConfig `yaml:"indicators"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Ingestion  IngestionConfig  `yaml:"ingestion"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig defines how sources are fetched.
type HTTPConfig struct {
	TimeoutSec     int               `yaml:"timeout_sec"`
	UserAgent      string            `yaml:"user_agent"`
	AcceptLanguage string            `yaml:"accept_language"`
	Headers        map[string]string `yaml:"headers,omitempty"`
}

// NewsConfig lists the feeds to poll.
type NewsConfig struct {
	Feeds       []rss.FeedSource `yaml:"feeds"`
	EntryLimit  int              `yaml:"entry_limit"`
	Concurrency int              `yaml:"concurrency"`
}

// CalendarConfig locates the economic calendar page.
type CalendarConfig struct {
	URL      string `yaml:"url"`
	Location string `yaml:"location"` // IANA zone used for "today"; "Local" for the host zone
}

// IndicatorsConfig configures the ECOS client.
type IndicatorsConfig struct {
	BaseURL     string      `yaml:"base_url"`
	Concurrency int         `yaml:"concurrency"`
	Catalog     []ecos.Spec `yaml:"catalog,omitempty"` // Empty means ecos.DefaultCatalog
}

// EnrichmentConfig configures the summarization service.
type EnrichmentConfig struct {
	Host               string `yaml:"host"`
	Model              string `yaml:"model"`
	Vocabulary         string `yaml:"vocabulary"`
	SubBatchSize       int    `yaml:"sub_batch_size"`
	SubBatchIntervalMs int    `yaml:"sub_batch_interval_ms"`
	TimeoutSec         int    `yaml:"timeout_sec"`
}

// IngestionConfig tunes the pipeline.
type IngestionConfig struct {
	Phases         []string `yaml:"phases,omitempty"` // Empty means all
	PoolSize       int      `yaml:"pool_size"`
	BatchSize      int      `yaml:"batch_size"`
	CommitAttempts int      `yaml:"commit_attempts"`
	RunTimeoutSec  int      `yaml:"run_timeout_sec"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		HTTP: HTTPConfig{
			TimeoutSec:     int(source.DefaultTimeout / time.Second),
			UserAgent:      source.DefaultUserAgent,
			AcceptLanguage: source.DefaultAcceptLanguage,
		},
		News: NewsConfig{
			Feeds:       slices.Clone(rss.DefaultFeeds),
			EntryLimit:  rss.DefaultEntryLimit,
			Concurrency: rss.DefaultConcurrency,
		},
		Calendar: CalendarConfig{
			URL:      calendar.DefaultURL,
			Location: "Local",
		},
		Indicators: IndicatorsConfig{
			BaseURL:     ecos.DefaultBaseURL,
			Concurrency: 2,
		},
		Enrichment: EnrichmentConfig{
			Host:               aiDefaults.Host,
			Model:              aiDefaults.Model,
			Vocabulary:         aiDefaults.Vocabulary.String(),
			SubBatchSize:       ingestion.DefaultSubBatchSize,
			SubBatchIntervalMs: int(ingestion.DefaultSubBatchInterval / time.Millisecond),
			TimeoutSec:         int(aiDefaults.Timeout / time.Second),
		},
		Ingestion: IngestionConfig{
			PoolSize:       ingestion.DefaultPoolSize,
			BatchSize:      ingestion.DefaultBatchSize,
			CommitAttempts: ingestion.DefaultCommitAttempts,
			RunTimeoutSec:  int(ingestion.DefaultRunTimeout / time.Second),
		},
	}
}

// Load reads a YAML file over the defaults: keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}

	if c.HTTP.TimeoutSec < 1 || c.Enrichment.TimeoutSec < 1 || c.Ingestion.RunTimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	names := make(map[string]bool, len(c.News.Feeds))
	for i, f := range c.News.Feeds {
		if f.Name == "" || !validURL(f.URL) {
			return fmt.Errorf("%w: feed[%d]", ErrInvalidFeed, i)
		}
		if names[f.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateFeed, f.Name)
		}
		names[f.Name] = true
	}

	for key, u := range map[string]string{
		"calendar.url":        c.Calendar.URL,
		"indicators.base_url": c.Indicators.BaseURL,
		"enrichment.host":     c.Enrichment.Host,
	} {
		if !validURL(u) {
			return fmt.Errorf("%w: %s", ErrInvalidURL, key)
		}
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := c.Vocabulary(); err != nil {
		return err
	}

	if c.News.EntryLimit < 1 || c.Enrichment.SubBatchSize < 1 || c.Ingestion.BatchSize < 1 || c.Ingestion.PoolSize < 1 {
		return ErrInvalidBatchSize
	}

	if c.Ingestion.CommitAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if _, err := c.Phases(); err != nil {
		return err
	}

	ids := make(map[string]bool, len(c.Indicators.Catalog))
	for _, spec := range c.Indicators.Catalog {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
		}
		if ids[spec.ID] {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, spec.ID)
		}
		ids[spec.ID] = true
	}

	return nil
}

// LogLevel parses the configured level.
func (c *Config) LogLevel() (slog.Level, error) {
	return ParseLogLevel(c.Logging.Level)
}

// ParseLogLevel maps a level name to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
}

// Location resolves the calendar time zone.
func (c *Config) Location() (*time.Location, error) {
	name := c.Calendar.Location
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, name)
	}
	return loc, nil
}

// Vocabulary resolves the sentiment vocabulary.
func (c *Config) Vocabulary() (core.Vocabulary, error) {
	v, err := core.ParseVocabulary(c.Enrichment.Vocabulary)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidVocabulary, err)
	}
	return v, nil
}

// Phases resolves the selected phases. An empty list selects all of them.
func (c *Config) Phases() ([]ingestion.Phase, error) {
	if len(c.Ingestion.Phases) == 0 {
		return slices.Clone(ingestion.AllPhases), nil
	}
	out := make([]ingestion.Phase, 0, len(c.Ingestion.Phases))
	for _, name := range c.Ingestion.Phases {
		phase := ingestion.Phase(strings.ToLower(strings.TrimSpace(name)))
		if !slices.Contains(ingestion.AllPhases, phase) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPhase, name)
		}
		out = append(out, phase)
	}
	return out, nil
}

// Catalog returns the indicator catalog, falling back to ecos.DefaultCatalog.
func (c *Config) Catalog() []ecos.Spec {
	if len(c.Indicators.Catalog) == 0 {
		return slices.Clone(ecos.DefaultCatalog)
	}
	return c.Indicators.Catalog
}

// HTTPTimeout returns the per-request source timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSec) * time.Second
}

// AIConfig builds the summarizer configuration around apiKey.
func (c *Config) AIConfig(apiKey string) *ai.Config {
	vocabulary, _ := c.Vocabulary()
	return ai.NewConfig(
		ai.WithHost(c.Enrichment.Host),
		ai.WithModel(c.Enrichment.Model),
		ai.WithAPIKey(apiKey),
		ai.WithVocabulary(vocabulary),
		ai.WithTimeout(c.EnrichmentTimeout()),
	)
}

// EnrichmentTimeout returns the per-request enrichment timeout.
func (c *Config) EnrichmentTimeout() time.Duration {
	return time.Duration(c.Enrichment.TimeoutSec) * time.Second
}

// SubBatchInterval returns the spacing between enrichment requests.
func (c *Config) SubBatchInterval() time.Duration {
	return time.Duration(c.Enrichment.SubBatchIntervalMs) * time.Millisecond
}

// RunTimeout returns the bound on a whole run.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.Ingestion.RunTimeoutSec) * time.Second
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
