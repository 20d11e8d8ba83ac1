// Package config provides configuration management for the news fetcher.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"newsfetcher/pkg/utils"
)

// Source kinds.
const (
	KindAPI = "api"
	KindRSS = "rss"
)

// Defaults for the prostoprosport.ru source.
const (
	DefaultSiteURL           = "https://prostoprosport.ru"
	APIMainNewsURL           = "https://api.prostoprosport.ru/api/main_news/"
	APINewsURL               = "https://api.prostoprosport.ru/api/news/"
	DefaultSourceTitle       = "Prostoprosport.ru"
	DefaultCitationTemplate  = "Prostoprosport.ru"
	DefaultAuthorSelector    = ".author > form > button"
	DefaultParagraphSelector = ".page-content > article > p"
	DefaultBotName           = "NewsBot"
	DefaultOutputDirectory   = "data1/pages"
	DefaultCategoriesFile    = "data/categories.json"
	DefaultUserAgent         = "newsfetcher/1.0"
)

// Configuration validation errors.
var (
	ErrNoSources            = errors.New("at least one source is required")
	ErrSourceMissingSlug    = errors.New("slug is required")
	ErrDuplicateSourceSlug  = errors.New("source slug must be unique")
	ErrInvalidSourceKind    = errors.New("kind must be 'api' or 'rss'")
	ErrSourceMissingAPIURL  = errors.New("api_url is required for api sources")
	ErrSourceMissingFeedURL = errors.New("feed_url is required for rss sources")
	ErrSourceMissingSite    = errors.New("site_url is required for api sources")
	ErrInvalidPolicy        = errors.New("category_policy must be 'post' or 'strict'")
	ErrMissingParagraphSel  = errors.New("paragraph_selector is required")
	ErrInvalidTimeout       = errors.New("http.timeout_sec must be non-negative")
	ErrInvalidBufferSize    = errors.New("http.buffer_size_kb must be non-negative")
	ErrMissingBotName       = errors.New("wiki.bot_name is required")
	ErrInvalidLogLevel      = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrUnknownSource        = errors.New("unknown source")
	ErrInvalidURL           = errors.New("source URLs must be absolute http(s) URLs")
)

// Config represents the complete fetcher configuration.
type Config struct {
	Logging LoggingConfig  `yaml:"logging"`
	HTTP    HTTPConfig     `yaml:"http"`
	Wiki    WikiConfig     `yaml:"wiki"`
	Sources []SourceConfig `yaml:"sources"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	ProgressEvery int    `yaml:"progress_every"`
}

// HTTPConfig defines the shared HTTP client.
type HTTPConfig struct {
	UserAgent    string `yaml:"user_agent"`
	TimeoutSec   int    `yaml:"timeout_sec"`
	BufferSizeKb int    `yaml:"buffer_size_kb"`
}

// Timeout returns the request timeout duration. Zero means the client sets
// none and only the transport defaults apply.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSec) * time.Second
}

// WikiConfig defines wiki page generation defaults.
type WikiConfig struct {
	BotName         string   `yaml:"bot_name"`
	OutputDirectory string   `yaml:"output_directory"`
	S3              S3Config `yaml:"s3"`
}

// S3Config selects an S3 bucket as page sink instead of a directory.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// Enabled reports whether pages go to S3.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// SourceConfig describes one news source.
type SourceConfig struct {
	Slug              string   `yaml:"slug"`
	Kind              string   `yaml:"kind"`
	Title             string   `yaml:"title"`
	CitationTemplate  string   `yaml:"citation_template"`
	SiteURL           string   `yaml:"site_url"`
	APIURL            string   `yaml:"api_url"`
	FeedURL           string   `yaml:"feed_url"`
	CategoriesFile    string   `yaml:"categories_file"`
	CategoryPolicy    string   `yaml:"category_policy"`
	AuthorSelector    string   `yaml:"author_selector"`
	ParagraphSelector string   `yaml:"paragraph_selector"`
	ReplaceableHosts  []string `yaml:"replaceable_hosts"`
}

// DefaultHTTPConfig returns the HTTP settings used without a config file.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		UserAgent:    DefaultUserAgent,
		BufferSizeKb: 16 * 1024,
	}
}

// DefaultSource returns the prostoprosport.ru API source.
func DefaultSource() SourceConfig {
	return SourceConfig{
		Slug:              "prostoprosport",
		Kind:              KindAPI,
		Title:             DefaultSourceTitle,
		CitationTemplate:  DefaultCitationTemplate,
		SiteURL:           DefaultSiteURL,
		APIURL:            APIMainNewsURL,
		CategoriesFile:    DefaultCategoriesFile,
		CategoryPolicy:    "post",
		AuthorSelector:    DefaultAuthorSelector,
		ParagraphSelector: DefaultParagraphSelector,
	}
}

// DefaultConfig returns a working configuration for prostoprosport.ru.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", ProgressEvery: 10},
		HTTP:    DefaultHTTPConfig(),
		Wiki: WikiConfig{
			BotName:         DefaultBotName,
			OutputDirectory: DefaultOutputDirectory,
		},
		Sources: []SourceConfig{DefaultSource()},
	}
}

// LoadConfig loads configuration from YAML file.
// Settings missing from the file keep their defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Sources = nil

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applySourceDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applySourceDefaults() {
	for i := range c.Sources {
		src := &c.Sources[i]

		if src.Title == "" {
			src.Title = DefaultSourceTitle
		}

		if src.CitationTemplate == "" {
			src.CitationTemplate = DefaultCitationTemplate
		}

		if src.CategoryPolicy == "" {
			src.CategoryPolicy = "post"
		}

		if src.Kind == KindAPI && src.AuthorSelector == "" {
			src.AuthorSelector = DefaultAuthorSelector
		}

		if src.Kind == KindAPI && src.ParagraphSelector == "" {
			src.ParagraphSelector = DefaultParagraphSelector
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	seen := make(map[string]bool, len(c.Sources))

	for i, src := range c.Sources {
		if err := src.Validate(); err != nil {
			return fmt.Errorf("%w: source[%d]", err, i)
		}

		if seen[src.Slug] {
			return fmt.Errorf("%w: source[%d] %q", ErrDuplicateSourceSlug, i, src.Slug)
		}

		seen[src.Slug] = true
	}

	if c.HTTP.TimeoutSec < 0 {
		return ErrInvalidTimeout
	}

	if c.HTTP.BufferSizeKb < 0 {
		return ErrInvalidBufferSize
	}

	if c.Wiki.BotName == "" {
		return ErrMissingBotName
	}

	// Validate logging config
	if !ValidLogLevel(c.Logging.Level) {
		return ErrInvalidLogLevel
	}

	return nil
}

// Validate checks a single source.
func (s *SourceConfig) Validate() error {
	if s.Slug == "" {
		return ErrSourceMissingSlug
	}

	switch s.Kind {
	case KindAPI:
		if s.APIURL == "" {
			return ErrSourceMissingAPIURL
		}

		if s.SiteURL == "" {
			return ErrSourceMissingSite
		}
	case KindRSS:
		if s.FeedURL == "" {
			return ErrSourceMissingFeedURL
		}
	default:
		return ErrInvalidSourceKind
	}

	helper := utils.NewHTTPHelper()
	for _, u := range []string{s.SiteURL, s.APIURL, s.FeedURL} {
		if u != "" && !helper.IsValidURL(u) {
			return fmt.Errorf("%w: %q", ErrInvalidURL, u)
		}
	}

	if s.CategoryPolicy != "post" && s.CategoryPolicy != "strict" {
		return ErrInvalidPolicy
	}

	if s.ParagraphSelector == "" {
		return ErrMissingParagraphSel
	}

	return nil
}

// ValidLogLevel reports whether level is a recognised log level.
func ValidLogLevel(level string) bool {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

	return validLevels[level]
}

// Source returns the source with the given slug.
func (c *Config) Source(slug string) (*SourceConfig, error) {
	for i := range c.Sources {
		if c.Sources[i].Slug == slug {
			return &c.Sources[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, slug)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, BotName: %s, Output: %s}",
		len(c.Sources),
		c.Wiki.BotName,
		c.Wiki.OutputDirectory,
	)
}
