package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"

	"github.com/umputun/newsdesk/pkg/content"
	"github.com/umputun/newsdesk/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// source kinds, each maps to a scraping adapter
const (
	KindGazette      = "gazette"
	KindComoresInfos = "comoresinfos"
	KindRSS          = "rss"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig      `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	Snapshot   SnapshotConfig    `yaml:"snapshot" json:"snapshot" jsonschema:"description=Article snapshot storage"`
	Schedule   ScheduleConfig    `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`
	Fetch      FetchConfig       `yaml:"fetch" json:"fetch" jsonschema:"description=Upstream HTTP fetch configuration"`
	Sources    []SourceConfig    `yaml:"sources" json:"sources" jsonschema:"description=Scraped sources, built-in sites are used if empty"`
	Categories []domain.Category `yaml:"categories" json:"categories" jsonschema:"description=Category list served by /categories, built-in list is used if empty"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:3000,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:3000,description=Base URL for RSS feeds and external links"`
}

// SnapshotConfig holds snapshot storage settings
type SnapshotConfig struct {
	Path string `yaml:"path" json:"path" jsonschema:"default=var/articles.json,description=Snapshot file location"`
}

// ScheduleConfig holds scheduler settings
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=1h,description=Aggregation interval"`
}

// FetchConfig holds upstream fetch settings
type FetchConfig struct {
	UserAgent     string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for HTTP requests, desktop Chrome if empty"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Timeout of a single request"`
	RetryAttempts int           `yaml:"retry_attempts" json:"retry_attempts" jsonschema:"default=3,minimum=1,description=Total attempts for requests answered with 503"`
	RetryDelay    time.Duration `yaml:"retry_delay" json:"retry_delay" jsonschema:"default=2s,description=Delay between attempts"`
	MaxBodySize   int64         `yaml:"max_body_size" json:"max_body_size" jsonschema:"default=10485760,description=Maximum response body size in bytes"`
	MaxConcurrent int           `yaml:"max_concurrent" json:"max_concurrent" jsonschema:"default=8,minimum=1,description=Maximum concurrent detail page fetches per source"`
	MinTextLength int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=100,description=Minimum extracted text length for feed sources"`
}

// SourceConfig describes a scraped site
type SourceConfig struct {
	Name    string `yaml:"name" json:"name" jsonschema:"description=Source name recorded on articles, kind if empty"`
	Kind    string `yaml:"kind" json:"kind" jsonschema:"required,enum=gazette,enum=comoresinfos,enum=rss,description=Adapter used to scrape the source"`
	URL     string `yaml:"url" json:"url" jsonschema:"required,description=Listing page or feed URL"`
	BaseURL string `yaml:"base_url" json:"base_url" jsonschema:"description=Base for relative links, listing URL if empty"`
}

// DefaultSources returns the built-in scraped sites
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Name: "lagazette", Kind: KindGazette, URL: "https://www.lagazettedescomores.com", BaseURL: "https://lagazettedescomores.com/"},
		{Name: "comoresinfos", Kind: KindComoresInfos, URL: "https://www.comoresinfos.net/"},
	}
}

// Load reads configuration from a YAML file. Empty path means built-in defaults only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail, schema validation is supplementary
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":3000"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost" + c.Server.Listen
		if !strings.HasPrefix(c.Server.Listen, ":") {
			c.Server.BaseURL = "http://" + c.Server.Listen
		}
	}

	// snapshot and schedule
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = "var/articles.json"
	}
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = time.Hour
	}

	// fetch
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = content.DefaultUserAgent
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.RetryAttempts == 0 {
		c.Fetch.RetryAttempts = 3
	}
	if c.Fetch.RetryDelay == 0 {
		c.Fetch.RetryDelay = 2 * time.Second
	}
	if c.Fetch.MaxBodySize == 0 {
		c.Fetch.MaxBodySize = 10 * 1024 * 1024
	}
	if c.Fetch.MaxConcurrent == 0 {
		c.Fetch.MaxConcurrent = 8
	}
	if c.Fetch.MinTextLength == 0 {
		c.Fetch.MinTextLength = 100
	}

	// sources and categories
	if len(c.Sources) == 0 {
		c.Sources = DefaultSources()
	}
	for i := range c.Sources {
		c.Sources[i].Kind = strings.ToLower(strings.TrimSpace(c.Sources[i].Kind))
		if c.Sources[i].Name == "" {
			c.Sources[i].Name = c.Sources[i].Kind
		}
	}
	if len(c.Categories) == 0 {
		c.Categories = domain.DefaultCategories()
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return errors.New("server timeout must be at least 1 second")
	}
	if cfg.Schedule.Interval < time.Minute {
		return errors.New("schedule interval must be at least 1 minute")
	}

	if cfg.Fetch.RetryAttempts < 1 {
		return errors.New("fetch.retry_attempts must be at least 1")
	}
	if cfg.Fetch.RetryDelay < 0 {
		return errors.New("fetch.retry_delay must be non-negative")
	}
	if cfg.Fetch.MaxConcurrent < 1 {
		return errors.New("fetch.max_concurrent must be at least 1")
	}
	if cfg.Fetch.MaxBodySize < 1 {
		return errors.New("fetch.max_body_size must be positive")
	}

	names := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		switch src.Kind {
		case KindGazette, KindComoresInfos, KindRSS:
		default:
			return fmt.Errorf("sources[%d]: unknown kind %q", i, src.Kind)
		}
		if err := checkURL(src.URL); err != nil {
			return fmt.Errorf("sources[%d] url: %w", i, err)
		}
		if src.BaseURL != "" {
			if err := checkURL(src.BaseURL); err != nil {
				return fmt.Errorf("sources[%d] base_url: %w", i, err)
			}
		}
		if names[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name)
		}
		names[src.Name] = true
	}

	for i, c := range cfg.Categories {
		if c.ID == "" || c.Label == "" {
			return fmt.Errorf("categories[%d]: id and label are required", i)
		}
	}

	return nil
}

func checkURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %q: absolute http(s) URL expected", raw)
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}
