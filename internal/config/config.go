// Package config loads albumlink settings from an optional YAML file and
// AL_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sydlexius/albumlink/internal/catalog"
	"github.com/sydlexius/albumlink/internal/logging"
	"github.com/sydlexius/albumlink/internal/page"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AL_"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Catalog CatalogConfig  `yaml:"catalog"`
	Fetch   FetchConfig    `yaml:"fetch"`
	Logging logging.Config `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int     `yaml:"port"`
	BasePath          string  `yaml:"base_path"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// CatalogConfig holds iTunes Search API settings.
type CatalogConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Country           string        `yaml:"country"`
	SearchLimit       int           `yaml:"search_limit"`
	LookupLimit       int           `yaml:"lookup_limit"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	AppLinks          bool          `yaml:"app_links"`
}

// FetchConfig holds settings for downloading review pages.
// AllowPrivateNetworks lets the fetcher reach loopback and private hosts.
type FetchConfig struct {
	UserAgent            string        `yaml:"user_agent"`
	Timeout              time.Duration `yaml:"timeout"`
	MaxBodyBytes         int64         `yaml:"max_body_bytes"`
	RequestsPerSecond    float64       `yaml:"requests_per_second"`
	AllowPrivateNetworks bool          `yaml:"allow_private_networks"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	cat := catalog.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			BasePath:          "/",
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Catalog: CatalogConfig{
			BaseURL:           cat.BaseURL,
			Country:           cat.Country,
			SearchLimit:       cat.SearchLimit,
			LookupLimit:       cat.LookupLimit,
			Timeout:           cat.Timeout,
			RequestsPerSecond: 2,
			AppLinks:          true,
		},
		Fetch: FetchConfig{
			UserAgent:         page.DefaultUserAgent,
			Timeout:           page.DefaultTimeout,
			MaxBodyBytes:      page.DefaultMaxBodyBytes,
			RequestsPerSecond: 1,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// CatalogClientConfig converts the catalog section for catalog.New.
func (c *Config) CatalogClientConfig() catalog.Config {
	return catalog.Config{
		BaseURL:     c.Catalog.BaseURL,
		Country:     c.Catalog.Country,
		SearchLimit: c.Catalog.SearchLimit,
		LookupLimit: c.Catalog.LookupLimit,
		Timeout:     c.Catalog.Timeout,
	}
}

// FetcherConfig converts the fetch section for page.NewFetcher.
func (c *Config) FetcherConfig() page.FetchConfig {
	return page.FetchConfig{
		UserAgent:            c.Fetch.UserAgent,
		Timeout:              c.Fetch.Timeout,
		MaxBodyBytes:         c.Fetch.MaxBodyBytes,
		AllowPrivateNetworks: c.Fetch.AllowPrivateNetworks,
	}
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

// envOverride binds one environment variable to a config field.
type envOverride struct {
	name  string
	apply func(v string) error
}

func (c *Config) overrides() []envOverride {
	return []envOverride{
		{"PORT", intVar(&c.Server.Port)},
		{"BASE_PATH", stringVar(&c.Server.BasePath)},
		{"API_RPS", floatVar(&c.Server.RequestsPerSecond)},
		{"CATALOG_URL", stringVar(&c.Catalog.BaseURL)},
		{"CATALOG_COUNTRY", stringVar(&c.Catalog.Country)},
		{"CATALOG_TIMEOUT", durationVar(&c.Catalog.Timeout)},
		{"CATALOG_RPS", floatVar(&c.Catalog.RequestsPerSecond)},
		{"APP_LINKS", boolVar(&c.Catalog.AppLinks)},
		{"USER_AGENT", stringVar(&c.Fetch.UserAgent)},
		{"FETCH_TIMEOUT", durationVar(&c.Fetch.Timeout)},
		{"FETCH_RPS", floatVar(&c.Fetch.RequestsPerSecond)},
		{"FETCH_ALLOW_PRIVATE", boolVar(&c.Fetch.AllowPrivateNetworks)},
		{"LOG_LEVEL", stringVar(&c.Logging.Level)},
		{"LOG_FORMAT", stringVar(&c.Logging.Format)},
		{"LOG_FILE", stringVar(&c.Logging.FilePath)},
	}
}

func (c *Config) loadFromEnv() error {
	for _, o := range c.overrides() {
		v := os.Getenv(EnvPrefix + o.name)
		if v == "" {
			continue
		}
		if err := o.apply(v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, o.name, err)
		}
	}
	return nil
}

func stringVar(p *string) func(string) error {
	return func(v string) error { *p = v; return nil }
}

func intVar(p *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p = n
		return nil
	}
}

func floatVar(p *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*p = f
		return nil
	}
}

func boolVar(p *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*p = b
		return nil
	}
}

func durationVar(p *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*p = d
		return nil
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		c.Server.BasePath = "/" + c.Server.BasePath
	}

	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid catalog base_url: %q", c.Catalog.BaseURL)
	}
	c.Catalog.BaseURL = strings.TrimRight(c.Catalog.BaseURL, "/")
	if len(c.Catalog.Country) != 2 {
		return fmt.Errorf("invalid catalog country: %q", c.Catalog.Country)
	}
	c.Catalog.Country = strings.ToLower(c.Catalog.Country)
	if c.Catalog.SearchLimit < 1 || c.Catalog.SearchLimit > 200 {
		return fmt.Errorf("catalog search_limit must be between 1 and 200, got %d", c.Catalog.SearchLimit)
	}
	if c.Catalog.LookupLimit < 1 || c.Catalog.LookupLimit > 200 {
		return fmt.Errorf("catalog lookup_limit must be between 1 and 200, got %d", c.Catalog.LookupLimit)
	}
	if c.Catalog.Timeout <= 0 || c.Fetch.Timeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		return fmt.Errorf("fetch max_body_bytes must be positive")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q", c.Logging.Format)
	}
	return nil
}
