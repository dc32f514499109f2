// Package config provides configuration management for seodash.
// It defines configuration structures and default values for the collection
// jobs, the provider clients, storage and the trigger server.
package config

import (
	"os"
	"time"
)

// DatabaseConfig selects the storage backend
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn" yaml:"dsn"`       // File path for sqlite, connection URL for postgres
}

// ServerConfig holds the trigger endpoint settings
type ServerConfig struct {
	Addr          string        `mapstructure:"addr" yaml:"addr"`
	CronSecret    string        `mapstructure:"cron_secret" yaml:"cron_secret"`       // Shared bearer secret for /api/cron/*
	CronSecretEnv string        `mapstructure:"cron_secret_env" yaml:"cron_secret_env"` // Environment variable holding the secret
	RateLimit     int           `mapstructure:"rate_limit" yaml:"rate_limit"`         // Requests per minute per IP on /api/cron
	ReadTimeout   time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"` // Backstop for long job runs
}

// SiteConfig describes the tracked website
type SiteConfig struct {
	Domain   string `mapstructure:"domain" yaml:"domain"`     // Root domain matched in SERP results
	Timezone string `mapstructure:"timezone" yaml:"timezone"` // Timezone used to compute collection dates, UTC by default
}

// LocationConfig maps a catalog location to its provider-side identifiers.
// Order matters: search console attribution uses the first matching pattern.
type LocationConfig struct {
	Slug                 string `mapstructure:"slug" yaml:"slug"`
	SerpLocationCode     int    `mapstructure:"serp_location_code" yaml:"serp_location_code"`
	AnalyticsPath        string `mapstructure:"analytics_path" yaml:"analytics_path"`
	SearchConsolePattern string `mapstructure:"search_console_pattern" yaml:"search_console_pattern"`
	GBPProfile           string `mapstructure:"gbp_profile" yaml:"gbp_profile"`
}

// DataForSEOConfig configures the rank-tracking provider
type DataForSEOConfig struct {
	BaseURL             string `mapstructure:"base_url" yaml:"base_url"`
	Login               string `mapstructure:"login" yaml:"login"`
	Password            string `mapstructure:"password" yaml:"password"`
	BatchSize           int    `mapstructure:"batch_size" yaml:"batch_size"` // Tasks per request
	Depth               int    `mapstructure:"depth" yaml:"depth"`           // Result depth cutoff
	LanguageCode        string `mapstructure:"language_code" yaml:"language_code"`
	Device              string `mapstructure:"device" yaml:"device"`
	OS                  string `mapstructure:"os" yaml:"os"`
	DefaultLocationCode int    `mapstructure:"default_location_code" yaml:"default_location_code"`
}

// FathomConfig configures the web analytics provider
type FathomConfig struct {
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	APIKey        string `mapstructure:"api_key" yaml:"api_key"`
	SiteID        string `mapstructure:"site_id" yaml:"site_id"`
	TopPagesLimit int    `mapstructure:"top_pages_limit" yaml:"top_pages_limit"`
}

// GoogleConfig holds the OAuth client used by Business Profile and Search Console
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token" yaml:"refresh_token"`
	TokenURL     string `mapstructure:"token_url" yaml:"token_url"`
}

// BusinessProfileConfig configures the Business Profile Performance API
type BusinessProfileConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// SearchConsoleConfig configures the Search Console API
type SearchConsoleConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	SiteURL  string `mapstructure:"site_url" yaml:"site_url"`
	RowLimit int    `mapstructure:"row_limit" yaml:"row_limit"`
	LagDays  int    `mapstructure:"lag_days" yaml:"lag_days"` // Reporting delay in days
}

// YouTubeConfig configures the YouTube Data API
type YouTubeConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	APIKey     string `mapstructure:"api_key" yaml:"api_key"`
	ChannelID  string `mapstructure:"channel_id" yaml:"channel_id"`
	MaxResults int    `mapstructure:"max_results" yaml:"max_results"`
}

// BunnyConfig configures the Bunny Stream API
type BunnyConfig struct {
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	APIKey       string `mapstructure:"api_key" yaml:"api_key"`
	LibraryID    string `mapstructure:"library_id" yaml:"library_id"`
	ItemsPerPage int    `mapstructure:"items_per_page" yaml:"items_per_page"`
}

// ProvidersConfig groups every external data source
type ProvidersConfig struct {
	RequestTimeout   time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RequestDelay     time.Duration `mapstructure:"request_delay" yaml:"request_delay"`         // Minimum spacing between calls to one provider
	BreakerFailures  int           `mapstructure:"breaker_failures" yaml:"breaker_failures"`   // Consecutive failures before the breaker opens
	BreakerOpenDelay time.Duration `mapstructure:"breaker_open_delay" yaml:"breaker_open_delay"` // Time an open breaker waits before probing
	UserAgent        string        `mapstructure:"user_agent" yaml:"user_agent"`

	DataForSEO      DataForSEOConfig      `mapstructure:"dataforseo" yaml:"dataforseo"`
	Fathom          FathomConfig          `mapstructure:"fathom" yaml:"fathom"`
	Google          GoogleConfig          `mapstructure:"google" yaml:"google"`
	BusinessProfile BusinessProfileConfig `mapstructure:"business_profile" yaml:"business_profile"`
	SearchConsole   SearchConsoleConfig   `mapstructure:"search_console" yaml:"search_console"`
	YouTube         YouTubeConfig         `mapstructure:"youtube" yaml:"youtube"`
	Bunny           BunnyConfig           `mapstructure:"bunny" yaml:"bunny"`
}

// ScheduleConfig holds cron specs for the optional in-process scheduler
type ScheduleConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Rankings      string `mapstructure:"rankings" yaml:"rankings"`
	Fathom        string `mapstructure:"fathom" yaml:"fathom"`
	GBP           string `mapstructure:"gbp" yaml:"gbp"`
	SearchConsole string `mapstructure:"search_console" yaml:"search_console"`
	Videos        string `mapstructure:"videos" yaml:"videos"`
}

// LoggingConfig mirrors logging.Config in a serializable form
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSize    int64  `mapstructure:"max_size" yaml:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Console    bool   `mapstructure:"console" yaml:"console"`
}

// Config is the complete seodash configuration
type Config struct {
	Database  DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Server    ServerConfig     `mapstructure:"server" yaml:"server"`
	Site      SiteConfig       `mapstructure:"site" yaml:"site"`
	Locations []LocationConfig `mapstructure:"locations" yaml:"locations"`
	Providers ProvidersConfig  `mapstructure:"providers" yaml:"providers"`
	Schedule  ScheduleConfig   `mapstructure:"schedule" yaml:"schedule"`
	Logging   LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./seodash.db",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			RateLimit:    60,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
		Site: SiteConfig{
			Domain:   "muchnikelderlaw.com",
			Timezone: "UTC",
		},
		Locations: []LocationConfig{
			{
				Slug:                 "manhattan",
				SerpLocationCode:     1023191,
				AnalyticsPath:        "/manhattan",
				SearchConsolePattern: "/manhattan/",
			},
			{
				Slug:                 "staten-island",
				SerpLocationCode:     1023191,
				AnalyticsPath:        "/staten-island",
				SearchConsolePattern: "/staten-island/",
			},
			{
				Slug:                 "morris-county",
				SerpLocationCode:     1022412,
				AnalyticsPath:        "/new-jersey",
				SearchConsolePattern: "/new-jersey/",
			},
		},
		Providers: ProvidersConfig{
			RequestTimeout:   30 * time.Second,
			RequestDelay:     100 * time.Millisecond,
			BreakerFailures:  3,
			BreakerOpenDelay: time.Minute,
			UserAgent:        "seodash/1.0",
			DataForSEO: DataForSEOConfig{
				BaseURL:             "https://api.dataforseo.com",
				BatchSize:           100,
				Depth:               100,
				LanguageCode:        "en",
				Device:              "desktop",
				OS:                  "windows",
				DefaultLocationCode: 1023191,
			},
			Fathom: FathomConfig{
				BaseURL:       "https://api.usefathom.com",
				TopPagesLimit: 20,
			},
			Google: GoogleConfig{
				TokenURL: "https://oauth2.googleapis.com/token",
			},
			BusinessProfile: BusinessProfileConfig{
				BaseURL: "https://businessprofileperformance.googleapis.com",
			},
			SearchConsole: SearchConsoleConfig{
				BaseURL:  "https://www.googleapis.com",
				RowLimit: 1000,
				LagDays:  3,
			},
			YouTube: YouTubeConfig{
				BaseURL:    "https://www.googleapis.com",
				MaxResults: 50,
			},
			Bunny: BunnyConfig{
				BaseURL:      "https://video.bunnycdn.com",
				ItemsPerPage: 100,
			},
		},
		Schedule: ScheduleConfig{
			Enabled:       false,
			Rankings:      "0 6 * * *",
			Fathom:        "0 7 * * *",
			GBP:           "0 8 * * *",
			SearchConsole: "0 9 * * *",
			Videos:        "0 10 * * 1",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 5,
			Console:    true,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return ErrInvalidDriver
	}

	if c.Database.DSN == "" {
		return ErrEmptyDSN
	}

	if c.Site.Domain == "" {
		return ErrEmptyDomain
	}

	if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
		return ErrInvalidTimezone
	}

	if c.Providers.DataForSEO.BatchSize <= 0 || c.Providers.DataForSEO.BatchSize > 100 {
		return ErrInvalidBatchSize
	}

	if c.Providers.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Providers.SearchConsole.RowLimit <= 0 {
		return ErrInvalidRowLimit
	}

	seen := make(map[string]bool, len(c.Locations))
	for _, loc := range c.Locations {
		if loc.Slug == "" {
			return ErrEmptyLocationSlug
		}
		if seen[loc.Slug] {
			return ErrDuplicateLocation
		}
		seen[loc.Slug] = true
	}

	return nil
}

// ValidateServer checks the settings needed to expose the trigger endpoints
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GetCronSecret() == "" {
		return ErrEmptyCronSecret
	}
	return nil
}

// GetCronSecret returns the shared trigger secret,
// resolving the environment variable if specified
func (c *Config) GetCronSecret() string {
	if c.Server.CronSecretEnv != "" {
		return os.Getenv(c.Server.CronSecretEnv)
	}
	return c.Server.CronSecret
}

// Location returns the provider mapping for a location slug
func (c *Config) Location(slug string) (LocationConfig, bool) {
	for _, loc := range c.Locations {
		if loc.Slug == slug {
			return loc, true
		}
	}
	return LocationConfig{}, false
}

// Redacted returns a copy with credentials masked, for display
func (c *Config) Redacted() *Config {
	out := *c
	out.Locations = append([]LocationConfig(nil), c.Locations...)
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	out.Server.CronSecret = mask(out.Server.CronSecret)
	out.Providers.DataForSEO.Password = mask(out.Providers.DataForSEO.Password)
	out.Providers.Fathom.APIKey = mask(out.Providers.Fathom.APIKey)
	out.Providers.Google.ClientSecret = mask(out.Providers.Google.ClientSecret)
	out.Providers.Google.RefreshToken = mask(out.Providers.Google.RefreshToken)
	out.Providers.YouTube.APIKey = mask(out.Providers.YouTube.APIKey)
	out.Providers.Bunny.APIKey = mask(out.Providers.Bunny.APIKey)
	return &out
}
