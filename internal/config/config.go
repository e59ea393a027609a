// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Ebay      EbayConfig      `yaml:"ebay"`
	Sku       SkuConfig       `yaml:"sku"`
	Duplicate DuplicateConfig `yaml:"duplicate_check"`
	Refresher RefresherConfig `yaml:"token_refresher"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// EbayConfig defines eBay API credentials and endpoints.
type EbayConfig struct {
	ClientID     string          `yaml:"client_id"`
	ClientSecret string          `yaml:"client_secret"`
	RedirectURI  string          `yaml:"redirect_uri"`
	Sandbox      bool            `yaml:"sandbox"`
	Marketplace  string          `yaml:"marketplace"`
	Scopes       []string        `yaml:"scopes"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines eBay API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// SkuConfig defines the SKU generation strategy. Pad 0 means no zero padding.
type SkuConfig struct {
	DefaultPrefix string `yaml:"default_prefix"`
	Pad           int    `yaml:"pad"`
	VerifyUnique  *bool  `yaml:"verify_unique"`
}

// DuplicateConfig defines duplicate-check behavior.
type DuplicateConfig struct {
	PageSize   int           `yaml:"page_size"`
	MaxMatches int           `yaml:"max_matches"`
	Timeout    time.Duration `yaml:"timeout"`
	// OnFailure: "return_empty" (degrade gracefully, default) or "propagate".
	OnFailure string `yaml:"on_failure"`
}

// RefresherConfig defines the proactive token refresh sweep.
type RefresherConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	// Window: tokens expiring within this duration get refreshed early.
	Window time.Duration `yaml:"window"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyEbayDefaults(&cfg.Ebay)
	applySkuDefaults(&cfg.Sku)
	applyDuplicateDefaults(&cfg.Duplicate)
	applyRefresherDefaults(&cfg.Refresher)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyEbayDefaults(e *EbayConfig) {
	if e.Marketplace == "" {
		e.Marketplace = "EBAY_US"
	}
	if len(e.Scopes) == 0 {
		e.Scopes = []string{
			"https://api.ebay.com/oauth/api_scope",
			"https://api.ebay.com/oauth/api_scope/sell.inventory",
			"https://api.ebay.com/oauth/api_scope/sell.account.readonly",
		}
	}
	applyRateLimitDefaults(&e.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applySkuDefaults(s *SkuConfig) {
	if s.DefaultPrefix == "" {
		s.DefaultPrefix = "ITEM"
	}
	if s.Pad == 0 {
		s.Pad = 6
	}
	if s.VerifyUnique == nil {
		v := true
		s.VerifyUnique = &v
	}
}

func applyDuplicateDefaults(d *DuplicateConfig) {
	if d.PageSize == 0 {
		d.PageSize = 200
	}
	if d.MaxMatches == 0 {
		d.MaxMatches = 10
	}
	if d.Timeout == 0 {
		d.Timeout = 10 * time.Second
	}
	if d.OnFailure == "" {
		d.OnFailure = "return_empty"
	}
}

func applyRefresherDefaults(r *RefresherConfig) {
	if r.Interval == 0 {
		r.Interval = 15 * time.Minute
	}
	if r.Window == 0 {
		r.Window = 30 * time.Minute
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.Ebay.ClientID == "" {
		errs = append(errs, fmt.Errorf("ebay.client_id is required"))
	}
	if cfg.Ebay.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("ebay.client_secret is required"))
	}

	switch cfg.Duplicate.OnFailure {
	case "return_empty", "propagate":
	default:
		errs = append(errs, fmt.Errorf(
			"duplicate_check.on_failure must be return_empty or propagate (got %q)",
			cfg.Duplicate.OnFailure,
		))
	}

	if cfg.Sku.Pad < 0 {
		errs = append(errs, fmt.Errorf("sku.pad must not be negative"))
	}

	return errors.Join(errs...)
}
