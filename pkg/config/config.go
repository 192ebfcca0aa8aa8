package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kidplan-downloader/pkg/models"
)

const (
	// DefaultBaseURL is the Kidplan web application root
	DefaultBaseURL = "https://app.kidplan.com"

	// DefaultUserAgent is sent with every request
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36"

	// DefaultManifest is the manifest file name in the working directory
	DefaultManifest = "kidplan-manifest.txt"
)

// Config holds all configuration options for the downloader
type Config struct {
	Kidplan       KidplanConfig      `yaml:"kidplan" json:"kidplan"`
	Download      DownloadConfig     `yaml:"download" json:"download"`
	RateLimit     RateLimitConfig    `yaml:"rate_limit" json:"rate_limit"`
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`
	Logging       LoggingConfig      `yaml:"logging" json:"logging"`
}

// KidplanConfig holds account and transport settings
type KidplanConfig struct {
	Username         string        `yaml:"username" json:"username"`
	Password         string        `yaml:"password" json:"password"`
	KindergartenID   int64         `yaml:"kindergarten_id" json:"kindergarten_id"`
	KindergartenName string        `yaml:"kindergarten_name" json:"kindergarten_name"`
	BaseURL          string        `yaml:"base_url" json:"base_url"`
	UserAgent        string        `yaml:"user_agent" json:"user_agent"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	MaxRedirects     int           `yaml:"max_redirects" json:"max_redirects"`
}

// DownloadConfig holds per-run download settings
type DownloadConfig struct {
	OutDir        string `yaml:"out_dir" json:"out_dir"`
	DelayMs       int    `yaml:"delay_ms" json:"delay_ms"`
	LimitPerAlbum int    `yaml:"limit_per_album" json:"limit_per_album"`
	Manifest      string `yaml:"manifest" json:"manifest"`
	WriteMetadata bool   `yaml:"write_metadata" json:"write_metadata"`
	DryRun        bool   `yaml:"dry_run" json:"dry_run"`
}

// RateLimitConfig holds request pacing and retry settings
type RateLimitConfig struct {
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int           `yaml:"burst" json:"burst"`
	MaxRetries        int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay" json:"retry_delay"`
}

// NotificationConfig holds desktop notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Kidplan: KidplanConfig{
			BaseURL:      DefaultBaseURL,
			UserAgent:    DefaultUserAgent,
			Timeout:      60 * time.Second,
			MaxRedirects: 10,
		},
		Download: DownloadConfig{
			OutDir:        "kidplan-albums",
			DelayMs:       200,
			LimitPerAlbum: 0,
			Manifest:      DefaultManifest,
			WriteMetadata: true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
			Burst:             1,
			MaxRetries:        2,
			RetryDelay:        time.Second,
		},
		Notifications: NotificationConfig{
			Enabled:    false,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from KIDPLAN_* environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}

	setString("KIDPLAN_USER", &c.Kidplan.Username)
	setString("KIDPLAN_PASS", &c.Kidplan.Password)
	setString("KIDPLAN_KID_NAME", &c.Kidplan.KindergartenName)
	setString("KIDPLAN_BASE_URL", &c.Kidplan.BaseURL)
	setString("KIDPLAN_USER_AGENT", &c.Kidplan.UserAgent)
	setString("KIDPLAN_OUT_DIR", &c.Download.OutDir)
	setString("KIDPLAN_MANIFEST", &c.Download.Manifest)
	setString("KIDPLAN_LOG_LEVEL", &c.Logging.Level)

	if kid := os.Getenv("KIDPLAN_KID"); kid != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(kid), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("KIDPLAN_KID: %w", err))
		} else {
			c.Kidplan.KindergartenID = id
		}
	}

	setInt("KIDPLAN_DELAY_MS", &c.Download.DelayMs)
	setInt("KIDPLAN_LIMIT", &c.Download.LimitPerAlbum)
	setInt("KIDPLAN_REQUESTS_PER_MINUTE", &c.RateLimit.RequestsPerMinute)

	if v := os.Getenv("KIDPLAN_NOTIFICATIONS"); v != "" {
		c.Notifications.Enabled = strings.EqualFold(v, "true") || v == "1"
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".kidplan.yaml",
		".kidplan.yml",
		filepath.Join(home, ".config", "kidplan", "config.yaml"),
		filepath.Join(home, ".kidplan.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Kidplan.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if c.Kidplan.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Kidplan.MaxRedirects < 0 {
		errs = append(errs, errors.New("max redirects cannot be negative"))
	}

	if c.Download.OutDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Download.Manifest == "" {
		errs = append(errs, errors.New("manifest path is required"))
	}
	if c.Download.DelayMs < 0 {
		errs = append(errs, errors.New("delay cannot be negative"))
	}
	if c.Download.LimitPerAlbum < 0 {
		errs = append(errs, errors.New("limit per album cannot be negative"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// 0600: the file may hold the account password
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["out-dir"].(string); ok && v != "" {
		c.Download.OutDir = v
	}
	if v, ok := flags["manifest"].(string); ok && v != "" {
		c.Download.Manifest = v
	}
	if v, ok := flags["delay"].(int); ok {
		c.Download.DelayMs = v
	}
	if v, ok := flags["limit"].(int); ok {
		c.Download.LimitPerAlbum = v
	}
	if v, ok := flags["dry-run"].(bool); ok {
		c.Download.DryRun = v
	}
	if v, ok := flags["kid"].(int64); ok && v > 0 {
		c.Kidplan.KindergartenID = v
	}
	if v, ok := flags["kid-name"].(string); ok && v != "" {
		c.Kidplan.KindergartenName = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = v
	}
}

// DownloadSettings converts the download section into run settings
func (c *Config) DownloadSettings() models.DownloadSettings {
	return models.DownloadSettings{
		OutDir:        c.Download.OutDir,
		DelayMs:       c.Download.DelayMs,
		LimitPerAlbum: c.Download.LimitPerAlbum,
		DryRun:        c.Download.DryRun,
		WriteMetadata: c.Download.WriteMetadata,
	}
}

// Credentials returns the account credentials from the configuration
func (c *Config) Credentials() models.Credentials {
	return models.Credentials{Email: c.Kidplan.Username, Password: c.Kidplan.Password}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// godotenv never overrides variables that are already set
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".kidplan.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
