// ABOUTME: Configuration loader for the homelabcmd client
// ABOUTME: Merges .env files, an optional config.yaml and HOMELABCMD_ environment variables

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. HOMELABCMD_API_URL
const EnvPrefix = "HOMELABCMD"

// Defaults
const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultPageSize       = 20
	DefaultPollInterval   = 30 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	DefaultNoticeTTL      = 5 * time.Second
	DefaultLookupTTL      = 5 * time.Minute
	MaxPageSize           = 500
)

// DefaultEnvFiles are loaded in order when present; earlier files win
var DefaultEnvFiles = []string{".env.local", ".env"}

type Config struct {
	// Backend
	APIURL         string
	APIKey         string
	RequestTimeout time.Duration

	// Lists
	PageSize     int
	PollInterval time.Duration
	NoticeTTL    time.Duration
	LookupTTL    time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Dir holds config.yaml, the session file and the TUI debug log
	Dir string
}

// DefaultDir returns the config directory under XDG_CONFIG_HOME or ~/.config
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "homelabcmd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "homelabcmd")
}

// Load reads configuration from the default env files and config directory
func Load() (*Config, error) {
	if _, err := LoadEnv(DefaultEnvFiles); err != nil {
		return nil, err
	}
	return LoadFrom(DefaultDir())
}

// LoadEnv loads the env files that exist and returns how many were read.
// Variables already set in the process environment are never overridden.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("failed to load env files: %w", err)
	}
	return len(existing), nil
}

// LoadFrom reads dir/config.yaml when present, applies environment overrides and validates
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("api_key", "")
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("notice_ttl", DefaultNoticeTTL)
	v.SetDefault("lookup_ttl", DefaultLookupTTL)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if dir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		APIURL:         ensureScheme(strings.TrimSpace(v.GetString("api_url"))),
		APIKey:         v.GetString("api_key"),
		RequestTimeout: v.GetDuration("request_timeout"),
		PageSize:       v.GetInt("page_size"),
		PollInterval:   v.GetDuration("poll_interval"),
		NoticeTTL:      v.GetDuration("notice_ttl"),
		LookupTTL:      v.GetDuration("lookup_ttl"),
		LogLevel:       firstNonEmpty(os.Getenv("LOG_LEVEL"), v.GetString("log_level")),
		LogFormat:      firstNonEmpty(os.Getenv("LOG_FORMAT"), v.GetString("log_format")),
		Dir:            dir,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and the backend URL
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return fmt.Errorf("%s_PAGE_SIZE must be between 1 and %d, got %d", EnvPrefix, MaxPageSize, c.PageSize)
	}

	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"POLL_INTERVAL", c.PollInterval},
		{"REQUEST_TIMEOUT", c.RequestTimeout},
		{"NOTICE_TTL", c.NoticeTTL},
		{"LOOKUP_TTL", c.LookupTTL},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s_%s must be positive, got %s", EnvPrefix, d.name, d.value)
		}
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s_API_URL is not a valid http(s) URL: %q", EnvPrefix, c.APIURL)
	}
	return nil
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(raw string) string {
	if raw == "" {
		return raw
	}
	if !strings.Contains(raw, "://") {
		return "http://" + raw
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
