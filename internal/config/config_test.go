// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, config.yaml, env overrides, validation and .env files

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate clears every variable Load reads so host settings cannot leak into a test
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"API_URL", "API_KEY", "PAGE_SIZE", "POLL_INTERVAL",
		"REQUEST_TIMEOUT", "NOTICE_TTL", "LOOKUP_TTL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(EnvPrefix+"_"+key, "")
		os.Unsetenv(EnvPrefix + "_" + key)
	}
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
}

func TestLoadFrom_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected %s, got %s", DefaultAPIURL, cfg.APIURL)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("expected page size %d, got %d", DefaultPageSize, cfg.PageSize)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("expected poll interval %s, got %s", DefaultPollInterval, cfg.PollInterval)
	}
	if cfg.NoticeTTL != 5*time.Second {
		t.Errorf("expected notice ttl 5s, got %s", cfg.NoticeTTL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("expected info/text logging, got %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadFrom_ConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	yaml := "api_url: nas.local:8080\npage_size: 50\npoll_interval: 10s\napi_key: from-file\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://nas.local:8080" {
		t.Errorf("expected scheme added, got %s", cfg.APIURL)
	}
	if cfg.PageSize != 50 {
		t.Errorf("expected page size 50, got %d", cfg.PageSize)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("expected 10s, got %s", cfg.PollInterval)
	}
	if cfg.APIKey != "from-file" {
		t.Errorf("expected api key from file, got %q", cfg.APIKey)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("page_size: 50\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOMELABCMD_PAGE_SIZE", "25")
	t.Setenv("HOMELABCMD_API_URL", "https://homelab.example.com")
	t.Setenv("HOMELABCMD_REQUEST_TIMEOUT", "2s")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PageSize != 25 {
		t.Errorf("expected env page size 25, got %d", cfg.PageSize)
	}
	if cfg.APIURL != "https://homelab.example.com" {
		t.Errorf("unexpected url %s", cfg.APIURL)
	}
	if cfg.RequestTimeout != 2*time.Second {
		t.Errorf("expected 2s, got %s", cfg.RequestTimeout)
	}
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"page size zero", "HOMELABCMD_PAGE_SIZE", "0", "PAGE_SIZE must be between 1 and 500"},
		{"page size too large", "HOMELABCMD_PAGE_SIZE", "501", "PAGE_SIZE must be between 1 and 500"},
		{"negative poll interval", "HOMELABCMD_POLL_INTERVAL", "-1s", "POLL_INTERVAL must be positive"},
		{"bad scheme", "HOMELABCMD_API_URL", "ftp://nas", "API_URL is not a valid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadFrom(t.TempDir())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected %q in error, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("page_size: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(dir); err == nil {
		t.Error("expected error for malformed config.yaml")
	}
}

func TestLoadEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")
	os.WriteFile(local, []byte("HOMELABCMD_API_KEY=local-key\n"), 0600)
	os.WriteFile(shared, []byte("HOMELABCMD_API_KEY=shared-key\nHOMELABCMD_PAGE_SIZE=30\n"), 0600)

	n, err := LoadEnv([]string{local, shared, filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 files loaded, got %d", n)
	}
	t.Cleanup(func() {
		os.Unsetenv("HOMELABCMD_API_KEY")
		os.Unsetenv("HOMELABCMD_PAGE_SIZE")
	})

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIKey != "local-key" {
		t.Errorf("expected .env.local to win, got %q", cfg.APIKey)
	}
	if cfg.PageSize != 30 {
		t.Errorf("expected page size from .env, got %d", cfg.PageSize)
	}
}

func TestLoadEnv_NoFiles(t *testing.T) {
	n, err := LoadEnv([]string{filepath.Join(t.TempDir(), ".env")})
	if err != nil || n != 0 {
		t.Errorf("expected 0, nil; got %d, %v", n, err)
	}
}

func TestDefaultDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultDir(); got != "/tmp/xdg/homelabcmd" {
		t.Errorf("expected /tmp/xdg/homelabcmd, got %s", got)
	}
}
