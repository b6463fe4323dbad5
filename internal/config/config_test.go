package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errSub string
	}{
		{"unknown source", func(c *Config) { c.Source = "scholar" }, "unknown source"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
		{"zero rows", func(c *Config) { c.Rows = 0 }, "rows"},
		{"tau too large", func(c *Config) { c.Tau = 1 }, "tau"},
		{"negative epsilon", func(c *Config) { c.Epsilon = -0.1 }, "epsilon"},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Hour }, "durations"},
		{"negative rate", func(c *Config) { c.DBLPRateLimit = -1 }, "rate limits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.errSub)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	c := Default()
	if c.RateLimit("dblp") != 1 || c.RateLimit("crossref") != 50 {
		t.Errorf("RateLimit() = %v, %v", c.RateLimit("dblp"), c.RateLimit("crossref"))
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got := ExpandTilde("~/cache/b.db"); got != filepath.Join(home, "cache", "b.db") {
		t.Errorf("ExpandTilde() = %q", got)
	}
	if got := ExpandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandTilde() = %q", got)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := GlobalConfigPath(); got != "/custom/config/betterbib/config.yml" {
		t.Errorf("GlobalConfigPath() = %q", got)
	}
}

func TestLoad_NotFound(t *testing.T) {
	ResetCache()
	defer ResetCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvMailto, "")
	t.Setenv(EnvCache, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "crossref" || cfg.Concurrency != 10 || cfg.Tau != 0.8 {
		t.Errorf("missing file should give defaults, got %+v", cfg)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	ResetCache()
	defer ResetCache()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `source: dblp
mailto: file@example.org
concurrency: 4
tau: 0.7
cache_ttl: 48h
timeout: 5s
protected_fields: [note, owner]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvMailto, "env@example.org")
	t.Setenv(EnvCache, filepath.Join(dir, "cache.db"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "dblp" || cfg.Concurrency != 4 || cfg.Tau != 0.7 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Epsilon != 0.05 || cfg.Rows != 5 {
		t.Errorf("unset keys should keep defaults: %+v", cfg)
	}
	if cfg.CacheTTL != 48*time.Hour || cfg.Timeout != 5*time.Second {
		t.Errorf("durations = %v, %v", cfg.CacheTTL, cfg.Timeout)
	}
	if len(cfg.ProtectedFields) != 2 || cfg.ProtectedFields[1] != "owner" {
		t.Errorf("ProtectedFields = %v", cfg.ProtectedFields)
	}
	if cfg.Mailto != "env@example.org" {
		t.Errorf("env should override file mailto, got %q", cfg.Mailto)
	}
	if cfg.CachePath != filepath.Join(dir, "cache.db") {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}

	// Second load is served from the cache.
	again, err := Load(path)
	if err != nil || again != cfg {
		t.Error("expected cached config")
	}
}

func TestLoad_Invalid(t *testing.T) {
	ResetCache()
	defer ResetCache()

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yml")
	os.WriteFile(bad, []byte("source: [unclosed"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yml")
	os.WriteFile(invalid, []byte("source: scholar\n"), 0644)
	if _, err := Load(invalid); err == nil || !strings.Contains(err.Error(), "unknown source") {
		t.Errorf("expected validation error, got %v", err)
	}
}
