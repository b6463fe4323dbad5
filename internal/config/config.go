// Package config handles user configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matsen/betterbib/internal/source"
)

// Config holds settings shared by all commands. Command-line flags
// override it.
type Config struct {
	Source          string        `yaml:"source,omitempty"`
	Mailto          string        `yaml:"mailto,omitempty"`
	LongJournalName bool          `yaml:"long_journal_name,omitempty"`
	Concurrency     int           `yaml:"concurrency,omitempty"`
	Rows            int           `yaml:"rows,omitempty"`
	Tau             float64       `yaml:"tau,omitempty"`
	Epsilon         float64       `yaml:"epsilon,omitempty"`
	LogLevel        string        `yaml:"log_level,omitempty"`
	CachePath       string        `yaml:"cache_path,omitempty"`
	CacheTTL        time.Duration `yaml:"cache_ttl,omitempty"`
	ProtectedFields []string      `yaml:"protected_fields,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`

	CrossrefRateLimit float64 `yaml:"crossref_rate_limit,omitempty"`
	DBLPRateLimit     float64 `yaml:"dblp_rate_limit,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Source:            source.NameCrossref,
		Concurrency:       10,
		Rows:              5,
		Tau:               0.8,
		Epsilon:           0.05,
		LogLevel:          "info",
		CacheTTL:          30 * 24 * time.Hour,
		Timeout:           30 * time.Second,
		CrossrefRateLimit: 50,
		DBLPRateLimit:     1,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(source.Names, c.Source) {
		return fmt.Errorf("unknown source %q (want one of %s)", c.Source, strings.Join(source.Names, ", "))
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Rows < 1 {
		return fmt.Errorf("rows must be at least 1, got %d", c.Rows)
	}
	if c.Tau < 0 || c.Tau >= 1 {
		return fmt.Errorf("tau must be in [0, 1), got %v", c.Tau)
	}
	if c.Epsilon < 0 || c.Epsilon >= 1 {
		return fmt.Errorf("epsilon must be in [0, 1), got %v", c.Epsilon)
	}
	if c.CacheTTL < 0 || c.Timeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.CrossrefRateLimit < 0 || c.DBLPRateLimit < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}
	return nil
}

// RateLimit returns the configured request rate for the named source.
func (c *Config) RateLimit(name string) float64 {
	if name == source.NameDBLP {
		return c.DBLPRateLimit
	}
	return c.CrossrefRateLimit
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
