package config

import (
	"time"

	"github.com/dshills/fenceline/internal/guard"
)

// Section accessor methods return snapshot structs. Mutating the returned
// struct does not modify the underlying configuration.

// GuardConfig holds the editable-window defaults.
type GuardConfig struct {
	// TopLockLines is the number of leading lines protected when an
	// exercise has no literal top block.
	TopLockLines int

	// BottomSentinel marks the last editable line when an exercise has no
	// literal bottom block. Lines after it are protected. Empty disables
	// the scan.
	BottomSentinel string

	// TabWidth is the number of spaces a tab expands to when comparing
	// lines.
	TabWidth int
}

// Options converts the section to guard options.
func (g GuardConfig) Options() guard.Options {
	return guard.Options{
		TopLockLines:   g.TopLockLines,
		BottomSentinel: g.BottomSentinel,
		TabWidth:       g.TabWidth,
	}
}

// RunnerConfig configures the remote execution service.
type RunnerConfig struct {
	// Endpoint is the URL solutions are POSTed to.
	Endpoint string

	// Timeout bounds one run request.
	Timeout time.Duration
}

// CatalogConfig locates exercise definitions on disk.
type CatalogConfig struct {
	// Dir holds *.toml and *.json exercise files. Empty disables the catalog.
	Dir string

	// Watch reloads exercises when files in Dir change.
	Watch bool
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string
}

// Guard returns the guard section.
func (c *Config) Guard() GuardConfig {
	return GuardConfig{
		TopLockLines:   c.intOr("guard.topLockLines", guard.DefaultTopLockLines),
		BottomSentinel: c.stringOr("guard.bottomSentinel", guard.DefaultBottomSentinel),
		TabWidth:       c.intOr("guard.tabWidth", guard.DefaultTabWidth),
	}
}

// Runner returns the runner section.
func (c *Config) Runner() RunnerConfig {
	return RunnerConfig{
		Endpoint: c.stringOr("runner.endpoint", DefaultRunnerEndpoint),
		Timeout:  c.durationOr("runner.timeout", DefaultRunnerTimeout),
	}
}

// Catalog returns the catalog section.
func (c *Config) Catalog() CatalogConfig {
	return CatalogConfig{
		Dir:   c.stringOr("catalog.dir", ""),
		Watch: c.boolOr("catalog.watch", false),
	}
}

// Logging returns the logging section.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{
		Level: c.stringOr("logging.level", "info"),
	}
}

func (c *Config) intOr(path string, def int) int {
	if v, err := c.GetInt(path); err == nil {
		return v
	}
	return def
}

func (c *Config) stringOr(path, def string) string {
	if v, err := c.GetString(path); err == nil {
		return v
	}
	return def
}

func (c *Config) boolOr(path string, def bool) bool {
	if v, err := c.GetBool(path); err == nil {
		return v
	}
	return def
}

func (c *Config) durationOr(path string, def time.Duration) time.Duration {
	if v, err := c.GetDuration(path); err == nil {
		return v
	}
	return def
}
