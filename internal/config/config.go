package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dshills/fenceline/internal/config/loader"
)

// Defaults for settings without a guard package counterpart.
const (
	DefaultRunnerEndpoint = "http://localhost:8080/api/run"
	DefaultRunnerTimeout  = 10 * time.Second
)

// ErrFileNotFound indicates an explicitly requested config file is missing.
var ErrFileNotFound = errors.New("config file not found")

// Config provides access to the merged configuration.
type Config struct {
	mu     sync.RWMutex
	merged map[string]any

	file      string
	fs        loader.FileSystem
	envPrefix string
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the TOML file to load. The file must exist.
func WithFile(path string) Option {
	return func(c *Config) {
		c.file = path
	}
}

// WithFS sets the file system used to read config files.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix. An empty prefix
// disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// New creates a Config holding the defaults. Call Load to read the file and
// environment layers.
func New(opts ...Option) *Config {
	c := &Config{
		merged:    defaultConfig(),
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns a Config holding only the built-in defaults.
func Default() *Config {
	return New(WithEnvPrefix(""))
}

// Load reads every layer and validates the result. On error the previous
// configuration is kept.
func (c *Config) Load(_ context.Context) error {
	merged := defaultConfig()

	if c.file != "" {
		if _, err := c.fs.Stat(c.file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, c.file)
			}
			return err
		}
		fileConfig, err := loader.NewTOMLLoaderWithFS(c.fs, c.file).Load()
		if err != nil {
			return err
		}
		merged = loader.DeepMerge(merged, fileConfig)
	}

	if c.envPrefix != "" {
		envConfig, err := loader.NewEnvLoader(c.envPrefix).Load()
		if err != nil {
			return fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, envConfig)
	}

	next := &Config{merged: merged}
	if err := next.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.merged = merged
	c.mu.Unlock()
	return nil
}

// Validate checks every known setting.
func (c *Config) Validate() error {
	var errs []error

	if v, err := c.GetInt("guard.topLockLines"); err != nil {
		errs = append(errs, settingError("guard.topLockLines", err))
	} else if v < 0 {
		errs = append(errs, invalid("guard.topLockLines", v, "must not be negative"))
	}
	if v, err := c.GetInt("guard.tabWidth"); err != nil {
		errs = append(errs, settingError("guard.tabWidth", err))
	} else if v <= 0 {
		errs = append(errs, invalid("guard.tabWidth", v, "must be positive"))
	}
	if _, err := c.GetString("guard.bottomSentinel"); err != nil {
		errs = append(errs, settingError("guard.bottomSentinel", err))
	}
	if v, err := c.GetString("runner.endpoint"); err != nil {
		errs = append(errs, settingError("runner.endpoint", err))
	} else if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		errs = append(errs, invalid("runner.endpoint", v, "must be an http(s) URL"))
	}
	if v, err := c.GetDuration("runner.timeout"); err != nil {
		errs = append(errs, settingError("runner.timeout", err))
	} else if v <= 0 {
		errs = append(errs, invalid("runner.timeout", v, "must be positive"))
	}
	if _, err := c.GetBool("catalog.watch"); err != nil && !errors.Is(err, ErrSettingNotFound) {
		errs = append(errs, settingError("catalog.watch", err))
	}
	if v, err := c.GetString("logging.level"); err != nil {
		errs = append(errs, settingError("logging.level", err))
	} else {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "warning", "error":
		default:
			errs = append(errs, invalid("logging.level", v, "unknown level"))
		}
	}
	return errors.Join(errs...)
}

func settingError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidValue, path, err)
}

// Get returns the value at the given path.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return getPath(c.merged, path)
}

// Set overrides the value at path. It is meant for command-line flags
// applied after Load; the value is not validated.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return setPath(c.merged, path, value)
}

// GetString returns a string value at the given path. Numbers and booleans
// are formatted, since environment values arrive typed.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int:
		return strconv.Itoa(val), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	}
	return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val == float64(int(val)) {
			return int(val), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration at the given path. Strings use
// time.ParseDuration syntax; bare integers count seconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: strconv.Quote(val)}
		}
		return d, nil
	case int64:
		return time.Duration(val) * time.Second, nil
	case int:
		return time.Duration(val) * time.Second, nil
	}
	return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"guard": map[string]any{
			"topLockLines":   2,
			"bottomSentinel": "println!",
			"tabWidth":       2,
		},
		"runner": map[string]any{
			"endpoint": DefaultRunnerEndpoint,
			"timeout":  DefaultRunnerTimeout,
		},
		"catalog": map[string]any{
			"dir":   "",
			"watch": false,
		},
		"logging": map[string]any{
			"level": "info",
		},
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return fmt.Errorf("%w: empty path", ErrSettingNotFound)
	}
	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return &TypeError{Path: path, Expected: "map", Actual: typeName(next)}
		}
		current = nextMap
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path, dropping empty segments.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' })
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []any:
		return "array"
	case map[string]any:
		return "map"
	}
	return fmt.Sprintf("%T", v)
}
