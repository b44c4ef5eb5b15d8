package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/dexter/internal/engine/cache"
)

// Environment variables recognised on top of the config file.
const (
	EnvHome       = "DEXTER_HOME"
	EnvAPIBaseURL = "DEXTER_API_BASE_URL"
	EnvCO2Dataset = "DEXTER_CO2_DATASET"
	EnvLogLevel   = "DEXTER_LOG_LEVEL"
	EnvLogFormat  = "DEXTER_LOG_FORMAT"
)

// Defaults for a fresh configuration.
const (
	DefaultAPIBaseURL     = "https://pokeapi.co/api/v2"
	DefaultAPITimeout     = 30 * time.Second
	DefaultUserAgent      = "dexter"
	DefaultPageSize       = 20
	DefaultFanoutLimit    = 8
	DefaultCO2Year        = 2023
	DefaultHighlightDelay = time.Second
	DefaultCO2Dataset     = "https://raw.githubusercontent.com/owid/co2-data/master/owid-co2-data.json"

	configFileName = "config.yaml"
	dirName        = ".dexter"
	outputTypeFile = "file"
)

// ErrUnknownKey is returned by Get and Set for keys that are not part of the
// configuration.
var ErrUnknownKey = errors.New("unknown config key")

// Duration is a time.Duration that reads either integer seconds or a Go
// duration string from YAML and writes the duration string back.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := cache.ParseWindow(strings.TrimSpace(node.Value))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the complete dexter configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	Query   QueryConfig   `yaml:"query"`
	CO2     CO2Config     `yaml:"co2"`
	Logging LoggingConfig `yaml:"logging"`

	// path is the file the configuration was loaded from.
	path string
}

// APIConfig configures the remote Pokémon API client.
type APIConfig struct {
	BaseURL   string   `yaml:"base_url"`
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	StaleTime Duration        `yaml:"stale_time"`
	GCTime    Duration        `yaml:"gc_time"`
	Disk      DiskCacheConfig `yaml:"disk"`
}

// DiskCacheConfig configures on-disk hydration of cached queries.
type DiskCacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
}

// QueryConfig configures the list/detail query layer.
type QueryConfig struct {
	PageSize    int `yaml:"page_size"`
	FanoutLimit int `yaml:"fanout_limit"`
}

// CO2Config configures the CO₂ table.
type CO2Config struct {
	Dataset        string   `yaml:"dataset"`
	DefaultYear    int      `yaml:"default_year"`
	HighlightDelay Duration `yaml:"highlight_delay"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// HomeDir returns the dexter state directory: $DEXTER_HOME or ~/.dexter.
func HomeDir() string {
	if env := os.Getenv(EnvHome); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), dirName)
	}
	return filepath.Join(home, dirName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(HomeDir(), configFileName)
}

// Default returns a configuration with every default applied and no file or
// environment input.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   DefaultAPIBaseURL,
			Timeout:   Duration(DefaultAPITimeout),
			UserAgent: DefaultUserAgent,
		},
		Cache: CacheConfig{
			StaleTime: Duration(cache.DefaultStaleTime),
			GCTime:    Duration(cache.DefaultGCTime),
			Disk: DiskCacheConfig{
				Enabled:   true,
				Directory: filepath.Join(HomeDir(), "cache"),
			},
		},
		Query: QueryConfig{
			PageSize:    DefaultPageSize,
			FanoutLimit: DefaultFanoutLimit,
		},
		CO2: CO2Config{
			Dataset:        DefaultCO2Dataset,
			DefaultYear:    DefaultCO2Year,
			HighlightDelay: Duration(DefaultHighlightDelay),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(HomeDir(), "logs", "dexter.log"),
		},
		path: Path(),
	}
}

// New loads the default config file and applies environment overrides.
// A missing or unreadable file yields defaults.
func New() *Config {
	cfg := Default()
	if err := cfg.loadFile(cfg.path); err != nil {
		log := GetLogger()
		log.Debug().
			Str("component", "config").
			Str("operation", "load").
			Err(err).
			Str("path", cfg.path).
			Msg("using default configuration")
	}
	cfg.applyEnv()
	return cfg
}

// Load reads path on top of the defaults and applies environment overrides.
// Unlike New, a missing or malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// ReadFile reads path on top of the defaults without environment overrides,
// so the result can be edited and saved back. A missing file yields defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path
	if err := cfg.loadFile(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables on the loaded values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvCO2Dataset); v != "" {
		c.CO2.Dataset = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	c.Cache.StaleTime = Duration(cache.GetStaleTimeFromEnv(c.Cache.StaleTime.Std()))
	c.Cache.GCTime = Duration(cache.GetGCTimeFromEnv(c.Cache.GCTime.Std()))
	c.Cache.Disk.Enabled = cache.GetDiskEnabledFromEnv(c.Cache.Disk.Enabled)
}

// Validate checks the values that would otherwise fail later at use sites.
func (c *Config) Validate() error {
	var errs []error
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url must not be empty"))
	}
	if c.Query.PageSize < 1 {
		errs = append(errs, fmt.Errorf("query.page_size must be at least 1, got %d", c.Query.PageSize))
	}
	if c.Query.FanoutLimit < 1 {
		errs = append(errs, fmt.Errorf("query.fanout_limit must be at least 1, got %d", c.Query.FanoutLimit))
	}
	if c.CO2.Dataset == "" {
		errs = append(errs, errors.New("co2.dataset must not be empty"))
	}
	return errors.Join(errs...)
}

// Save writes the configuration to its path, creating the directory.
func (c *Config) Save() error {
	return c.SaveTo(c.path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	c.path = path
	return nil
}

// FilePath returns the path the configuration was loaded from or will be
// saved to.
func (c *Config) FilePath() string {
	return c.path
}

// keyAccessors maps dotted keys to string renderings of their values.
func (c *Config) keyAccessors() map[string]func() string {
	return map[string]func() string{
		"api.base_url":         func() string { return c.API.BaseURL },
		"api.timeout":          func() string { return c.API.Timeout.Std().String() },
		"api.user_agent":       func() string { return c.API.UserAgent },
		"cache.stale_time":     func() string { return c.Cache.StaleTime.Std().String() },
		"cache.gc_time":        func() string { return c.Cache.GCTime.Std().String() },
		"cache.disk.enabled":   func() string { return strconv.FormatBool(c.Cache.Disk.Enabled) },
		"cache.disk.directory": func() string { return c.Cache.Disk.Directory },
		"query.page_size":      func() string { return strconv.Itoa(c.Query.PageSize) },
		"query.fanout_limit":   func() string { return strconv.Itoa(c.Query.FanoutLimit) },
		"co2.dataset":          func() string { return c.CO2.Dataset },
		"co2.default_year":     func() string { return strconv.Itoa(c.CO2.DefaultYear) },
		"co2.highlight_delay":  func() string { return c.CO2.HighlightDelay.Std().String() },
		"logging.level":        func() string { return c.Logging.Level },
		"logging.format":       func() string { return c.Logging.Format },
		"logging.file":         func() string { return c.Logging.File },
	}
}

// Keys returns every dotted key in sorted order.
func (c *Config) Keys() []string {
	acc := c.keyAccessors()
	keys := make([]string, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string value of a dotted key such as "cache.stale_time".
func (c *Config) Get(key string) (string, error) {
	fn, ok := c.keyAccessors()[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return fn(), nil
}

// Set assigns a dotted key from its string form.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "api.base_url":
		c.API.BaseURL = value
	case "api.timeout":
		err = setDuration(&c.API.Timeout, value)
	case "api.user_agent":
		c.API.UserAgent = value
	case "cache.stale_time":
		err = setDuration(&c.Cache.StaleTime, value)
	case "cache.gc_time":
		err = setDuration(&c.Cache.GCTime, value)
	case "cache.disk.enabled":
		c.Cache.Disk.Enabled, err = strconv.ParseBool(value)
	case "cache.disk.directory":
		c.Cache.Disk.Directory = value
	case "query.page_size":
		c.Query.PageSize, err = strconv.Atoi(value)
	case "query.fanout_limit":
		c.Query.FanoutLimit, err = strconv.Atoi(value)
	case "co2.dataset":
		c.CO2.Dataset = value
	case "co2.default_year":
		c.CO2.DefaultYear, err = strconv.Atoi(value)
	case "co2.highlight_delay":
		err = setDuration(&c.CO2.HighlightDelay, value)
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "logging.file":
		c.Logging.File = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

func setDuration(dst *Duration, value string) error {
	d, err := cache.ParseWindow(value)
	if err != nil {
		return err
	}
	*dst = Duration(d)
	return nil
}

var (
	globalConfig   *Config    //nolint:gochecknoglobals // Loaded once per process
	globalConfigMu sync.Mutex //nolint:gochecknoglobals // Guards globalConfig
)

// GetGlobalConfig returns the process configuration, loading it on first use.
func GetGlobalConfig() *Config {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	if globalConfig == nil {
		globalConfig = New()
	}
	return globalConfig
}

// SetGlobalConfig replaces the process configuration.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalConfigForTest clears the cached process configuration so the
// next GetGlobalConfig reloads it from the current environment.
func ResetGlobalConfigForTest() {
	SetGlobalConfig(nil)
}
