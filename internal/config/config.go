package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Index drivers.
const (
	IndexRediSearch = "redisearch"
	IndexBleve      = "bleve"
)

// Config holds the searchsync configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
	Store   StoreConfig   `yaml:"store"`
	Index   IndexConfig   `yaml:"index"`
	Sync    SyncConfig    `yaml:"sync"`
	Search  SearchConfig  `yaml:"search"`
	Models  []ModelConfig `yaml:"models"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds primary record store settings.
type StoreConfig struct {
	Driver           string   `yaml:"driver"` // redis, sqlite, postgres (default: sqlite)
	DSN              string   `yaml:"dsn"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// IndexConfig holds search index settings.
type IndexConfig struct {
	Driver          string   `yaml:"driver"` // redisearch, bleve (default: bleve)
	Addrs           []string `yaml:"addrs"`  // defaults to store.addrs
	Password        string   `yaml:"password"`
	BlevePath       string   `yaml:"bleve_path"` // empty keeps bleve indexes in memory
	DefaultPageSize int      `yaml:"default_page_size"`
	MaxPageSize     int      `yaml:"max_page_size"`
}

// SyncConfig holds synchronization engine settings.
type SyncConfig struct {
	RemoveRetryDelayMs int `yaml:"remove_retry_delay_ms"`
}

// SearchConfig holds search façade settings.
type SearchConfig struct {
	HydrateConcurrency int `yaml:"hydrate_concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates raw YAML.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreSQLite
	}
	if c.Store.Driver == StoreSQLite && c.Store.DSN == "" {
		c.Store.DSN = ":memory:"
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "searchsync:"
	}
	if c.Index.Driver == "" {
		c.Index.Driver = IndexBleve
	}
	if len(c.Index.Addrs) == 0 {
		c.Index.Addrs = c.Store.Addrs
		if c.Index.Password == "" {
			c.Index.Password = c.Store.Password
		}
	}
	if c.Index.DefaultPageSize <= 0 {
		c.Index.DefaultPageSize = 20
	}
	if c.Index.MaxPageSize <= 0 {
		c.Index.MaxPageSize = 100
	}
	if c.Sync.RemoveRetryDelayMs <= 0 {
		c.Sync.RemoveRetryDelayMs = 500
	}
	if c.Search.HydrateConcurrency <= 0 {
		c.Search.HydrateConcurrency = 8
	}
}

// Validate checks the configuration for correctness.
// Model schemas are validated at registration.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Store.Driver {
	case StoreRedis:
		if len(c.Store.Addrs) == 0 {
			return fmt.Errorf("store.addrs is required for driver %q", c.Store.Driver)
		}
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("store.driver must be %q, %q or %q, got %q",
			StoreRedis, StoreSQLite, StorePostgres, c.Store.Driver)
	}

	switch c.Index.Driver {
	case IndexRediSearch:
		if len(c.Index.Addrs) == 0 {
			return fmt.Errorf("index.addrs is required for driver %q", c.Index.Driver)
		}
	case IndexBleve:
	default:
		return fmt.Errorf("index.driver must be %q or %q, got %q", IndexRediSearch, IndexBleve, c.Index.Driver)
	}

	if c.Index.DefaultPageSize > c.Index.MaxPageSize {
		return fmt.Errorf("index.default_page_size %d exceeds index.max_page_size %d",
			c.Index.DefaultPageSize, c.Index.MaxPageSize)
	}

	seen := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("models[%d].name is required", i)
		}
		if _, ok := seen[m.Name]; ok {
			return fmt.Errorf("models[%d]: duplicate model %q", i, m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
