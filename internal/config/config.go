package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor ITEMCODE_CONFIG is set.
const DefaultPath = "config/itemcode.yaml"

// PathEnv overrides DefaultPath.
const PathEnv = "ITEMCODE_CONFIG"

// Stash backends.
const (
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the itemcode tool.
type Config struct {
	// Game whose codes are read and written: bl2, tps or aodk.
	Game     string `yaml:"game"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Catalog is an optional part list (one object path per line). When set, inspect
	// reports which replacement parts are installed.
	Catalog string `yaml:"catalog"`

	Dictionary DictionaryConfig `yaml:"dictionary"`
	Batch      BatchConfig      `yaml:"batch"`
	Stash      StashConfig      `yaml:"stash"`
}

// DictionaryConfig points at an external extension block dictionary.
// Empty Path means the embedded one.
type DictionaryConfig struct {
	Path string `yaml:"path"`
	Hash string `yaml:"hash"` // hex BLAKE2b-256, checked on load
}

// BatchConfig tunes batch inspection.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// StashConfig selects where saved codes live.
type StashConfig struct {
	Backend  string         `yaml:"backend"` // pebble or postgres
	Dir      string         `yaml:"dir"`     // pebble data directory
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Default returns Config with sensible defaults.
func Default() Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return Config{
		Game:     "bl2",
		LogLevel: "info",
		Batch: BatchConfig{
			Workers: 4,
		},
		Stash: StashConfig{
			Backend: BackendPebble,
			Dir:     filepath.Join(dir, "itemcode", "stash"),
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "itemcode",
				Password: "itemcode",
				DBName:   "itemcode",
				SSLMode:  "disable",
			},
		},
	}
}

// Path returns the config path: explicit flag value, then ITEMCODE_CONFIG, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	return DefaultPath
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that have a closed set of options.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.Stash.Backend {
	case BackendPebble, BackendPostgres:
	default:
		return fmt.Errorf("unknown stash backend %q", c.Stash.Backend)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch.workers must be positive, got %d", c.Batch.Workers)
	}
	return nil
}
