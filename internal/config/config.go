// Package config loads kanban settings from a .env file, environment
// variables, an optional config.yaml and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tgienger/kanban/internal/logger"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverTables   = "tables"
	DriverMemory   = "memory"
)

// Config holds all configuration sections.
type Config struct {
	Store   StoreConfig          `mapstructure:"store"`
	Cache   CacheConfig          `mapstructure:"cache"`
	Logging logger.LoggingConfig `mapstructure:"logging"`
}

// StoreConfig selects and configures the task store.
type StoreConfig struct {
	Driver   string         `mapstructure:"driver"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Tables   TablesConfig   `mapstructure:"tables"`
}

// SQLiteConfig holds the database file location. Empty means the XDG data dir.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig holds the connection string for a Postgres (or Supabase)
// tasks table.
type PostgresConfig struct {
	DSN     string `mapstructure:"dsn"`
	Migrate bool   `mapstructure:"migrate"`
}

// TablesConfig holds Azure Table Storage settings.
type TablesConfig struct {
	ConnectionString string `mapstructure:"connectionString"`
	Table            string `mapstructure:"table"`
	Partition        string `mapstructure:"partition"`
}

// CacheConfig enables the redis list cache when URL is set.
type CacheConfig struct {
	URL string `mapstructure:"url"`
	TTL int    `mapstructure:"ttl"` // in seconds
}

// Enabled reports whether a cache URL is configured.
func (c *CacheConfig) Enabled() bool {
	return c.URL != ""
}

// TTLDuration returns the cache TTL as a duration.
func (c *CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// DefaultLogPath returns the log file under the XDG state directory.
func DefaultLogPath() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "discard"
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "kanban", "kanban.log")
}

func defaultConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "kanban")
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite.path", "")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.migrate", false)
	v.SetDefault("store.tables.connectionString", "")
	v.SetDefault("store.tables.table", "tasks")
	v.SetDefault("store.tables.partition", "board")

	// empty URL disables the cache
	v.SetDefault("cache.url", "")
	v.SetDefault("cache.ttl", 30)

	// The TUI owns the terminal, so logs go to a file.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", DefaultLogPath())
}

// Option adjusts loaded settings before validation.
type Option func(v *viper.Viper)

// WithDriver forces the store driver, as the --driver flag does. An empty
// driver leaves the loaded value alone.
func WithDriver(driver string) Option {
	return func(v *viper.Viper) {
		if driver != "" {
			v.Set("store.driver", driver)
		}
	}
}

// Load reads configuration from the default locations.
func Load(opts ...Option) (*Config, error) {
	return LoadWithPath("", opts...)
}

// LoadWithPath reads configuration, searching configPath before the
// current directory and $XDG_CONFIG_HOME/kanban. Environment variables
// use the KANBAN_ prefix, e.g. KANBAN_STORE_DRIVER.
func LoadWithPath(configPath string, opts ...Option) (*Config, error) {
	// Store credentials usually live in .env; a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KANBAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not split camelCase keys.
	_ = v.BindEnv("store.tables.connectionString", "KANBAN_STORE_TABLES_CONNECTION_STRING", "AZURE_STORAGE_CONNECTION_STRING")
	_ = v.BindEnv("store.postgres.dsn", "KANBAN_STORE_POSTGRES_DSN", "DATABASE_URL")
	_ = v.BindEnv("logging.outputPath", "KANBAN_LOGGING_OUTPUT_PATH")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	if dir := defaultConfigDir(); dir != "" {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for _, opt := range opts {
		opt(v)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate checks the selected driver has what it needs.
func validate(cfg *Config) error {
	var errs []string

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	switch cfg.Store.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if cfg.Store.Postgres.DSN == "" {
			errs = append(errs, "store.postgres.dsn is required when store.driver is postgres")
		}
	case DriverTables:
		if cfg.Store.Tables.ConnectionString == "" {
			errs = append(errs, "store.tables.connectionString is required when store.driver is tables")
		}
		if cfg.Store.Tables.Table == "" {
			errs = append(errs, "store.tables.table is required when store.driver is tables")
		}
	default:
		errs = append(errs, "store.driver must be one of: sqlite, postgres, tables, memory")
	}

	if cfg.Cache.TTL < 0 {
		errs = append(errs, "cache.ttl must not be negative")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
