package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FACTORY"

// ConfigFileEnv names the environment variable holding an optional config file path.
const ConfigFileEnv = "FACTORY_CONFIG"

// Config holds all factory configuration
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Surreal  SurrealConfig  `mapstructure:"surreal"`
	Sequence SequenceConfig `mapstructure:"sequence"`
	Stub     StubConfig     `mapstructure:"stub"`
	Log      LogConfig      `mapstructure:"log"`
}

// StoreConfig selects the object store used by build and create
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SurrealConfig holds SurrealDB connection settings
type SurrealConfig struct {
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Database  string `mapstructure:"database"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
}

// SequenceConfig holds sequence defaults
type SequenceConfig struct {
	Start int `mapstructure:"start"`
}

// StubConfig holds stub strategy defaults
type StubConfig struct {
	IDStart int64 `mapstructure:"id_start"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Store drivers.
const (
	DriverMemory  = "memory"
	DriverSQLite  = "sqlite"
	DriverSurreal = "surreal"
)

// Load reads configuration from the environment and, when FACTORY_CONFIG is
// set, from that file. Environment variables win over the file.
func Load() (*Config, error) {
	v := newViper()
	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return decode(v)
}

// LoadFrom reads configuration of the given format ("yaml", "json", "toml")
// from r, with the environment layered on top.
func LoadFrom(r io.Reader, format string) (*Config, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.sqlite_path", "factory.db")
	v.SetDefault("surreal.host", "localhost")
	v.SetDefault("surreal.port", "8000")
	v.SetDefault("surreal.namespace", "factory")
	v.SetDefault("surreal.database", "test")
	v.SetDefault("surreal.user", "root")
	v.SetDefault("surreal.password", "root")
	v.SetDefault("sequence.start", 1)
	v.SetDefault("stub.id_start", 1000)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("FACTORY_STORE_SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverSurreal:
		if c.Surreal.Host == "" {
			errs = append(errs, errors.New("FACTORY_SURREAL_HOST is required for the surreal driver"))
		}
		if c.Surreal.Port == "" {
			errs = append(errs, errors.New("FACTORY_SURREAL_PORT is required for the surreal driver"))
		}
		if c.Surreal.Namespace == "" {
			errs = append(errs, errors.New("FACTORY_SURREAL_NAMESPACE is required for the surreal driver"))
		}
		if c.Surreal.Database == "" {
			errs = append(errs, errors.New("FACTORY_SURREAL_DATABASE is required for the surreal driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("FACTORY_STORE_DRIVER must be 'memory', 'sqlite', or 'surreal', got '%s'", c.Store.Driver))
	}

	if c.Stub.IDStart < 0 {
		errs = append(errs, errors.New("FACTORY_STUB_ID_START must not be negative"))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("FACTORY_LOG_FORMAT must be 'text' or 'json', got '%s'", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Logger builds the slog logger described by the log settings, writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("FACTORY_LOG_LEVEL must be 'debug', 'info', 'warn', or 'error', got '%s'", s)
	}
	return level, nil
}
