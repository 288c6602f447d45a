package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/example/revtrack/internal/spaced_repetition"
	"github.com/example/revtrack/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. REVTRACK_STORAGE_DRIVER
const EnvPrefix = "REVTRACK"

// StorageConfig selects the key-value backend
type StorageConfig struct {
	Driver  string `mapstructure:"driver"`   // sqlite3, postgres or memory
	DSN     string `mapstructure:"dsn"`      // postgres DSN or sqlite file
	DataDir string `mapstructure:"data_dir"` // where the default sqlite file lives
	Key     string `mapstructure:"key"`      // storage key of the app data blob
}

// ReminderConfig controls the daily reminder
type ReminderConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	AllowNotifications bool `mapstructure:"allow_notifications"` // answer to the permission prompt
}

// Config holds all runtime configuration.
// Values are populated from .revtrack.yaml, .env, REVTRACK_* env vars, and CLI flags.
type Config struct {
	Storage    StorageConfig  `mapstructure:"storage"`
	Recovery   string         `mapstructure:"recovery"`
	Intervals  []int          `mapstructure:"intervals"`
	CatalogDir string         `mapstructure:"catalog_dir"`
	CatalogURL string         `mapstructure:"catalog_url"`
	Timezone   string         `mapstructure:"timezone"`
	Reminder   ReminderConfig `mapstructure:"reminder"`
}

// Init loads env files, points viper at the config file (or the default
// .revtrack.yaml search path) and enables environment overrides. A missing
// default config file or .env is not an error.
func Init(configFile string, envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file: %w", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".revtrack")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	bindEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func bindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("storage.driver", "sqlite3")
	viper.SetDefault("storage.dsn", "")
	viper.SetDefault("storage.data_dir", "data")
	viper.SetDefault("storage.key", store.DefaultKey)
	viper.SetDefault("recovery", string(store.RecoveryReset))
	viper.SetDefault("intervals", spaced_repetition.DefaultIntervals)
	viper.SetDefault("catalog_dir", "subjects")
	viper.SetDefault("catalog_url", "")
	viper.SetDefault("timezone", "Local")
	viper.SetDefault("reminder.enabled", true)
	viper.SetDefault("reminder.allow_notifications", true)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be decoded structurally
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite3", "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if _, err := store.ParseRecoveryPolicy(c.Recovery); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Policy builds the interval policy
func (c Config) Policy() (spaced_repetition.IntervalPolicy, error) {
	return spaced_repetition.NewIntervalPolicy(c.Intervals)
}

// RecoveryPolicy returns the parsed recovery policy
func (c Config) RecoveryPolicy() store.RecoveryPolicy {
	p, _ := store.ParseRecoveryPolicy(c.Recovery)
	return p
}

// Location resolves the configured timezone used for "today"
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
