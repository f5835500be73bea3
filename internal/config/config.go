// Package config loads and saves the medweek configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/medweek/internal/constants"
)

// EnvPrefix prefixes environment overrides, e.g. MEDWEEK_DATABASE.
const EnvPrefix = "MEDWEEK"

// RemindersConfig controls the `medweek remind` daemon.
type RemindersConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Resync is how often the daemon reloads schedules, as a Go duration ("5m").
	Resync     string `mapstructure:"resync" yaml:"resync"`
	DurationMs uint32 `mapstructure:"duration_ms" yaml:"duration_ms"`
}

// Config is the top-level application configuration.
type Config struct {
	// Database is a SQLite file path or a PostgreSQL connection string
	// without a password. Empty means the connection string is read from the
	// OS keyring, falling back to the default SQLite path.
	Database string `mapstructure:"database" yaml:"database"`

	// Timezone is an IANA name or "Local". It defines the week boundaries.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`

	// User is the fallback user id when nobody is signed in via the keyring.
	User string `mapstructure:"user" yaml:"user,omitempty"`

	Debug  bool   `mapstructure:"debug" yaml:"debug"`
	LogDir string `mapstructure:"log_dir" yaml:"log_dir,omitempty"`

	Reminders RemindersConfig `mapstructure:"reminders" yaml:"reminders"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone: constants.DefaultTimezone,
		Reminders: RemindersConfig{
			Enabled:    true,
			Resync:     constants.DefaultReminderResync.String(),
			DurationMs: constants.DefaultReminderDurationMs,
		},
	}
}

// Normalize fills in zero values so partially-filled files still behave.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = constants.DefaultTimezone
	}
	if _, err := time.ParseDuration(c.Reminders.Resync); err != nil {
		c.Reminders.Resync = constants.DefaultReminderResync.String()
	}
	if c.Reminders.DurationMs == 0 {
		c.Reminders.DurationMs = constants.DefaultReminderDurationMs
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ResyncInterval parses Reminders.Resync.
func (c *Config) ResyncInterval() time.Duration {
	d, err := time.ParseDuration(c.Reminders.Resync)
	if err != nil || d <= 0 {
		return constants.DefaultReminderResync
	}
	return d
}

// DatabasePath returns the configured database, or the default SQLite path.
func (c *Config) DatabasePath() string {
	if strings.TrimSpace(c.Database) == "" {
		return ExpandPath(constants.DefaultDBPath)
	}
	return ExpandPath(c.Database)
}

// ExpandPath expands a leading "~" to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Load reads configuration from the YAML file at path through viper, with
// MEDWEEK_* environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(ExpandPath(path))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("database", defaults.Database)
	v.SetDefault("timezone", defaults.Timezone)
	v.SetDefault("user", defaults.User)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("log_dir", defaults.LogDir)
	v.SetDefault("reminders.enabled", defaults.Reminders.Enabled)
	v.SetDefault("reminders.resync", defaults.Reminders.Resync)
	v.SetDefault("reminders.duration_ms", defaults.Reminders.DurationMs)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	path = ExpandPath(path)
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".medweek-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
