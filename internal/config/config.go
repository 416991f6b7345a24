// Package config loads application settings from defaults, an optional
// YAML file, FAREFIT_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/abhisek/farefit/internal/store"
)

// Config is the application configuration.
type Config struct {
	DB       string      `mapstructure:"db"`
	User     string      `mapstructure:"user"`
	Timezone string      `mapstructure:"timezone"`
	Log      LogConfig   `mapstructure:"log"`
	Jobs     JobsConfig  `mapstructure:"jobs"`
	Coach    CoachConfig `mapstructure:"coach"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JobsConfig holds the cron specs of the scheduled jobs.
type JobsConfig struct {
	Daily   string `mapstructure:"daily"`
	Weekly  string `mapstructure:"weekly"`
	Monthly string `mapstructure:"monthly"`
}

// CoachConfig controls the AI coach.
type CoachConfig struct {
	History int `mapstructure:"history"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	if p, err := store.DefaultDBPath(); err == nil {
		v.SetDefault("db", p)
	}
	v.SetDefault("user", "")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log.level", "warning")
	v.SetDefault("log.format", "text")
	v.SetDefault("jobs.daily", "5 0 * * *")
	v.SetDefault("jobs.weekly", "0 6 * * 1")
	v.SetDefault("jobs.monthly", "0 0 1 * *")
	v.SetDefault("coach.history", 10)
}

// Load reads configuration into a Config. path names an explicit config
// file; when empty, farefit.yaml is looked up in the user config directory
// and the working directory, and a missing file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("farefit")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "farefit"))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("FAREFIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the timezone, log settings and cron specs.
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("db must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	for name, spec := range map[string]string{
		"jobs.daily":   c.Jobs.Daily,
		"jobs.weekly":  c.Jobs.Weekly,
		"jobs.monthly": c.Jobs.Monthly,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.Coach.History < 0 {
		return fmt.Errorf("coach.history must not be negative")
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}
