// Package config provides configuration management for tt.
// It supports loading configuration from compiled defaults, a TOML
// file, and environment variables, in that order of increasing priority.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kandev/tt/internal/errs"
	"github.com/kandev/tt/internal/logging"
)

// Config holds all configuration recognized by tt.
type Config struct {
	DatabasePath      string         `mapstructure:"database_path"`
	AttentionWindowMS int64          `mapstructure:"attention_window_ms"`
	AgentTimeoutMS    int64          `mapstructure:"agent_timeout_ms"`
	Logging           logging.Config `mapstructure:"logging"`
}

// setDefaults configures compiled-in defaults for all options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", defaultDatabasePath())
	v.SetDefault("attention_window_ms", 60_000)
	v.SetDefault("agent_timeout_ms", 1_800_000)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output_path", "stdout")
}

// Load reads configuration from the default config file location,
// environment variables, and defaults.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration, searching configDir (if non-empty)
// for config.toml ahead of the default search paths.
func LoadWithPath(configDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(defaultConfigDir())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errs.New(errs.ConfigInvalid, "config.Load", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.New(errs.ConfigInvalid, "config.Load", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, errs.New(errs.ConfigInvalid, "config.Load", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	var problems []string
	if cfg.AttentionWindowMS <= 0 {
		problems = append(problems, "attention_window_ms must be positive")
	}
	if cfg.AgentTimeoutMS <= 0 {
		problems = append(problems, "agent_timeout_ms must be positive")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		problems = append(problems, "logging.level must be one of: debug, info, warn, error")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

// defaultConfigDir returns the directory config.toml is read from by
// default, following the XDG base directory convention.
func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tt")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tt"
	}
	return filepath.Join(home, ".config", "tt")
}

// defaultDataDir returns the directory tt's database and sync log live
// in by default, following the XDG base directory convention.
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "tt")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/share/tt"
	}
	return filepath.Join(home, ".local", "share", "tt")
}

// StateDir returns the directory tt's hook log and ingest manifests
// live in by default, following the XDG base directory convention.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "tt")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".local/state/tt"
	}
	return filepath.Join(home, ".local", "state", "tt")
}

func defaultDatabasePath() string {
	return filepath.Join(defaultDataDir(), "tt.db")
}
