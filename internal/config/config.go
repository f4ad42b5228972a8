// Package config handles configuration loading and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Default values.
const (
	DefaultDataDir    = "~/.taskstats"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = LogFormatText
	DefaultHoursWeeks = 12
	DefaultAddr       = "127.0.0.1:8080"
)

// Environment variables that override file values.
const (
	EnvConfig     = "TASKSTATS_CONFIG"
	EnvDataDir    = "TASKSTATS_DATA_DIR"
	EnvLogLevel   = "TASKSTATS_LOG_LEVEL"
	EnvLogFormat  = "TASKSTATS_LOG_FORMAT"
	EnvHoursWeeks = "TASKSTATS_HOURS_WEEKS"
	EnvAddr       = "TASKSTATS_ADDR"
)

// Log formats accepted by log_format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the full configuration for taskstats.
type Config struct {
	// DataDir holds one task directory per project.
	DataDir  string `toml:"data_dir"`
	LogLevel string `toml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	// HoursWeeks is how many trailing weeks the hours rollup keeps.
	HoursWeeks int    `toml:"hours_weeks"`
	Addr       string `toml:"addr"`
}

// Overrides carries flag values; empty or zero fields are ignored.
type Overrides struct {
	DataDir   string
	LogLevel  string
	LogFormat string
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		DataDir:    DefaultDataDir,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
		HoursWeeks: DefaultHoursWeeks,
		Addr:       DefaultAddr,
	}
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (path argument, $TASKSTATS_CONFIG, or the user config dir)
// 3. Environment variables
// 4. Flag overrides
func Load(path string, overrides Overrides) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv(EnvConfig); env != "" {
			path, explicit = env, true
		} else {
			path = defaultConfigPath()
		}
	}

	if path != "" {
		if err := loadFile(cfg, path, explicit); err != nil {
			return nil, err
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if overrides.DataDir != "" {
		cfg.DataDir = overrides.DataDir
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.LogFormat != "" {
		cfg.LogFormat = overrides.LogFormat
	}

	cfg.DataDir = expandPath(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes a TOML file onto cfg. A missing file is only an error
// when the path was given explicitly.
func loadFile(cfg *Config, path string, explicit bool) error {
	path = expandPath(path)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvHoursWeeks); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHoursWeeks, err)
		}
		cfg.HoursWeeks = n
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.HoursWeeks < 1 {
		return fmt.Errorf("hours_weeks must be at least 1, got %d", c.HoursWeeks)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("log_format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// Level returns the parsed log level. Call after Validate.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "taskstats", "config.toml")
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
