package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/tasker-go/internal/logging"
	"github.com/nibzard/tasker-go/internal/storage"
)

// Default values.
const (
	DefaultFormat    = string(storage.FormatLines)
	DefaultShowIndex = true
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the effective tasker configuration.
type Config struct {
	// TaskFile is the backing file. Empty means the format's default name.
	TaskFile  string `toml:"task_file"`
	Format    string `toml:"format"`
	ShowIndex bool   `toml:"show_index"`

	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// WorkDir anchors relative task paths. Set during Load.
	WorkDir string `toml:"-"`
}

// StorageFormat returns the parsed storage format.
func (c *Config) StorageFormat() storage.Format {
	f, err := storage.ParseFormat(c.Format)
	if err != nil {
		return storage.FormatLines
	}
	return f
}

// LogOptions returns the logger options described by the config.
func (c *Config) LogOptions() logging.Options {
	opts := logging.DefaultOptions()
	if c.LogLevel != "" {
		opts.Level = c.LogLevel
	}
	if c.LogFormat != "" {
		opts.Format = c.LogFormat
	}
	opts.Timestamps = c.LogTimestamps
	opts.Caller = c.LogCaller
	return opts
}

func setDefaults(cfg *Config) {
	cfg.Format = DefaultFormat
	cfg.ShowIndex = DefaultShowIndex
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// findProjectConfigFile looks for tasker.toml in the current directory.
func findProjectConfigFile() string {
	names := []string{"tasker.toml", ".tasker.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile checks ~/.tasker/tasker.toml first, then the OS
// config directory.
func findUserConfigFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".tasker", "tasker.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "tasker", "tasker.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
