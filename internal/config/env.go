package config

import "os"

// loadFromEnv overrides config from TASKER_* environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKER_FILE"); v != "" {
		cfg.TaskFile = v
	}
	if v := os.Getenv("TASKER_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("TASKER_SHOW_INDEX"); v != "" {
		cfg.ShowIndex = boolFromString(v)
	}

	// Logging configuration
	if v := os.Getenv("TASKER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TASKER_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
	}
	if v := os.Getenv("TASKER_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
	}
}
