// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.tasker/tasker.toml or the OS config directory)
// 3. Project config file (tasker.toml or .tasker.toml in the working directory)
// 4. Environment variables (TASKER_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// Example tasker.toml:
//
//	task_file = "~/notes/tasks.txt"
//	format = "lines"
//	show_index = true
//	log_level = "warn"
package config
