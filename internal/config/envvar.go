package config

import "os"

// Environment variable names for tasktree configuration.
const (
	EnvDir      = "TASKTREE_DIR" // Path to .tasktree directory
	EnvJSON     = "TT_JSON"      // Enable JSON output ("1" or "true")
	EnvLogLevel = "TT_LOG_LEVEL" // Override log.level
	EnvIDFormat = "TT_ID_FORMAT" // Override id.format
)

// ApplyEnvOverrides checks TT_LOG_LEVEL and TT_ID_FORMAT env vars
// and overrides the corresponding config values in memory.
// These overrides are not persisted to the config file.
func ApplyEnvOverrides(s Store) {
	if level := os.Getenv(EnvLogLevel); level != "" {
		s.SetInMemory(KeyLogLevel, level)
	}
	if format := os.Getenv(EnvIDFormat); format != "" {
		s.SetInMemory(KeyIDFormat, format)
	}
}

// EnvBool reports whether the named variable is set to "1" or "true".
func EnvBool(name string) bool {
	v := os.Getenv(name)
	return v == "1" || v == "true"
}
