package config

import (
	"fmt"
	"sync/atomic"
)

// current is the process-wide configuration published by the CLI.
var current atomic.Pointer[Config]

// GetConfig returns the published configuration, or nil before SetConfig.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig publishes cfg as the process-wide configuration.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path with environment overrides and publishes the
// result. The published configuration is untouched on error.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("reload configuration: %w", err)
	}
	current.Store(cfg)
	return nil
}

// MustGetConfig is GetConfig that panics before SetConfig.
func MustGetConfig() *Config {
	cfg := current.Load()
	if cfg == nil {
		panic("config: no configuration published")
	}
	return cfg
}
