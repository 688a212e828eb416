package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "STATUSBOARD_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigBytes parses configuration from YAML bytes, applies defaults and
// validates the result.
func LoadConfigBytes(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention STATUSBOARD_SECTION_FIELD (e.g., STATUSBOARD_REGISTRY_BACKEND).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		var err error
		cfg, err = LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Values that fail to parse are ignored.
func applyEnvOverrides(cfg *Config) {
	// Pipeline overrides
	envInt("PIPELINE_MAX_DEPTH", &cfg.Pipeline.MaxDepth)
	envInt("PIPELINE_MAX_LENGTH", &cfg.Pipeline.MaxLength)
	envInt("PIPELINE_MAX_OUTPUT", &cfg.Pipeline.MaxOutput)
	envDuration("PIPELINE_ALIVE_WINDOW", &cfg.Pipeline.AliveWindow)

	// Registry overrides
	envString("REGISTRY_BACKEND", &cfg.Registry.Backend)
	envString("REGISTRY_SQLITE_PATH", &cfg.Registry.SQLite.Path)
	envString("REGISTRY_SQLITE_DRIVER", &cfg.Registry.SQLite.Driver)
	envString("REGISTRY_SQLITE_JOURNAL_MODE", &cfg.Registry.SQLite.JournalMode)
	envDuration("REGISTRY_SQLITE_BUSY_TIMEOUT", &cfg.Registry.SQLite.BusyTimeout)

	// Template overrides
	envString("TEMPLATES_PATH", &cfg.Templates.Path)
	envBool("TEMPLATES_WATCH", &cfg.Templates.Watch)
	envDuration("TEMPLATES_DEBOUNCE", &cfg.Templates.Debounce)
	envString("TEMPLATES_DEFAULT_TEMPLATE", &cfg.Templates.DefaultTemplate)
	envBool("TEMPLATES_GIT_ENABLED", &cfg.Templates.Git.Enabled)
	envString("TEMPLATES_GIT_REPOSITORY", &cfg.Templates.Git.Repository)
	envString("TEMPLATES_GIT_BRANCH", &cfg.Templates.Git.Branch)
	envString("TEMPLATES_GIT_FILE", &cfg.Templates.Git.File)
	envString("TEMPLATES_GIT_AUTH_TYPE", &cfg.Templates.Git.Auth.Type)
	envString("TEMPLATES_GIT_AUTH_TOKEN", &cfg.Templates.Git.Auth.Token)
	envDuration("TEMPLATES_GIT_POLL_INTERVAL", &cfg.Templates.Git.PollInterval)

	// Retention overrides
	envBoolPtr("RETENTION_ENABLED", &cfg.Retention.Enabled)
	envString("RETENTION_SCHEDULE", &cfg.Retention.Schedule)
	envDuration("RETENTION_MAX_AGE", &cfg.Retention.MaxAge)

	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envBool("SERVER_TLS_ENABLED", &cfg.Server.TLS.Enabled)
	envString("SERVER_TLS_CERT_FILE", &cfg.Server.TLS.CertFile)
	envString("SERVER_TLS_KEY_FILE", &cfg.Server.TLS.KeyFile)
	envString("SERVER_TLS_MIN_VERSION", &cfg.Server.TLS.MinVersion)
	envBool("SERVER_AUTH_ENABLED", &cfg.Server.Auth.Enabled)
	envAPIKeys("SERVER_AUTH_KEYS", &cfg.Server.Auth.Keys)
	envBool("SERVER_RATE_LIMIT_ENABLED", &cfg.Server.RateLimit.Enabled)
	envInt("SERVER_RATE_LIMIT_HEARTBEATS_PER_MINUTE", &cfg.Server.RateLimit.HeartbeatsPerMinute)
	envInt("SERVER_RATE_LIMIT_BURST", &cfg.Server.RateLimit.Burst)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	envBoolPtr("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envString("TELEMETRY_METRICS_NAMESPACE", &cfg.Telemetry.Metrics.Namespace)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envBool("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envBoolPtr(key string, dst **bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = &b
		}
	}
}

// envAPIKeys replaces dst with a comma separated list of name=key pairs.
func envAPIKeys(key string, dst *[]APIKeyConfig) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return
	}
	var keys []APIKeyConfig
	for pair := range strings.SplitSeq(val, ",") {
		name, k, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		keys = append(keys, APIKeyConfig{Name: name, Key: k})
	}
	*dst = keys
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
