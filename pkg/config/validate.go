package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"

	"machinehub/statusboard/pkg/mhpl/parser"
)

// MaxPipelineDepth is the largest accepted pipeline.max_depth.
const MaxPipelineDepth = 1024

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "registry.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// HasField returns true if any error refers to the given field.
func (e ValidationError) HasField(field string) bool {
	for _, err := range e.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validatePipeline(&cfg.Pipeline)...)
	errs = append(errs, validateRegistry(&cfg.Registry)...)
	errs = append(errs, validateTemplates(&cfg.Templates, &cfg.Pipeline)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validatePipeline(cfg *PipelineConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxDepth < 1 || cfg.MaxDepth > MaxPipelineDepth {
		errs = append(errs, FieldError{
			Field:   "pipeline.max_depth",
			Message: fmt.Sprintf("must be between 1 and %d", MaxPipelineDepth),
		})
	}
	if cfg.MaxLength < 1 {
		errs = append(errs, FieldError{
			Field:   "pipeline.max_length",
			Message: "must be positive",
		})
	}
	if cfg.MaxOutput < 1 {
		errs = append(errs, FieldError{
			Field:   "pipeline.max_output",
			Message: "must be positive",
		})
	}
	if cfg.AliveWindow <= 0 {
		errs = append(errs, FieldError{
			Field:   "pipeline.alive_window",
			Message: "must be positive",
		})
	}

	return errs
}

func validateRegistry(cfg *RegistryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
		return nil
	case "sqlite":
	default:
		return []FieldError{{
			Field:   "registry.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory' or 'sqlite'", cfg.Backend),
		}}
	}

	if cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "registry.sqlite.path",
			Message: "path is required for the sqlite backend",
		})
	}
	if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
		errs = append(errs, FieldError{
			Field:   "registry.sqlite.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
		})
	}
	if cfg.SQLite.JournalMode != "wal" && cfg.SQLite.JournalMode != "delete" {
		errs = append(errs, FieldError{
			Field:   "registry.sqlite.journal_mode",
			Message: fmt.Sprintf("invalid journal mode %q: must be 'wal' or 'delete'", cfg.SQLite.JournalMode),
		})
	}
	if cfg.SQLite.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "registry.sqlite.busy_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateTemplates(cfg *TemplatesConfig, pipeline *PipelineConfig) []FieldError {
	var errs []FieldError

	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "templates.debounce",
			Message: "must not be negative",
		})
	}

	if cfg.Git.Enabled {
		errs = append(errs, validateGitSource(&cfg.Git)...)
	}

	p := parser.NewParser().WithMaxDepth(pipeline.MaxDepth).WithMaxLength(pipeline.MaxLength)
	if _, err := p.Parse(cfg.DefaultTemplate); err != nil {
		errs = append(errs, FieldError{
			Field:   "templates.default_template",
			Message: err.Error(),
		})
	}

	return errs
}

func validateGitSource(cfg *GitSourceConfig) []FieldError {
	var errs []FieldError

	if cfg.Repository == "" {
		errs = append(errs, FieldError{
			Field:   "templates.git.repository",
			Message: "repository is required when git is enabled",
		})
	}
	if cfg.File == "" || filepath.IsAbs(cfg.File) || strings.HasPrefix(filepath.Clean(cfg.File), "..") {
		errs = append(errs, FieldError{
			Field:   "templates.git.file",
			Message: fmt.Sprintf("invalid file %q: must be a relative path inside the repository", cfg.File),
		})
	}
	if cfg.Depth < 0 {
		errs = append(errs, FieldError{
			Field:   "templates.git.depth",
			Message: "must not be negative",
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "templates.git.timeout",
			Message: "must be positive",
		})
	}

	switch cfg.Auth.Type {
	case "none":
	case "token":
		if cfg.Auth.Token == "" {
			errs = append(errs, FieldError{
				Field:   "templates.git.auth.token",
				Message: "token is required for token auth",
			})
		}
	case "ssh":
		if cfg.Auth.SSHKeyPath == "" {
			errs = append(errs, FieldError{
				Field:   "templates.git.auth.ssh_key_path",
				Message: "ssh_key_path is required for ssh auth",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "templates.git.auth.type",
			Message: fmt.Sprintf("invalid auth type %q: must be 'none', 'token' or 'ssh'", cfg.Auth.Type),
		})
	}

	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "retention.schedule",
			Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err),
		})
	}
	if cfg.MaxAge <= 0 {
		errs = append(errs, FieldError{
			Field:   "retention.max_age",
			Message: "must be positive",
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid address %q: %v", cfg.ListenAddress, err),
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "must not be negative",
		})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{Field: "server.tls.cert_file", Message: "required when TLS is enabled"})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{Field: "server.tls.key_file", Message: "required when TLS is enabled"})
		}
		if cfg.TLS.MinVersion != "1.2" && cfg.TLS.MinVersion != "1.3" {
			errs = append(errs, FieldError{
				Field:   "server.tls.min_version",
				Message: fmt.Sprintf("invalid version %q (must be 1.2 or 1.3)", cfg.TLS.MinVersion),
			})
		}
		if cfg.TLS.ReloadInterval < 0 {
			errs = append(errs, FieldError{Field: "server.tls.reload_interval", Message: "must not be negative"})
		}
	}

	if cfg.Auth.Enabled {
		if len(cfg.Auth.Keys) == 0 {
			errs = append(errs, FieldError{Field: "server.auth.keys", Message: "at least one key is required when auth is enabled"})
		}
		seen := make(map[string]bool, len(cfg.Auth.Keys))
		for i, k := range cfg.Auth.Keys {
			field := fmt.Sprintf("server.auth.keys[%d]", i)
			if k.Name == "" {
				errs = append(errs, FieldError{Field: field + ".name", Message: "required"})
			}
			if k.Key == "" {
				errs = append(errs, FieldError{Field: field + ".key", Message: "required"})
			} else if seen[k.Key] {
				errs = append(errs, FieldError{Field: field + ".key", Message: "duplicate key"})
			}
			seen[k.Key] = true
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.HeartbeatsPerMinute <= 0 {
			errs = append(errs, FieldError{Field: "server.rate_limit.heartbeats_per_minute", Message: "must be positive"})
		}
		if cfg.RateLimit.Burst <= 0 {
			errs = append(errs, FieldError{Field: "server.rate_limit.burst", Message: "must be positive"})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.IsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never' or 'ratio'", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "must be between 0.0 and 1.0",
			})
		}
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: "tracing endpoint is required when tracing is enabled",
			})
		}
	}

	return errs
}
