package config

import (
	"path/filepath"
	"time"
)

// Config is the root configuration structure for statusboard.
type Config struct {
	// Pipeline contains template language limits.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Registry selects and configures the device registry backend.
	Registry RegistryConfig `yaml:"registry"`

	// Templates configures the fallback template file.
	Templates TemplatesConfig `yaml:"templates"`

	// Retention configures heartbeat log pruning.
	Retention RetentionConfig `yaml:"retention"`

	// Server configures the HTTP listener used by "serve".
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PipelineConfig contains template language limits.
type PipelineConfig struct {
	// MaxDepth is the maximum nesting of function calls.
	// Default: 32
	MaxDepth int `yaml:"max_depth"`

	// MaxLength is the maximum template size in bytes.
	// Default: 65536
	MaxLength int `yaml:"max_length"`

	// MaxOutput caps string repetition results in bytes.
	// Default: 65536
	MaxOutput int `yaml:"max_output"`

	// AliveWindow is how recent a heartbeat must be to count as alive.
	// Default: 24h
	AliveWindow time.Duration `yaml:"alive_window"`
}

// RegistryConfig selects the device registry backend.
type RegistryConfig struct {
	// Backend is "memory" or "sqlite".
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig configures the SQLite registry.
type SQLiteConfig struct {
	// Path is the database file.
	// Default: "data/statusboard.db"
	Path string `yaml:"path"`

	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// JournalMode is "wal" or "delete".
	// Default: "wal"
	JournalMode string `yaml:"journal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// TemplatesConfig configures the template file.
type TemplatesConfig struct {
	// Path is the YAML template file. A missing file is not an error; only
	// DefaultTemplate is served until it appears.
	// Default: "templates.yaml"
	Path string `yaml:"path"`

	// Watch reloads the file when it changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce delays reloads after bursts of file events.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`

	// DefaultTemplate is used when neither the device nor the file
	// provides one.
	// Default: "Alive Device: #alives() / #devices()"
	DefaultTemplate string `yaml:"default_template"`

	// Git serves the template file from a Git repository instead of Path.
	Git GitSourceConfig `yaml:"git"`
}

// FilePath returns the template file to read: the file inside the Git
// checkout when Git is enabled, otherwise Path.
func (t TemplatesConfig) FilePath() string {
	if t.Git.Enabled {
		return filepath.Join(t.Git.LocalPath, filepath.FromSlash(t.Git.File))
	}
	return t.Path
}

// GitSourceConfig configures a Git-hosted template file.
type GitSourceConfig struct {
	// Enabled clones Repository and reads File from the checkout.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Repository URL (HTTPS, SSH or a local path).
	// Example: "https://github.com/example/statusboard-templates.git"
	Repository string `yaml:"repository"`

	// Branch to track.
	// Default: "main"
	Branch string `yaml:"branch"`

	// File is the template file path inside the repository.
	// Default: "templates.yaml"
	File string `yaml:"file"`

	// Auth configures Git authentication.
	Auth GitAuthConfig `yaml:"auth"`

	// PollInterval is how often "serve" pulls for new commits. A negative
	// value disables polling; the checkout is read once at startup.
	// Default: 1m
	PollInterval time.Duration `yaml:"poll_interval"`

	// Timeout bounds each clone or pull.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Depth limits clone history; 0 clones the full history.
	// Default: 0
	Depth int `yaml:"depth"`

	// LocalPath is where the repository is cloned.
	// Default: "data/templates-git"
	LocalPath string `yaml:"local_path"`
}

// GitAuthConfig configures Git authentication.
type GitAuthConfig struct {
	// Type is "none", "token" or "ssh".
	// Default: "none"
	Type string `yaml:"type"`

	// Token for HTTPS authentication. Required when Type is "token".
	Token string `yaml:"token"`

	// SSHKeyPath is a private key file. Required when Type is "ssh".
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase decrypts SSHKeyPath, if it is encrypted.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// RetentionConfig configures heartbeat log pruning.
type RetentionConfig struct {
	// Enabled turns on the scheduled prune job in "serve".
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Schedule is a standard five-field cron expression.
	// Default: "0 12 * * *"
	Schedule string `yaml:"schedule"`

	// MaxAge is how long heartbeat log buckets are kept.
	// Default: 168h (7 days)
	MaxAge time.Duration `yaml:"max_age"`
}

// IsEnabled reports whether scheduled pruning is on.
func (r RetentionConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// ServerConfig configures the HTTP server started by "serve".
type ServerConfig struct {
	// ListenAddress is host:port for the heartbeat API, health and metrics.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TLS serves every route over HTTPS when enabled.
	TLS TLSConfig `yaml:"tls"`

	// Auth requires an API key on the /api routes when enabled.
	Auth AuthConfig `yaml:"auth"`

	// RateLimit throttles heartbeats per device when enabled.
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures per-device heartbeat throttling.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`

	// HeartbeatsPerMinute is the sustained rate each device may send.
	// Default: 60
	HeartbeatsPerMinute int `yaml:"heartbeats_per_minute"`

	// Burst is how many heartbeats a device may send back to back.
	// Default: 10
	Burst int `yaml:"burst"`
}

// TLSConfig configures HTTPS for the server.
type TLSConfig struct {
	Enabled bool `yaml:"enabled"`

	// CertFile and KeyFile are PEM-encoded.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// MinVersion is "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// renewal. Zero disables reloading.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// AuthConfig configures API key authentication.
type AuthConfig struct {
	Enabled bool `yaml:"enabled"`

	// Header carries the key. "Authorization: Bearer <key>" is always
	// accepted as well.
	// Default: "X-API-Key"
	Header string `yaml:"header"`

	// Keys are the accepted API keys.
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeyConfig is one accepted API key.
type APIKeyConfig struct {
	// Name identifies the key holder in logs, e.g. "rack-7".
	Name     string `yaml:"name"`
	Key      string `yaml:"key"`
	Disabled bool   `yaml:"disabled"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	// Enabled exposes Prometheus metrics.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "statusboard"
	Namespace string `yaml:"namespace"`
}

// IsEnabled reports whether metrics are exposed.
func (m MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled exports spans over OTLP/gRPC.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is "always", "never" or "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled by the "ratio" sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as service.name.
	// Default: "statusboard"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
