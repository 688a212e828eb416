package config

import "time"

// Default values for configuration fields.
const (
	// Pipeline defaults
	DefaultMaxDepth    = 32
	DefaultMaxLength   = 64 * 1024
	DefaultMaxOutput   = 64 * 1024
	DefaultAliveWindow = 24 * time.Hour

	// Registry defaults
	DefaultRegistryBackend   = "sqlite"
	DefaultSQLitePath        = "data/statusboard.db"
	DefaultSQLiteDriver      = "sqlite"
	DefaultSQLiteJournalMode = "wal"
	DefaultSQLiteBusyTimeout = 5 * time.Second

	// Template defaults
	DefaultTemplatesPath    = "templates.yaml"
	DefaultTemplateDebounce = 100 * time.Millisecond
	DefaultTemplate         = "Alive Device: #alives() / #devices()"

	// Retention defaults
	DefaultRetentionSchedule = "0 12 * * *"
	DefaultRetentionMaxAge   = 7 * 24 * time.Hour

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:9090"
	DefaultShutdownTimeout = 10 * time.Second

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "statusboard"

	// Tracing defaults
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingService     = "statusboard"
	DefaultTracingTimeout     = 10 * time.Second

	// Server security defaults
	DefaultTLSMinVersion     = "1.2"
	DefaultTLSReloadInterval = 5 * time.Minute
	DefaultAuthHeader        = "X-API-Key"
	DefaultRateLimitPerMin   = 60
	DefaultRateLimitBurst    = 10

	// Git template source defaults
	DefaultGitBranch       = "main"
	DefaultGitFile         = "templates.yaml"
	DefaultGitPollInterval = time.Minute
	DefaultGitTimeout      = 30 * time.Second
	DefaultGitLocalPath    = "data/templates-git"
)

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Fields that are already set are left alone.
func ApplyDefaults(cfg *Config) {
	applyPipelineDefaults(&cfg.Pipeline)
	applyRegistryDefaults(&cfg.Registry)
	applyTemplatesDefaults(&cfg.Templates)
	applyRetentionDefaults(&cfg.Retention)
	applyServerDefaults(&cfg.Server)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyPipelineDefaults(cfg *PipelineConfig) {
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MaxLength == 0 {
		cfg.MaxLength = DefaultMaxLength
	}
	if cfg.MaxOutput == 0 {
		cfg.MaxOutput = DefaultMaxOutput
	}
	if cfg.AliveWindow == 0 {
		cfg.AliveWindow = DefaultAliveWindow
	}
}

func applyRegistryDefaults(cfg *RegistryConfig) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultRegistryBackend
	}
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = DefaultSQLitePath
	}
	if cfg.SQLite.Driver == "" {
		cfg.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.SQLite.JournalMode == "" {
		cfg.SQLite.JournalMode = DefaultSQLiteJournalMode
	}
	if cfg.SQLite.BusyTimeout == 0 {
		cfg.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
}

func applyTemplatesDefaults(cfg *TemplatesConfig) {
	if cfg.Path == "" {
		cfg.Path = DefaultTemplatesPath
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultTemplateDebounce
	}
	if cfg.DefaultTemplate == "" {
		cfg.DefaultTemplate = DefaultTemplate
	}

	git := &cfg.Git
	if git.Branch == "" {
		git.Branch = DefaultGitBranch
	}
	if git.File == "" {
		git.File = DefaultGitFile
	}
	if git.PollInterval == 0 {
		git.PollInterval = DefaultGitPollInterval
	}
	if git.Timeout == 0 {
		git.Timeout = DefaultGitTimeout
	}
	if git.LocalPath == "" {
		git.LocalPath = DefaultGitLocalPath
	}
	if git.Auth.Type == "" {
		git.Auth.Type = "none"
	}
}

func applyRetentionDefaults(cfg *RetentionConfig) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultRetentionSchedule
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultRetentionMaxAge
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.TLS.MinVersion == "" {
		cfg.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.TLS.ReloadInterval == 0 {
		cfg.TLS.ReloadInterval = DefaultTLSReloadInterval
	}
	if cfg.Auth.Header == "" {
		cfg.Auth.Header = DefaultAuthHeader
	}
	if cfg.RateLimit.HeartbeatsPerMinute == 0 {
		cfg.RateLimit.HeartbeatsPerMinute = DefaultRateLimitPerMin
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = DefaultRateLimitBurst
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Tracing.Timeout == 0 {
		cfg.Tracing.Timeout = DefaultTracingTimeout
	}
}
