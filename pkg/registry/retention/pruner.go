package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"machinehub/statusboard/pkg/config"
)

// HeartbeatPruner deletes heartbeat log rows older than a cutoff.
type HeartbeatPruner interface {
	PruneHeartbeats(ctx context.Context, before time.Time) (int64, error)
}

// PruneRecorder is notified after every prune.
type PruneRecorder interface {
	RecordPrune(removed int64, err error)
}

// Config configures retention.
type Config struct {
	// Schedule is a standard cron expression. Empty disables scheduling.
	Schedule string

	// MaxAge is how long heartbeat rows are kept.
	MaxAge time.Duration
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() Config {
	return Config{
		Schedule: config.DefaultRetentionSchedule,
		MaxAge:   config.DefaultRetentionMaxAge,
	}
}

// FromConfig converts the retention configuration section.
func FromConfig(cfg config.RetentionConfig) Config {
	return Config{Schedule: cfg.Schedule, MaxAge: cfg.MaxAge}
}

// Pruner removes expired heartbeat rows.
type Pruner struct {
	store    HeartbeatPruner
	config   Config
	now      func() time.Time
	recorder PruneRecorder
	logger   *slog.Logger
}

// NewPruner creates a pruner. A non-positive MaxAge uses the default.
func NewPruner(store HeartbeatPruner, cfg Config) *Pruner {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = config.DefaultRetentionMaxAge
	}
	return &Pruner{
		store:  store,
		config: cfg,
		now:    time.Now,
		logger: slog.Default().With("component", "registry.retention"),
	}
}

// WithClock replaces the pruner's clock.
func (p *Pruner) WithClock(now func() time.Time) *Pruner {
	p.now = now
	return p
}

// WithRecorder attaches a prune recorder.
func (p *Pruner) WithRecorder(r PruneRecorder) *Pruner {
	p.recorder = r
	return p
}

// WithLogger replaces the pruner's logger.
func (p *Pruner) WithLogger(logger *slog.Logger) *Pruner {
	p.logger = logger.With("component", "registry.retention")
	return p
}

// Cutoff returns the instant before which rows are removed.
func (p *Pruner) Cutoff() time.Time {
	return p.now().Add(-p.config.MaxAge)
}

// Prune removes rows older than MaxAge and returns how many were deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff := p.Cutoff()
	removed, err := p.store.PruneHeartbeats(ctx, cutoff)
	if p.recorder != nil {
		p.recorder.RecordPrune(removed, err)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to prune heartbeat log: %w", err)
	}

	p.logger.Debug("heartbeat log pruned",
		"cutoff", cutoff,
		"deleted_count", removed,
	)
	return removed, nil
}
