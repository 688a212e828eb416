package git

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ReloadFunc reloads templates from the checkout.
type ReloadFunc func() error

// Poller pulls the repository on an interval and reloads templates when a
// pulled commit touches the template file.
type Poller struct {
	repo     *Repository
	interval time.Duration
	reload   ReloadFunc
	logger   *slog.Logger

	mu      sync.Mutex
	lastSHA string
}

// NewPoller creates a poller. A nil logger uses slog.Default.
func NewPoller(repo *Repository, interval time.Duration, reload ReloadFunc, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		repo:     repo,
		interval: interval,
		reload:   reload,
		logger:   logger.With("component", "template-git"),
	}
}

// Run polls until ctx is cancelled. Pull failures are logged and retried on
// the next tick.
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", p.interval)
	}

	commit, err := p.repo.CurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get initial commit: %w", err)
	}
	p.setLast(commit.SHA)

	p.logger.Info("Template repository polling started",
		"interval", p.interval.String(),
		"commit", short(commit.SHA),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Template repository polling stopped")
			return nil
		case <-ticker.C:
			if _, err := p.Check(ctx); err != nil {
				p.logger.Error("Template repository check failed", "error", err)
			}
		}
	}
}

// Check pulls once and reloads if the template file changed. It reports
// whether a reload ran.
func (p *Poller) Check(ctx context.Context) (bool, error) {
	result, err := p.repo.Pull(ctx)
	if err != nil {
		return false, err
	}
	if !result.HadChanges() {
		return false, nil
	}
	p.setLast(result.ToSHA)

	if !result.Touches(p.repo.File()) {
		p.logger.Debug("Commit does not touch the template file, skipping reload",
			"commit", short(result.ToSHA),
			"changed_files", len(result.ChangedFiles),
		)
		return false, nil
	}

	p.logger.Info("Template file changed upstream",
		"from", short(result.FromSHA),
		"to", short(result.ToSHA),
	)
	if err := p.reload(); err != nil {
		return true, fmt.Errorf("reload after %s: %w", short(result.ToSHA), err)
	}
	return true, nil
}

// LastCommit returns the most recent commit the poller has seen.
func (p *Poller) LastCommit() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSHA
}

func (p *Poller) setLast(sha string) {
	p.mu.Lock()
	p.lastSHA = sha
	p.mu.Unlock()
}
