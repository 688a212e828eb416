package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"machinehub/statusboard/pkg/config"
)

// CommitInfo describes the checked-out commit.
type CommitInfo struct {
	SHA       string    `json:"sha"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Branch    string    `json:"branch"`
}

// PullResult is the outcome of one pull.
type PullResult struct {
	FromSHA      string
	ToSHA        string
	ChangedFiles []string // Slash-separated, relative to the repository root
}

// HadChanges reports whether the pull moved HEAD.
func (p PullResult) HadChanges() bool {
	return p.FromSHA != p.ToSHA
}

// Touches reports whether file is among the changed files.
func (p PullResult) Touches(file string) bool {
	want := path.Clean(filepath.ToSlash(file))
	for _, f := range p.ChangedFiles {
		if path.Clean(f) == want {
			return true
		}
	}
	return false
}

// Repository is a local checkout of the template repository.
type Repository struct {
	cfg  config.GitSourceConfig
	auth AuthProvider

	mu   sync.RWMutex
	repo *gogit.Repository
}

// NewRepository validates cfg and prepares a repository. Nothing touches the
// network until Clone.
func NewRepository(cfg config.GitSourceConfig) (*Repository, error) {
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}
	if cfg.LocalPath == "" {
		return nil, fmt.Errorf("local path cannot be empty")
	}

	auth, err := NewAuthProvider(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	return &Repository{cfg: cfg, auth: auth}, nil
}

// Clone clones the configured branch, or opens the checkout left by an
// earlier run.
func (r *Repository) Clone(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(filepath.Join(r.cfg.LocalPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(r.cfg.LocalPath)
		if err != nil {
			return fmt.Errorf("failed to open existing checkout: %w", err)
		}
		r.repo = repo
		return nil
	}

	if err := os.MkdirAll(r.cfg.LocalPath, 0o755); err != nil {
		return fmt.Errorf("failed to create checkout directory: %w", err)
	}

	auth, err := r.auth.Auth()
	if err != nil {
		return fmt.Errorf("failed to get auth: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	repo, err := gogit.PlainCloneContext(ctx, r.cfg.LocalPath, false, &gogit.CloneOptions{
		URL:           r.cfg.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  true,
		Depth:         r.cfg.Depth,
		Auth:          auth,
	})
	if err != nil {
		return fmt.Errorf("failed to clone %s: %w", r.cfg.Repository, err)
	}

	r.repo = repo
	return nil
}

// Pull fast-forwards the checkout and reports which files changed.
func (r *Repository) Pull(ctx context.Context) (PullResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.repo == nil {
		return PullResult{}, fmt.Errorf("repository not initialized, call Clone() first")
	}

	head, err := r.repo.Head()
	if err != nil {
		return PullResult{}, fmt.Errorf("failed to get HEAD: %w", err)
	}
	result := PullResult{FromSHA: head.Hash().String()}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return PullResult{}, fmt.Errorf("failed to get worktree: %w", err)
	}

	auth, err := r.auth.Auth()
	if err != nil {
		return PullResult{}, fmt.Errorf("failed to get auth: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    gogit.DefaultRemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(r.cfg.Branch),
		SingleBranch:  true,
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return PullResult{}, fmt.Errorf("failed to pull: %w", err)
	}

	head, err = r.repo.Head()
	if err != nil {
		return PullResult{}, fmt.Errorf("failed to get new HEAD: %w", err)
	}
	result.ToSHA = head.Hash().String()

	if result.HadChanges() {
		result.ChangedFiles, err = r.changedFiles(result.FromSHA, result.ToSHA)
		if err != nil {
			return PullResult{}, err
		}
	}
	return result, nil
}

// CurrentCommit describes HEAD.
func (r *Repository) CurrentCommit() (CommitInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.repo == nil {
		return CommitInfo{}, fmt.Errorf("repository not initialized, call Clone() first")
	}

	ref, err := r.repo.Head()
	if err != nil {
		return CommitInfo{}, fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return CommitInfo{}, fmt.Errorf("failed to get commit: %w", err)
	}

	return CommitInfo{
		SHA:       commit.Hash.String(),
		Author:    commit.Author.Name,
		Timestamp: commit.Author.When,
		Message:   commit.Message,
		Branch:    r.cfg.Branch,
	}, nil
}

// FilePath returns the template file's location in the checkout.
func (r *Repository) FilePath() string {
	return filepath.Join(r.cfg.LocalPath, filepath.FromSlash(r.cfg.File))
}

// File returns the configured template file, relative to the repository root.
func (r *Repository) File() string {
	return r.cfg.File
}

func (r *Repository) changedFiles(fromSHA, toSHA string) ([]string, error) {
	from, err := r.repo.CommitObject(plumbing.NewHash(fromSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", short(fromSHA), err)
	}
	to, err := r.repo.CommitObject(plumbing.NewHash(toSHA))
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", short(toSHA), err)
	}

	fromTree, err := from.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	toTree, err := to.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	files := make([]string, 0, len(changes))
	for _, c := range changes {
		if c.To.Name != "" {
			files = append(files, c.To.Name)
		} else {
			files = append(files, c.From.Name)
		}
	}
	return files, nil
}

func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.Timeout)
}

func short(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
