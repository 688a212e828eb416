package templates

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// Linter checks a template without rendering it.
type Linter interface {
	Lint(template string) error
}

// ReloadRecorder is notified of every load attempt.
type ReloadRecorder interface {
	RecordTemplateReload(err error)
}

// DefaultKey names the default template in lint results.
const DefaultKey = "default"

// File is the on-disk template set.
type File struct {
	Default string            `yaml:"default"`
	Devices map[string]string `yaml:"devices"`
}

// LintError reports one template that failed to lint.
type LintError struct {
	Path string
	Key  string // DefaultKey or the device name
	Err  error
}

func (e *LintError) Error() string {
	return fmt.Sprintf("%s: template %q: %v", e.Path, e.Key, e.Err)
}

func (e *LintError) Unwrap() error {
	return e.Err
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// Path is the template file. A missing file yields an empty set.
	Path string

	// DefaultTemplate is used when the file has no default entry.
	DefaultTemplate string

	// Linter validates templates on load. Nil disables linting.
	Linter Linter

	// Recorder counts reloads. Optional.
	Recorder ReloadRecorder

	Logger *slog.Logger
}

// Store resolves device templates. It is safe for concurrent use.
type Store struct {
	path     string
	fallback string
	linter   Linter
	recorder ReloadRecorder
	logger   *slog.Logger

	mu      sync.RWMutex
	current File
}

// NewStore creates a store. Call Load to read the file.
func NewStore(cfg StoreConfig) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:     cfg.Path,
		fallback: cfg.DefaultTemplate,
		linter:   cfg.Linter,
		recorder: cfg.Recorder,
		logger:   logger.With("component", "templates"),
	}
}

// Path returns the template file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and lints the template file. On error the previous set is kept.
func (s *Store) Load() error {
	file, err := s.read()
	if s.recorder != nil {
		s.recorder.RecordTemplateReload(err)
	}
	if err != nil {
		s.logger.Error("Template load failed, keeping previous set", "path", s.path, "error", err)
		return err
	}

	s.mu.Lock()
	s.current = file
	s.mu.Unlock()

	s.logger.Info("Templates loaded",
		"path", s.path,
		"devices", len(file.Devices),
		"has_default", file.Default != "",
	)
	return nil
}

func (s *Store) read() (File, error) {
	if s.path == "" {
		return File{}, nil
	}

	file, err := ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("Template file not found, using built-in default", "path", s.path)
		return File{}, nil
	}
	if err != nil {
		return File{}, err
	}

	if err := s.lint(file); err != nil {
		return File{}, err
	}
	return file, nil
}

// ReadFile reads and decodes a template file without linting it.
func ReadFile(path string) (File, error) {
	var file File

	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("failed to read template file: %w", err)
	}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse template file %s: %w", path, err)
	}
	return file, nil
}

// Entry is one template in a File.
type Entry struct {
	Key      string // DefaultKey or a device name
	Template string
}

// Entries returns the default template, when set, followed by the device
// templates sorted by device name.
func (f File) Entries() []Entry {
	entries := make([]Entry, 0, len(f.Devices)+1)
	if f.Default != "" {
		entries = append(entries, Entry{Key: DefaultKey, Template: f.Default})
	}
	for _, device := range slices.Sorted(maps.Keys(f.Devices)) {
		entries = append(entries, Entry{Key: device, Template: f.Devices[device]})
	}
	return entries
}

func (s *Store) lint(file File) error {
	if s.linter == nil {
		return nil
	}

	var errs []error
	for _, e := range file.Entries() {
		if err := s.linter.Lint(e.Template); err != nil {
			errs = append(errs, &LintError{Path: s.path, Key: e.Key, Err: err})
		}
	}
	return errors.Join(errs...)
}

// Lookup returns the template for device: its own entry, else the file's
// default, else the configured default.
func (s *Store) Lookup(device string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if tmpl, ok := s.current.Devices[device]; ok {
		return tmpl
	}
	if s.current.Default != "" {
		return s.current.Default
	}
	return s.fallback
}

// Snapshot returns a copy of the loaded set.
func (s *Store) Snapshot() File {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return File{
		Default: s.current.Default,
		Devices: maps.Clone(s.current.Devices),
	}
}
