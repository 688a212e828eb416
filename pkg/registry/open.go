package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"machinehub/statusboard/pkg/config"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open creates the Store selected by cfg. For SQLite the database directory
// is created if missing.
func Open(cfg config.RegistryConfig) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryRegistry(), nil

	case BackendSQLite, "":
		path := cfg.SQLite.Path
		if path != ":memory:" && !strings.HasPrefix(path, "file:") {
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, NewStorageError(BackendSQLite, "open", fmt.Errorf("create database directory: %w", err))
				}
			}
		}
		return NewSQLiteRegistry(&SQLiteConfig{
			Path:        path,
			Driver:      cfg.SQLite.Driver,
			WALMode:     !strings.EqualFold(cfg.SQLite.JournalMode, "delete"),
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})

	default:
		return nil, fmt.Errorf("unsupported registry backend: %s", cfg.Backend)
	}
}
