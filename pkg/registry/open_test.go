package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machinehub/statusboard/pkg/config"
)

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		store, err := Open(config.RegistryConfig{Backend: BackendMemory})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &MemoryRegistry{}, store)
	})

	t.Run("sqlite creates directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "statusboard.db")
		store, err := Open(config.RegistryConfig{
			Backend: BackendSQLite,
			SQLite:  config.SQLiteConfig{Path: path, Driver: DriverPure, JournalMode: "wal"},
		})
		require.NoError(t, err)
		defer store.Close()

		require.NoError(t, store.Register(context.Background(), Device{Name: "alpha", Active: true}))
		devices, err := store.Devices(context.Background())
		require.NoError(t, err)
		assert.Len(t, devices, 1)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(config.RegistryConfig{Backend: "postgres"})
		assert.ErrorContains(t, err, "unsupported registry backend")
	})
}
