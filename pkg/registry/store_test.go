package registry

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 7, 30, 0, time.UTC)

type storeFactory func(t *testing.T) Store

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) Store {
			return NewMemoryRegistry()
		},
		"sqlite-pure": func(t *testing.T) Store {
			return openSQLite(t, DriverPure)
		},
		"sqlite-cgo": func(t *testing.T) Store {
			return openSQLite(t, DriverCGO)
		},
	}
}

func openSQLite(t *testing.T, driver string) Store {
	t.Helper()

	cfg := DefaultSQLiteConfig()
	cfg.Path = filepath.Join(t.TempDir(), "registry.db")
	cfg.Driver = driver

	r, err := NewSQLiteRegistry(cfg)
	if err != nil && driver == DriverCGO && strings.Contains(err.Error(), "CGO_ENABLED=0") {
		t.Skip("cgo sqlite driver unavailable")
	}
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func TestStore_RegisterAndList(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		require.NoError(t, s.Register(ctx, Device{Name: "GPU480", Report: "GPU Information Here.", Active: true}))
		require.NoError(t, s.Register(ctx, Device{Name: "AlphaBox", ReturnMessage: "#devices()"}))
		require.NoError(t, s.Register(ctx, Device{Name: "camera 2"}))

		devices, err := s.Devices(ctx)
		require.NoError(t, err)
		require.Len(t, devices, 3)
		assert.Equal(t, "AlphaBox", devices[0].Name)
		assert.Equal(t, "GPU480", devices[1].Name)
		assert.Equal(t, "camera 2", devices[2].Name)

		assert.False(t, devices[0].HasHeartbeat())
		assert.Equal(t, "#devices()", devices[0].ReturnMessage)
		assert.True(t, devices[1].Active)
		assert.False(t, devices[2].Active)
	})
}

func TestStore_RegisterErrors(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		require.NoError(t, s.Register(ctx, Device{Name: "GPU480"}))
		assert.ErrorIs(t, s.Register(ctx, Device{Name: "GPU480"}), ErrDeviceExists)
		assert.ErrorIs(t, s.Register(ctx, Device{Name: "  "}), ErrInvalidName)
		assert.ErrorIs(t, s.Register(ctx, Device{}), ErrInvalidName)
	})
}

func TestStore_Report(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Register(ctx, Device{Name: "GPU 480", Report: "fan ok"}))

		report, err := s.Report(ctx, "GPU 480")
		require.NoError(t, err)
		assert.Equal(t, "fan ok", report)

		_, err = s.Report(ctx, "GPU480")
		assert.ErrorIs(t, err, ErrDeviceNotFound)
	})
}

func TestStore_Heartbeat(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Register(ctx, Device{Name: "GPU480"}))

		require.NoError(t, s.Heartbeat(ctx, "GPU480", "temp 61C", epoch))

		d, err := s.Device(ctx, "GPU480")
		require.NoError(t, err)
		assert.True(t, d.LastHeartbeat.Equal(epoch))
		assert.Equal(t, "temp 61C", d.Report)

		assert.ErrorIs(t, s.Heartbeat(ctx, "missing", "", epoch), ErrDeviceNotFound)
	})
}

func TestStore_HeartbeatLog(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Register(ctx, Device{Name: "a"}))
		require.NoError(t, s.Register(ctx, Device{Name: "b"}))

		// 12:07:30 and 12:14:00 share the 12:00 bucket.
		require.NoError(t, s.Heartbeat(ctx, "a", "", epoch))
		require.NoError(t, s.Heartbeat(ctx, "a", "", epoch.Add(6*time.Minute+30*time.Second)))
		require.NoError(t, s.Heartbeat(ctx, "b", "", epoch.Add(time.Minute)))
		require.NoError(t, s.Heartbeat(ctx, "a", "", epoch.Add(15*time.Minute)))

		buckets, err := s.HeartbeatCounts(ctx, epoch.Add(-24*time.Hour))
		require.NoError(t, err)
		require.Len(t, buckets, 2)

		assert.True(t, buckets[0].At.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
		assert.Equal(t, 2, buckets[0].Devices)
		assert.True(t, buckets[1].At.Equal(time.Date(2024, 5, 1, 12, 15, 0, 0, time.UTC)))
		assert.Equal(t, 1, buckets[1].Devices)

		removed, err := s.PruneHeartbeats(ctx, time.Date(2024, 5, 1, 12, 10, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)

		buckets, err = s.HeartbeatCounts(ctx, epoch.Add(-24*time.Hour))
		require.NoError(t, err)
		require.Len(t, buckets, 1)
		assert.Equal(t, 1, buckets[0].Devices)
	})
}

func TestStore_SetReturnMessageAndActive(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Register(ctx, Device{Name: "GPU480"}))

		require.NoError(t, s.SetReturnMessage(ctx, "GPU480", "#report(GPU480)"))
		require.NoError(t, s.SetActive(ctx, "GPU480", true))

		d, err := s.Device(ctx, "GPU480")
		require.NoError(t, err)
		assert.Equal(t, "#report(GPU480)", d.ReturnMessage)
		assert.True(t, d.Active)

		assert.ErrorIs(t, s.SetReturnMessage(ctx, "nope", "x"), ErrDeviceNotFound)
		assert.ErrorIs(t, s.SetActive(ctx, "nope", false), ErrDeviceNotFound)

		_, err = s.Device(ctx, "nope")
		assert.ErrorIs(t, err, ErrDeviceNotFound)
	})
}

func TestDevice_AliveAt(t *testing.T) {
	now := epoch
	window := 24 * time.Hour

	assert.True(t, Device{LastHeartbeat: now.Add(-time.Hour)}.AliveAt(now, window))
	assert.True(t, Device{LastHeartbeat: now.Add(-window + time.Second)}.AliveAt(now, window))
	assert.False(t, Device{LastHeartbeat: now.Add(-window)}.AliveAt(now, window))
	assert.False(t, Device{}.AliveAt(now, window))
}

func TestBucketOf(t *testing.T) {
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), BucketOf(epoch))
	assert.Equal(t, time.Date(2024, 5, 1, 12, 45, 0, 0, time.UTC),
		BucketOf(time.Date(2024, 5, 1, 12, 59, 59, 0, time.UTC)))
}

func TestMemoryRegistry_Seeded(t *testing.T) {
	r := NewMemoryRegistry(Device{Name: "b"}, Device{Name: "a", Report: "hi"})

	devices, err := r.Devices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "a", devices[0].Name)

	report, err := r.Report(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "hi", report)
}

func TestMemoryRegistry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryRegistry().Devices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSQLiteRegistry_InvalidConfig(t *testing.T) {
	_, err := NewSQLiteRegistry(&SQLiteConfig{Path: ""})
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "open", storageErr.Operation)

	_, err = NewSQLiteRegistry(&SQLiteConfig{Path: "x.db", Driver: "postgres"})
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestSQLiteRegistry_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	cfg := &SQLiteConfig{Path: path, Driver: DriverPure, WALMode: true}

	r, err := NewSQLiteRegistry(cfg)
	require.NoError(t, err)
	require.NoError(t, r.Register(context.Background(), Device{Name: "GPU480", Report: "kept"}))
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	r, err = NewSQLiteRegistry(&SQLiteConfig{Path: path, Driver: DriverPure, WALMode: true})
	require.NoError(t, err)
	defer r.Close()

	report, err := r.Report(context.Background(), "GPU480")
	require.NoError(t, err)
	assert.Equal(t, "kept", report)
}
