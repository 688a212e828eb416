package templates

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machinehub/statusboard/pkg/telemetry/logging"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for range 5 {
		d.Trigger(func() { calls.Add(1) })
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestFileWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")
	writeFile(t, path, `default: "v1"`)

	store := newTestStore(t, path, nil)
	require.NoError(t, store.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.Watch(ctx, 10*time.Millisecond) }()

	// Unrelated files in the same directory are ignored.
	writeFile(t, filepath.Join(dir, "other.yaml"), `default: "ignored"`)

	require.Eventually(t, func() bool {
		writeFile(t, path, `default: "v2"`)
		return store.Lookup("x") == "v2"
	}, 2*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFileWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.yaml")
	fw, err := NewFileWatcher(path, 0, logging.Discard())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- fw.Watch(context.Background(), func() error { return nil }) }()

	require.Eventually(t, func() bool {
		fw.mu.Lock()
		defer fw.mu.Unlock()
		return fw.running
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, fw.Stop())
	assert.NoError(t, <-done)
}
