// Package testutil holds fixtures shared by statusboard tests.
package testutil

import (
	"context"
	"time"

	"machinehub/statusboard/pkg/registry"
)

// Epoch is the fixed "now" used by fleet fixtures.
var Epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Fleet returns a registry of four devices relative to now: three alive
// within a 24h window (a, b, c) and one dead ("GPU 480"). Device c reports
// "GPU 480", so #report(#report(c)) resolves through two lookups.
func Fleet(now time.Time) *registry.MemoryRegistry {
	return registry.NewMemoryRegistry(
		registry.Device{Name: "a", LastHeartbeat: now.Add(-time.Hour), Active: true},
		registry.Device{Name: "b", LastHeartbeat: now.Add(-5 * time.Hour), Active: true},
		registry.Device{Name: "c", Report: "GPU 480", LastHeartbeat: now.Add(-23 * time.Hour), Active: true},
		registry.Device{Name: "GPU 480", Report: "GPU Information Here.", LastHeartbeat: now.Add(-30 * time.Hour), Active: true},
	)
}

// FailingReader is a registry.Reader whose every call fails with Err.
type FailingReader struct {
	Err error
}

func (f FailingReader) Devices(context.Context) ([]registry.Device, error) { return nil, f.err() }

func (f FailingReader) Report(context.Context, string) (string, error) { return "", f.err() }

func (f FailingReader) err() error {
	if f.Err == nil {
		return registry.NewStorageError("test", "read", context.DeadlineExceeded)
	}
	return f.Err
}
