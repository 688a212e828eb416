package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// HeartbeatInterval is the bucket width of the heartbeat log.
const HeartbeatInterval = 15 * time.Minute

var (
	// ErrDeviceNotFound is returned when no device has the requested name.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrDeviceExists is returned when registering a name that is taken.
	ErrDeviceExists = errors.New("device already registered")

	// ErrInvalidName is returned for empty or whitespace-only device names.
	ErrInvalidName = errors.New("invalid device name")
)

// Device is one registered machine.
type Device struct {
	Name          string
	LastHeartbeat time.Time // Zero if the device never checked in
	Report        string    // Free text sent with the latest heartbeat
	ReturnMessage string    // Template rendered back to this device, may be empty
	Active        bool
}

// HasHeartbeat returns true if the device has checked in at least once.
func (d Device) HasHeartbeat() bool {
	return !d.LastHeartbeat.IsZero()
}

// AliveAt reports whether the last heartbeat is strictly less than window
// before now. Devices that never checked in are not alive.
func (d Device) AliveAt(now time.Time, window time.Duration) bool {
	return d.HasHeartbeat() && now.Sub(d.LastHeartbeat) < window
}

// HeartbeatBucket is the number of distinct devices seen in one
// HeartbeatInterval starting at At.
type HeartbeatBucket struct {
	At      time.Time
	Devices int
}

// Reader is the read-only view used by template functions.
type Reader interface {
	// Devices returns every device ordered by name.
	Devices(ctx context.Context) ([]Device, error)

	// Report returns the stored report for name, or ErrDeviceNotFound.
	Report(ctx context.Context, name string) (string, error)
}

// Store is the full registry used by the responder, the CLI and retention.
type Store interface {
	Reader

	// Device returns a single device, or ErrDeviceNotFound.
	Device(ctx context.Context, name string) (Device, error)

	// Register adds a device. It fails with ErrDeviceExists or ErrInvalidName.
	Register(ctx context.Context, device Device) error

	// Heartbeat records a check-in at the given time and replaces the report.
	Heartbeat(ctx context.Context, name, report string, at time.Time) error

	// SetReturnMessage replaces the template rendered back to the device.
	SetReturnMessage(ctx context.Context, name, message string) error

	// SetActive toggles the device's active flag.
	SetActive(ctx context.Context, name string, active bool) error

	// PruneHeartbeats deletes heartbeat log buckets older than before and
	// returns how many rows were removed.
	PruneHeartbeats(ctx context.Context, before time.Time) (int64, error)

	// HeartbeatCounts returns per-bucket device counts for buckets after
	// since, oldest first.
	HeartbeatCounts(ctx context.Context, since time.Time) ([]HeartbeatBucket, error)

	// Close releases resources held by the store.
	Close() error
}

// BucketOf returns the start of the heartbeat log bucket containing t.
func BucketOf(t time.Time) time.Time {
	return t.Truncate(HeartbeatInterval)
}

// ValidateName checks a device name for registration.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory")
	Operation string // Operation that failed ("open", "heartbeat", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
