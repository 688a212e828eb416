package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRegistry is an in-process Store. It is safe for concurrent use.
type MemoryRegistry struct {
	mu        sync.RWMutex
	devices   map[string]*Device
	heartbeat map[int64]map[string]struct{} // bucket start (unix seconds) -> device names
}

// NewMemoryRegistry creates an empty registry, optionally seeded with devices.
// Seeded devices bypass name validation and duplicate checks; later entries
// replace earlier ones with the same name.
func NewMemoryRegistry(devices ...Device) *MemoryRegistry {
	r := &MemoryRegistry{
		devices:   make(map[string]*Device),
		heartbeat: make(map[int64]map[string]struct{}),
	}
	for _, d := range devices {
		dev := d
		r.devices[d.Name] = &dev
	}
	return r
}

// Devices returns every device ordered by name.
func (r *MemoryRegistry) Devices(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, *d)
	}
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Name < devices[j].Name
	})
	return devices, nil
}

// Report returns the stored report for name.
func (r *MemoryRegistry) Report(ctx context.Context, name string) (string, error) {
	d, err := r.Device(ctx, name)
	if err != nil {
		return "", err
	}
	return d.Report, nil
}

// Device returns a single device.
func (r *MemoryRegistry) Device(ctx context.Context, name string) (Device, error) {
	if err := ctx.Err(); err != nil {
		return Device{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[name]
	if !ok {
		return Device{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	return *d, nil
}

// Register adds a device.
func (r *MemoryRegistry) Register(ctx context.Context, device Device) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateName(device.Name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[device.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDeviceExists, device.Name)
	}
	r.devices[device.Name] = &device
	return nil
}

// Heartbeat records a check-in and replaces the report.
func (r *MemoryRegistry) Heartbeat(ctx context.Context, name, report string, at time.Time) error {
	return r.update(ctx, name, func(d *Device) {
		d.LastHeartbeat = at
		d.Report = report

		bucket := BucketOf(at).Unix()
		seen, ok := r.heartbeat[bucket]
		if !ok {
			seen = make(map[string]struct{})
			r.heartbeat[bucket] = seen
		}
		seen[name] = struct{}{}
	})
}

// SetReturnMessage replaces the device's template.
func (r *MemoryRegistry) SetReturnMessage(ctx context.Context, name, message string) error {
	return r.update(ctx, name, func(d *Device) {
		d.ReturnMessage = message
	})
}

// SetActive toggles the device's active flag.
func (r *MemoryRegistry) SetActive(ctx context.Context, name string, active bool) error {
	return r.update(ctx, name, func(d *Device) {
		d.Active = active
	})
}

func (r *MemoryRegistry) update(ctx context.Context, name string, fn func(*Device)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	fn(d)
	return nil
}

// PruneHeartbeats deletes heartbeat log entries in buckets before the cutoff.
func (r *MemoryRegistry) PruneHeartbeats(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for bucket, seen := range r.heartbeat {
		if time.Unix(bucket, 0).Before(before) {
			removed += int64(len(seen))
			delete(r.heartbeat, bucket)
		}
	}
	return removed, nil
}

// HeartbeatCounts returns per-bucket device counts after since, oldest first.
func (r *MemoryRegistry) HeartbeatCounts(ctx context.Context, since time.Time) ([]HeartbeatBucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	buckets := make([]HeartbeatBucket, 0)
	for bucket, seen := range r.heartbeat {
		at := time.Unix(bucket, 0).UTC()
		if at.After(since) {
			buckets = append(buckets, HeartbeatBucket{At: at, Devices: len(seen)})
		}
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].At.Before(buckets[j].At)
	})
	return buckets, nil
}

// Close is a no-op.
func (r *MemoryRegistry) Close() error {
	return nil
}

var _ Store = (*MemoryRegistry)(nil)
