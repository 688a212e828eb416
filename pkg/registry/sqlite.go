package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

const (
	// DriverCGO selects github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"

	// DriverPure selects modernc.org/sqlite.
	DriverPure = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite registry.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" keeps the database in process.
	Path string

	// Driver is the database/sql driver name, DriverCGO or DriverPure.
	// Default: DriverPure
	Driver string

	// WALMode enables Write-Ahead Logging mode.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/statusboard.db",
		Driver:      DriverPure,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteRegistry implements Store on top of SQLite.
type SQLiteRegistry struct {
	db        *sql.DB
	config    *SQLiteConfig
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewSQLiteRegistry opens the database, applies pragmas and creates the
// schema if needed.
func NewSQLiteRegistry(config *SQLiteConfig) (*SQLiteRegistry, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, NewStorageError("sqlite", "open", errors.New("db path cannot be empty"))
	}
	if config.Driver == "" {
		config.Driver = DriverPure
	}
	if config.Driver != DriverCGO && config.Driver != DriverPure {
		return nil, NewStorageError("sqlite", "open", fmt.Errorf("unsupported driver %q", config.Driver))
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	logger := slog.Default().With("component", "registry.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	// Pragmas are per connection; a single connection keeps them and
	// serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	r := &SQLiteRegistry{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := r.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite registry initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return r, nil
}

func (r *SQLiteRegistry) initialize() error {
	if err := r.db.Ping(); err != nil {
		return NewStorageError("sqlite", "ping", err)
	}

	if r.config.WALMode {
		if _, err := r.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
		r.logger.Debug("WAL mode enabled")
	}

	if _, err := r.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", r.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := r.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return NewStorageError("sqlite", "enable_foreign_keys", err)
	}

	if _, err := r.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := r.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := r.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (Device, error) {
	var (
		d         Device
		heartbeat sql.NullInt64
		active    int64
	)
	if err := row.Scan(&d.Name, &heartbeat, &d.Report, &d.ReturnMessage, &active); err != nil {
		return Device{}, err
	}
	if heartbeat.Valid {
		d.LastHeartbeat = time.Unix(heartbeat.Int64, 0).UTC()
	}
	d.Active = active != 0
	return d, nil
}

// Devices returns every device ordered by name.
func (r *SQLiteRegistry) Devices(ctx context.Context) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, selectDevicesSQL)
	if err != nil {
		return nil, NewStorageError("sqlite", "select_devices", err)
	}
	defer rows.Close()

	devices := make([]Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan_device", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "select_devices", err)
	}
	return devices, nil
}

// Report returns the stored report for name.
func (r *SQLiteRegistry) Report(ctx context.Context, name string) (string, error) {
	var report string
	err := r.db.QueryRowContext(ctx, selectReportSQL, name).Scan(&report)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	if err != nil {
		return "", NewStorageError("sqlite", "select_report", err)
	}
	return report, nil
}

// Device returns a single device.
func (r *SQLiteRegistry) Device(ctx context.Context, name string) (Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDeviceSQL, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Device{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	if err != nil {
		return Device{}, NewStorageError("sqlite", "select_device", err)
	}
	return d, nil
}

// Register adds a device.
func (r *SQLiteRegistry) Register(ctx context.Context, device Device) error {
	if err := ValidateName(device.Name); err != nil {
		return err
	}

	var heartbeat sql.NullInt64
	if device.HasHeartbeat() {
		heartbeat = sql.NullInt64{Int64: device.LastHeartbeat.Unix(), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, insertDeviceSQL,
		device.Name, heartbeat, device.Report, device.ReturnMessage, boolToInt(device.Active))
	if err != nil {
		return NewStorageError("sqlite", "register", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", "register", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrDeviceExists, device.Name)
	}

	r.logger.Debug("device registered", "device", device.Name)
	return nil
}

// Heartbeat records a check-in, replaces the report and logs the bucket.
func (r *SQLiteRegistry) Heartbeat(ctx context.Context, name, report string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStorageError("sqlite", "heartbeat", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, updateHeartbeatSQL, at.Unix(), report, name)
	if err != nil {
		return NewStorageError("sqlite", "heartbeat", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return NewStorageError("sqlite", "heartbeat", err)
	} else if n == 0 {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}

	if _, err := tx.ExecContext(ctx, insertHeartbeatLogSQL, BucketOf(at).Unix(), name); err != nil {
		return NewStorageError("sqlite", "heartbeat_log", err)
	}

	if err := tx.Commit(); err != nil {
		return NewStorageError("sqlite", "heartbeat", err)
	}
	return nil
}

// SetReturnMessage replaces the device's template.
func (r *SQLiteRegistry) SetReturnMessage(ctx context.Context, name, message string) error {
	return r.updateOne(ctx, "set_return_message", updateReturnMessageSQL, name, message, name)
}

// SetActive toggles the device's active flag.
func (r *SQLiteRegistry) SetActive(ctx context.Context, name string, active bool) error {
	return r.updateOne(ctx, "set_active", updateActiveSQL, name, boolToInt(active), name)
}

func (r *SQLiteRegistry) updateOne(ctx context.Context, op, query, name string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return NewStorageError("sqlite", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("sqlite", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	return nil
}

// PruneHeartbeats deletes heartbeat log buckets older than before.
func (r *SQLiteRegistry) PruneHeartbeats(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteHeartbeatLogSQL, before.Unix())
	if err != nil {
		return 0, NewStorageError("sqlite", "prune_heartbeats", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "prune_heartbeats", err)
	}
	return n, nil
}

// HeartbeatCounts returns per-bucket device counts after since, oldest first.
func (r *SQLiteRegistry) HeartbeatCounts(ctx context.Context, since time.Time) ([]HeartbeatBucket, error) {
	rows, err := r.db.QueryContext(ctx, heartbeatCountsSQL, since.Unix())
	if err != nil {
		return nil, NewStorageError("sqlite", "heartbeat_counts", err)
	}
	defer rows.Close()

	buckets := make([]HeartbeatBucket, 0)
	for rows.Next() {
		var ts, count int64
		if err := rows.Scan(&ts, &count); err != nil {
			return nil, NewStorageError("sqlite", "heartbeat_counts", err)
		}
		buckets = append(buckets, HeartbeatBucket{At: time.Unix(ts, 0).UTC(), Devices: int(count)})
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "heartbeat_counts", err)
	}
	return buckets, nil
}

// Close closes the database. It is safe to call more than once.
func (r *SQLiteRegistry) Close() error {
	var closeErr error
	r.closeOnce.Do(func() {
		if r.config.WALMode {
			_, _ = r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		}
		closeErr = r.db.Close()
	})
	return closeErr
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLiteRegistry)(nil)
