package registry

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the registry schema.
// Timestamps are stored as unix seconds.
const Schema = `
CREATE TABLE IF NOT EXISTS devices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    last_heartbeat INTEGER,
    report TEXT NOT NULL DEFAULT '',
    return_message TEXT NOT NULL DEFAULT '',
    is_active INTEGER NOT NULL DEFAULT 1
);

-- One row per device per heartbeat bucket
CREATE TABLE IF NOT EXISTS heartbeat_log (
    device_id INTEGER NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    heartbeat_ts INTEGER NOT NULL,
    UNIQUE (device_id, heartbeat_ts)
);

CREATE INDEX IF NOT EXISTS idx_heartbeat_log_ts ON heartbeat_log(heartbeat_ts);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
`

// InsertSchemaVersion records the schema version if not already present.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion returns the highest applied schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`

const (
	selectDevicesSQL = `
SELECT name, last_heartbeat, report, return_message, is_active
  FROM devices
 ORDER BY name ASC`

	selectDeviceSQL = `
SELECT name, last_heartbeat, report, return_message, is_active
  FROM devices
 WHERE name = ?`

	selectReportSQL = `SELECT report FROM devices WHERE name = ?`

	insertDeviceSQL = `
INSERT INTO devices (name, last_heartbeat, report, return_message, is_active)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO NOTHING`

	updateHeartbeatSQL = `
UPDATE devices
   SET last_heartbeat = ?,
       report = ?
 WHERE name = ?`

	insertHeartbeatLogSQL = `
INSERT OR IGNORE INTO heartbeat_log (device_id, heartbeat_ts)
SELECT id, ? FROM devices WHERE name = ?`

	updateReturnMessageSQL = `UPDATE devices SET return_message = ? WHERE name = ?`

	updateActiveSQL = `UPDATE devices SET is_active = ? WHERE name = ?`

	deleteHeartbeatLogSQL = `DELETE FROM heartbeat_log WHERE heartbeat_ts < ?`

	heartbeatCountsSQL = `
SELECT heartbeat_ts, COUNT(device_id)
  FROM heartbeat_log
 WHERE heartbeat_ts > ?
 GROUP BY heartbeat_ts
 ORDER BY heartbeat_ts ASC`
)
