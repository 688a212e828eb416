// Package registry holds device identity, heartbeat recency and free-text
// reports.
//
// The template functions only need the narrow Reader view: an ordered device
// list and a report lookup. Everything that writes (registration, heartbeats,
// stored return messages, heartbeat-log pruning) lives on Store.
//
// Two Store implementations are provided:
//
//   - MemoryRegistry keeps everything in process. It backs tests and the
//     default pipeline.
//   - SQLiteRegistry persists to a SQLite database through database/sql and
//     works with either the cgo driver (github.com/mattn/go-sqlite3, driver
//     name "sqlite3") or the pure Go driver (modernc.org/sqlite, driver name
//     "sqlite").
//
// Every heartbeat also records a row in a heartbeat log bucketed to
// HeartbeatInterval, so HeartbeatCounts can report how many distinct devices
// checked in per bucket. Old buckets are removed with PruneHeartbeats, usually
// from the retention scheduler.
package registry
