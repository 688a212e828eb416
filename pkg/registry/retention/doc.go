// Package retention prunes the heartbeat log on a cron schedule.
//
// The heartbeat log keeps one row per device per 15-minute bucket. Rows
// older than the configured maximum age are removed by a Pruner, which the
// Scheduler runs on a standard five-field cron expression (daily at noon by
// default).
package retention
