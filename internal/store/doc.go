// Package store provides a SQLite-backed log of analytics events.
//
// The log is append-only. Each terminal resolution decision is written once,
// keyed by its content-addressed event ID; writing the same event again is a
// no-op, so a recorder that retries never duplicates rows.
//
// # Ordering
//
// All reads order by the logical seq, never by wall time:
//
//	ORDER BY seq ASC, id COLLATE BINARY ASC
//
// MaxSeq lets a process resume its logical clock after the last persisted
// event (engine.ResumeClock), so seq stays increasing across CLI runs that
// share one log.
//
// # Migrations
//
// PRAGMA user_version records the layout of a log; Open upgrades older logs
// in place before applying schema.sql. Rows written by old builds read back
// with zero values for columns added later.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Store implements analytics.Recorder.
package store
