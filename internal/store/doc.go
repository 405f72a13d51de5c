// Package store provides SQLite-backed storage for imported event logs.
//
// Logs are content-addressed: the id of a stored log is its digest
// (ir.LogDigest over case ids and activity sequences), so importing the
// same log twice stores it once.
//
// # Tables
//
//   - logs: one row per imported log, with trace and event counts
//   - cases: one row per trace, keyed by (log_id, ordinal)
//   - events: one row per event, keyed by (log_id, case_ordinal, position)
//
// Reads are ordered by case ordinal then position, so a log read back
// replays exactly as it was imported. Log listings are ordered by import
// sequence (a logical counter, never a timestamp).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
