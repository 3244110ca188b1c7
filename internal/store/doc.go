// Package store provides durable storage for ADR records.
//
// Two implementations share one contract:
//   - Store: SQLite-backed, for the real bot
//   - Memory: map-backed, for tests and the scenario harness
//
// # Contract
//
//   - Records are keyed by their stable id (the originating issue number).
//   - Load of an unknown id fails with ErrNotFound.
//   - ThreadID is a secondary index; FindByThread resolves it.
//   - Save never merges concurrent writes. Every record carries a Version;
//     a save whose Version does not match the stored one fails with
//     ErrConflict and writes nothing. Version 0 means "new record".
//   - History is append-only. A save that would drop stored entries fails.
//   - SaveAll persists several records in one transaction, which is how a
//     supersession (two records) stays a single logical unit.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - one open connection: SQLite has a single writer anyway
package store
