// Package sql provides a bun-based implementation of relay.Store and
// relay.Cleaner over a relational database.
//
// # Overview
//
// The SQL backend provides:
//
//   - durable persistence of jobs
//   - atomic single-row state transitions (CAS via conditional UPDATE)
//   - lease semantics via locked_by/lock_expires_at
//   - race-free reconciliation of expired leases
//
// It is compatible with SQLite, PostgreSQL and other bun-supported
// dialects, subject to their transactional guarantees.
//
// # Concurrency Model
//
// Every mutating method issues exactly one UPDATE statement whose WHERE
// clause encodes the full precondition (status, lease ownership,
// readiness). Two concurrent callers racing on the same row therefore
// always resolve to exactly one success; the loser observes zero affected
// rows and is reported as a conflict. Branch logic that depends on the
// current row state (e.g. "dead if attempts now >= max_attempts") is
// expressed as SQL CASE expressions inside the same statement rather than
// as a read-then-write pair, so the whole transition commits atomically.
//
// SQLite users are strongly encouraged to enable WAL mode and configure an
// appropriate busy_timeout; the test helper in this package's tests does
// both.
//
// # Schema
//
// The backend expects a "jobs" table corresponding to jobModel. InitDB (or
// MustInitDB) creates:
//
//   - the jobs table (if not exists)
//   - index (status, next_run_at)
//   - index (status, lock_expires_at)
//   - index (status, updated_at)
//
// These indexes are required for efficient Lease/Start scans and
// Reconcile/Clean sweeps.
//
// InitDB is idempotent and runs inside a transaction. It performs no
// destructive migrations; schema evolution is handled externally.
//
// # Database Lifecycle
//
// This package does not manage connection pooling, migrations, or
// database lifecycle. The caller is responsible for creating and
// configuring *bun.DB, connection limits, WAL/busy_timeout configuration
// (for SQLite), and running InitDB before use.
package sql
