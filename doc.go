// Package relay provides a storage-agnostic, durable job scheduler with
// at-most-one-concurrent-execution semantics and a lease-based recovery
// protocol.
//
// # Overview
//
// relay models a durable job queue with explicit state transitions. A Job
// (see package job) carries both the caller's description of the work and
// the scheduling metadata the engine maintains. The engine (this package)
// enforces the state machine; a Store implementation (see package sql)
// provides durable, atomically-updated persistence; a Hint (see package
// hint) is an advisory cache that speeds up worker polling without being
// part of the correctness story.
//
// The package does not mandate any particular storage backend.
// Implementations may use SQLite, PostgreSQL, or any other durable store
// that supports single-row conditional updates.
//
// # Delivery Semantics
//
// relay guarantees at-most-one-concurrent execution per job: at any instant,
// at most one worker holds a valid lease on a given job. It does not
// guarantee strict exactly-once execution — a job may still execute more
// than once in total if a worker finishes after its lease has already been
// reclaimed by Reconcile. Handlers should be idempotent.
//
// # State Machine
//
// Jobs follow this lifecycle:
//
//	queued  -> queued(+lease)  (via Lease; status stays queued)
//	queued  -> running         (via Start)
//	running -> completed       (via Complete)
//	running -> queued          (via Fail, retries remaining)
//	running -> dead            (via Fail, retries exhausted)
//	running -> queued | dead   (via Reconcile, lease expired)
//
// Terminal states (completed, dead) are absorbing: no operation moves a job
// out of them. They can only be deleted, e.g. by a Cleaner.
//
// # Retry Policy
//
// When a job fails, attempts is incremented. If attempts reaches
// max_attempts, the job becomes dead; otherwise it is requeued with a
// backoff delay computed from the (fixed, table-driven) backoff policy.
//
// # Engine
//
// Engine coordinates submission, leasing, execution reporting and
// reconciliation. It holds no authoritative in-memory state: every
// transition is a single conditional update against the Store.
//
// # Interfaces
//
// relay defines the following primary interfaces:
//
//	Store   — durable persistence with atomic single-row transitions
//	Cleaner — administrative removal of terminal jobs
//
// These interfaces allow storage implementations to be plugged in without
// coupling engine logic to a specific database.
//
// # Concurrency Model
//
// The engine is safe for concurrent use by many callers. Mutual exclusion
// between concurrent operations on the same job is achieved entirely at
// the Store's row level via conditional updates; the engine holds no locks
// of its own.
//
// # Storage Expectations
//
// Implementations of Store must ensure atomic single-row transitions,
// durable persistence and correct lease handling. relay assumes the
// storage layer provides reliable write semantics; behavior under
// concurrent writers beyond the documented guarantees depends on the
// chosen backend.
//
// # Summary
//
// relay provides a minimal yet structured foundation for building durable
// background job processing systems with explicit lifecycle control, a
// lease-based recovery protocol and pluggable storage backends.
package relay
