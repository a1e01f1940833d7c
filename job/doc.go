// Package job defines the stateful representation of a unit of work within
// the scheduler's lifecycle.
//
// A Job is the single entity the rest of the system operates on: it carries
// both the caller-supplied description of the work (Type, Payload, Priority,
// MaxAttempts) and the scheduling metadata the engine maintains on its
// behalf (Status, Attempts, lock fields, timestamps).
//
// Job values returned by a Store represent authoritative snapshots. They are
// not intended to be mutated directly by callers; every transition must go
// through the engine, which expresses it as a single conditional update
// against the store.
package job
