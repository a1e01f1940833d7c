package job

import (
	"time"

	"github.com/google/uuid"
)

// Job represents a unit of work managed by the scheduler.
//
// Id is assigned once at submission and never changes.
// Type is an opaque dispatch label interpreted by workers.
// Payload is an opaque, caller-supplied string; the engine never inspects it.
// Priority is in [1,10]; higher values are selected earlier, ties broken by
// CreatedAt ascending.
//
// CreatedAt is immutable and set at insert time.
// UpdatedAt is refreshed on every committed mutation.
// StartedAt is set once, on the first queued->running transition, and is
// kept across retries (it is not updated on subsequent attempts).
// CompletedAt is set on the running->completed transition.
// NextRunAt is the earliest time a queued Job may be leased; nil means
// immediately eligible.
//
// LockedBy and LockExpiresAt together describe the current lease, if any.
// A Job is only considered actively leased while LockExpiresAt is non-nil
// and in the future.
//
// Job values returned by a Store are snapshots; mutating them has no effect
// on persisted state.
type Job struct {
	Id          uuid.UUID
	Type        string
	Payload     string
	Priority    int
	Status      Status
	Attempts    int
	MaxAttempts int
	LastError   string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	NextRunAt   *time.Time

	LockedBy      string
	LockExpiresAt *time.Time
}

// Leased reports whether the Job currently has a valid, unexpired lease as
// of the given instant.
func (j *Job) Leased(now time.Time) bool {
	return j.LockedBy != "" && j.LockExpiresAt != nil && j.LockExpiresAt.After(now)
}

// Ready reports whether a queued Job is eligible to be leased as of now,
// i.e. its NextRunAt (if any) has passed.
func (j *Job) Ready(now time.Time) bool {
	return j.NextRunAt == nil || !j.NextRunAt.After(now)
}
