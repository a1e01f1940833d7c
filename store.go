package relay

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay/job"
)

// Filter narrows a List call. A zero Filter matches every job.
type Filter struct {
	// Status restricts results to one status. job.Unknown means "any".
	Status job.Status
	// Type restricts results to one dispatch type. Empty means "any".
	Type string
}

// Order selects the sort applied by List.
type Order int

const (
	// OrderCreatedDesc returns the newest jobs first. This is the order
	// used by the administrative/listing surface.
	OrderCreatedDesc Order = iota

	// OrderReady returns jobs ordered by priority descending, then
	// created_at ascending, then id ascending — the deterministic
	// selection order used for ready-queue scans and hint refreshes.
	OrderReady
)

// Store is the durable persistence contract for jobs. Every method that
// mutates a row must do so as a single atomic conditional update: observe
// an expected predecessor state and transition it, succeeding for exactly
// one caller when two callers race on the same job.
//
// Store implementations hold no business logic beyond the preconditions
// documented per method; decisions such as "is this attempt count exhausted"
// are expressed as part of the conditional update itself so the whole
// transition commits atomically.
type Store interface {
	// Insert persists a newly-submitted job. It fails if Id collides with
	// an existing row.
	Insert(ctx context.Context, j *job.Job) error

	// Get returns the job with the given id, or a KindNotFound error.
	Get(ctx context.Context, id uuid.UUID) (*job.Job, error)

	// List returns up to limit jobs matching filter in the given order.
	// limit <= 0 means unbounded.
	List(ctx context.Context, filter Filter, order Order, limit int) ([]*job.Job, error)

	// Lease grants worker ownership of a queued, ready, unlocked job,
	// setting LockedBy/LockExpiresAt. Status remains Queued. Fails with
	// KindConflict if the job is not currently leaseable, KindNotFound if
	// it does not exist.
	Lease(ctx context.Context, id uuid.UUID, workerID string, now, until time.Time) (*job.Job, error)

	// Start transitions a leased, ready, queued job to Running. StartedAt
	// is set only if it was previously unset. Fails with KindConflict if
	// the precondition (queued, valid lease, ready) does not hold.
	Start(ctx context.Context, id uuid.UUID, now time.Time) (*job.Job, error)

	// Complete transitions a running job held by workerID to Completed,
	// clearing the lease. Fails with KindConflict if the job is not
	// running or is not held by workerID.
	Complete(ctx context.Context, id uuid.UUID, workerID string, now time.Time) (*job.Job, error)

	// Fail records a failed attempt on a running job held by workerID. The
	// transition to Dead vs. requeued-with-backoff, and the concrete
	// NextRunAt, are computed as part of the single atomic update using
	// backoff's table. Fails with KindConflict if the job is not running
	// or is not held by workerID.
	Fail(ctx context.Context, id uuid.UUID, workerID, reason string, now time.Time, backoff BackoffTable) (*job.Job, error)

	// ListExpiredRunning returns up to limit jobs currently Running whose
	// lease has expired as of now. It is a plain read; reclaiming a row
	// still requires ReconcileExpire.
	ListExpiredRunning(ctx context.Context, now time.Time, limit int) ([]*job.Job, error)

	// ReconcileExpire attempts to reclaim a single expired lease observed
	// via ListExpiredRunning, applying the same attempts/backoff rule as
	// Fail. The update is guarded on the exact (LockedBy, LockExpiresAt)
	// pair observed in j, so a real worker's Complete/Fail racing in
	// between wins and this call reports claimed=false rather than
	// clobbering it.
	ReconcileExpire(ctx context.Context, j *job.Job, now time.Time, backoff BackoffTable) (claimed bool, dead bool, err error)

	// ListReady returns up to limit Queued jobs whose NextRunAt has
	// passed, ordered by priority descending, created_at ascending, id
	// ascending. It is a plain read used to refresh the ready-queue hint.
	ListReady(ctx context.Context, now time.Time, limit int) ([]*job.Job, error)
}
