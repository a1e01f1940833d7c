package relay

import (
	"context"
	"time"

	"github.com/nineoclock/relay/job"
)

// Cleaner provides a mechanism for permanently removing terminal jobs from
// storage.
//
// Cleaner is intended for administrative retention management. It is not
// part of the lifecycle engine's correctness story — invariant 7 of the
// data model explicitly allows destruction of terminal jobs "by external
// retention policy" — but since relay has no schema-migration or
// housekeeping story of its own, a minimal Cleaner is provided so a
// deployment isn't left to hand-roll ad hoc DELETE statements.
//
// Clean must only ever remove jobs in a terminal state (completed or dead).
// Implementations must reject attempts to delete queued or running jobs.
type Cleaner interface {
	// Clean deletes jobs matching the given status and time condition.
	//
	// If status is job.Unknown, both completed and dead jobs are eligible.
	// A non-terminal status yields a KindValidation error.
	//
	// If before is non-nil, only jobs whose UpdatedAt is at or before
	// *before are deleted; nil applies no time filter.
	//
	// Clean returns the number of deleted rows.
	Clean(ctx context.Context, status job.Status, before *time.Time) (int64, error)
}
