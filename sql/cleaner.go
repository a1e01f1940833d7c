package sql

import (
	"context"
	"time"

	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/job"
	"github.com/uptrace/bun"
)

// Cleaner implements relay.Cleaner using a SQL backend.
//
// Cleaner permanently removes terminal jobs from storage. It is intended
// for retention management and administrative cleanup, and does not
// participate in lease or lifecycle logic.
type Cleaner struct {
	db *bun.DB
}

// NewCleaner creates a new SQL-backed Cleaner.
//
// The provided *bun.DB must be properly configured and connected. Schema
// initialization must be completed before using Cleaner.
func NewCleaner(db *bun.DB) *Cleaner {
	return &Cleaner{db: db}
}

// Clean deletes jobs matching the provided status and time filter.
//
// Only terminal states are eligible: job.Completed and job.Dead. If status
// is job.Unknown (zero value), both are eligible. A non-terminal status
// yields a KindValidation error.
//
// If before is non-nil, only jobs with updated_at <= *before are deleted.
//
// Clean does not lock or coordinate with running workers; queued and
// running jobs are never eligible regardless of the time filter.
func (c *Cleaner) Clean(ctx context.Context, status job.Status, before *time.Time) (int64, error) {
	if status != job.Unknown && status != job.Completed && status != job.Dead {
		return 0, &relay.Error{Kind: relay.KindValidation, Message: "clean: status must be completed, dead, or unknown"}
	}
	query := c.db.NewDelete().Model((*jobModel)(nil))
	if status != job.Unknown {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status IN (?, ?)", job.Completed, job.Dead)
	}
	if before != nil {
		query = query.Where("updated_at <= ?", *before)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return 0, wrapDBErr(err)
	}
	return getAffected(res), nil
}
