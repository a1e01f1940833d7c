package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/job"
	"github.com/uptrace/bun"
)

// Store implements relay.Store using a SQL backend via github.com/uptrace/bun.
//
// Every mutating method issues exactly one UPDATE whose WHERE clause
// encodes the full precondition for the transition, and whose SET clause
// uses CASE expressions where the outcome depends on the row's current
// value (e.g. whether attempts, once incremented, reaches max_attempts).
// This keeps each transition a single round trip and avoids the
// read-then-write race the design notes call out.
type Store struct {
	db *bun.DB
}

// NewStore creates a new SQL-backed Store. The provided *bun.DB must be
// configured and connected, and InitDB must have been run against it.
func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Insert persists a new job. It fails with KindConflict if the id already
// exists.
func (s *Store) Insert(ctx context.Context, j *job.Job) error {
	model := fromJob(j)
	_, err := s.db.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return &relay.Error{Kind: relay.KindConflict, Message: fmt.Sprintf("job %s already exists", j.Id), Cause: err}
		}
		return wrapDBErr(err)
	}
	return nil
}

// Get retrieves a job by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	var m jobModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &relay.Error{Kind: relay.KindNotFound, Message: fmt.Sprintf("job %s not found", id)}
		}
		return nil, wrapDBErr(err)
	}
	return m.toJob(), nil
}

// List returns jobs matching filter in the requested order.
func (s *Store) List(ctx context.Context, filter relay.Filter, order relay.Order, limit int) ([]*job.Job, error) {
	query := s.db.NewSelect().Model((*jobModel)(nil))
	if filter.Status != job.Unknown {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	switch order {
	case relay.OrderReady:
		query = query.Order("priority DESC", "created_at ASC", "id ASC")
	default:
		query = query.Order("created_at DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []*jobModel
	if err := query.Scan(ctx, &models); err != nil {
		return nil, wrapDBErr(err)
	}
	return toJobs(models), nil
}

// Lease grants workerID a lease on id, provided it is queued, ready and not
// already validly leased.
func (s *Store) Lease(ctx context.Context, id uuid.UUID, workerID string, now, until time.Time) (*job.Job, error) {
	var models []*jobModel
	_, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("locked_by = ?", workerID).
		Set("lock_expires_at = ?", until).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", job.Queued).
		Where("(next_run_at IS NULL OR next_run_at <= ?)", now).
		Where("(lock_expires_at IS NULL OR lock_expires_at <= ?)", now).
		Returning("*").
		Scan(ctx, &models)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	if len(models) == 0 {
		return nil, s.conflictOrNotFound(ctx, id, "job %s is not leaseable")
	}
	return models[0].toJob(), nil
}

// Start transitions a leased, ready, queued job to running.
func (s *Store) Start(ctx context.Context, id uuid.UUID, now time.Time) (*job.Job, error) {
	var models []*jobModel
	_, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Running).
		Set("started_at = COALESCE(started_at, ?)", now).
		Set("next_run_at = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", job.Queued).
		Where("locked_by IS NOT NULL AND locked_by <> ''").
		Where("lock_expires_at IS NOT NULL AND lock_expires_at > ?", now).
		Where("(next_run_at IS NULL OR next_run_at <= ?)", now).
		Returning("*").
		Scan(ctx, &models)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	if len(models) == 0 {
		return nil, s.conflictOrNotFound(ctx, id, "job %s cannot be started")
	}
	return models[0].toJob(), nil
}

// Complete transitions a running job held by workerID to completed.
func (s *Store) Complete(ctx context.Context, id uuid.UUID, workerID string, now time.Time) (*job.Job, error) {
	var models []*jobModel
	_, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", job.Completed).
		Set("completed_at = ?", now).
		Set("locked_by = NULL").
		Set("lock_expires_at = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", job.Running).
		Where("locked_by = ?", workerID).
		Returning("*").
		Scan(ctx, &models)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	if len(models) == 0 {
		return nil, s.conflictOrNotFound(ctx, id, "job %s is not running under this worker")
	}
	return models[0].toJob(), nil
}

// Fail records a failed attempt on a running job held by workerID,
// transitioning it to dead or back to queued-with-backoff in one atomic
// statement.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, workerID, reason string, now time.Time, backoff relay.BackoffTable) (*job.Job, error) {
	var models []*jobModel
	_, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("attempts = attempts + 1").
		Set("last_error = ?", reason).
		Set(deadOrQueuedCase(), job.Dead, job.Queued).
		Set(nextRunAtCase(now, backoff)...).
		Set("locked_by = NULL").
		Set("lock_expires_at = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Where("status = ?", job.Running).
		Where("locked_by = ?", workerID).
		Returning("*").
		Scan(ctx, &models)
	if err != nil {
		return nil, wrapDBErr(err)
	}
	if len(models) == 0 {
		return nil, s.conflictOrNotFound(ctx, id, "job %s is not running under this worker")
	}
	return models[0].toJob(), nil
}

// ListExpiredRunning returns running jobs whose lease has expired.
func (s *Store) ListExpiredRunning(ctx context.Context, now time.Time, limit int) ([]*job.Job, error) {
	query := s.db.NewSelect().
		Model((*jobModel)(nil)).
		Where("status = ?", job.Running).
		Where("lock_expires_at IS NOT NULL AND lock_expires_at <= ?", now)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []*jobModel
	if err := query.Scan(ctx, &models); err != nil {
		return nil, wrapDBErr(err)
	}
	return toJobs(models), nil
}

// ReconcileExpire reclaims a single expired lease, guarded on the exact
// lease pair observed by the caller so a genuine concurrent Complete/Fail
// is never clobbered.
func (s *Store) ReconcileExpire(ctx context.Context, j *job.Job, now time.Time, backoff relay.BackoffTable) (claimed bool, dead bool, err error) {
	if j.LockExpiresAt == nil {
		return false, false, &relay.Error{Kind: relay.KindInternal, Message: "reconcile: job has no lock_expires_at"}
	}
	var models []*jobModel
	_, execErr := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("attempts = attempts + 1").
		Set("last_error = ?", "lease expired").
		Set(deadOrQueuedCase(), job.Dead, job.Queued).
		Set(nextRunAtCase(now, backoff)...).
		Set("locked_by = NULL").
		Set("lock_expires_at = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", j.Id).
		Where("status = ?", job.Running).
		Where("locked_by = ?", j.LockedBy).
		Where("lock_expires_at = ?", *j.LockExpiresAt).
		Returning("*").
		Scan(ctx, &models)
	if execErr != nil {
		return false, false, wrapDBErr(execErr)
	}
	if len(models) == 0 {
		return false, false, nil
	}
	return true, models[0].Status == job.Dead, nil
}

// ListReady returns queued, ready jobs ordered for ready-queue publication.
func (s *Store) ListReady(ctx context.Context, now time.Time, limit int) ([]*job.Job, error) {
	query := s.db.NewSelect().
		Model((*jobModel)(nil)).
		Where("status = ?", job.Queued).
		Where("(next_run_at IS NULL OR next_run_at <= ?)", now).
		Order("priority DESC", "created_at ASC", "id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []*jobModel
	if err := query.Scan(ctx, &models); err != nil {
		return nil, wrapDBErr(err)
	}
	return toJobs(models), nil
}

// conflictOrNotFound distinguishes "job doesn't exist" from "job exists but
// precondition failed" after a zero-row conditional update, so callers get
// KindNotFound rather than a misleading KindConflict.
func (s *Store) conflictOrNotFound(ctx context.Context, id uuid.UUID, format string) error {
	exists, err := s.db.NewSelect().Model((*jobModel)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return wrapDBErr(err)
	}
	if !exists {
		return &relay.Error{Kind: relay.KindNotFound, Message: fmt.Sprintf("job %s not found", id)}
	}
	return &relay.Error{Kind: relay.KindConflict, Message: fmt.Sprintf(format, id)}
}

// deadOrQueuedCase returns the raw SQL fragment deciding the post-failure
// status: dead once the just-incremented attempts reaches max_attempts,
// otherwise queued. The two bind arguments are (dead value, queued value).
func deadOrQueuedCase() string {
	return "status = CASE WHEN attempts + 1 >= max_attempts THEN ? ELSE ? END"
}

// nextRunAtCase returns the Set() arguments computing next_run_at: NULL
// once the job is dead, otherwise now + backoff.Next(attempts+1) for each
// of the backoff table's thresholds. Four branches match the fixed
// 1/2/3/4+ backoff table; any longer table's trailing entries collapse
// into the final ELSE.
func nextRunAtCase(now time.Time, backoff relay.BackoffTable) []any {
	d1 := now.Add(backoff.Next(1))
	d2 := now.Add(backoff.Next(2))
	d3 := now.Add(backoff.Next(3))
	d4 := now.Add(backoff.Next(4))
	expr := "next_run_at = CASE " +
		"WHEN attempts + 1 >= max_attempts THEN NULL " +
		"WHEN attempts + 1 = 1 THEN ? " +
		"WHEN attempts + 1 = 2 THEN ? " +
		"WHEN attempts + 1 = 3 THEN ? " +
		"ELSE ? END"
	return append([]any{expr}, d1, d2, d3, d4)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

func wrapDBErr(err error) error {
	if err == nil {
		return nil
	}
	return &relay.Error{Kind: relay.KindStorageUnavailable, Message: err.Error(), Cause: err}
}
