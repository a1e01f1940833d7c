package relay

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay/hint"
	"github.com/nineoclock/relay/job"
)

const (
	minPriority = 1
	maxPriority = 10

	minMaxAttempts = 1
	maxMaxAttempts = 10

	minLeaseSeconds = 5
	maxLeaseSeconds = 300

	defaultPriority    = 5
	defaultMaxAttempts = 3
)

// ReconcileStats summarizes one Reconcile call.
type ReconcileStats struct {
	Recovered int // expired leases returned to queued with backoff
	Dead      int // expired leases that exhausted their retry budget
	Requeued  int // ready jobs republished to the hint
}

// Engine implements the job lifecycle described in package relay's doc
// comment: submission, leasing, execution reporting and reconciliation.
// It holds no authoritative state of its own — every transition is a
// single conditional update against Store — so an Engine is safe to
// construct per request or share across goroutines.
type Engine struct {
	store   Store
	hint    *hint.Hint
	backoff BackoffTable
	log     *slog.Logger
}

// NewEngine constructs an Engine over the given Store. hint may be nil, in
// which case Submit and Reconcile simply skip publishing ids (workers fall
// back to scanning the Store, which the hint is always allowed to be
// missing from per its advisory contract). backoff defaults to
// DefaultBackoff() if nil.
func NewEngine(store Store, h *hint.Hint, backoff BackoffTable, log *slog.Logger) *Engine {
	if backoff == nil {
		backoff = DefaultBackoff()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: store, hint: h, backoff: backoff, log: log}
}

// Submit validates input, allocates a fresh id, persists a new queued job
// with zero attempts and no lease, and publishes the id to the hint.
func (e *Engine) Submit(ctx context.Context, jobType, payload string, priority, maxAttempts int) (*job.Job, error) {
	if jobType == "" {
		return nil, newError(KindValidation, "type must not be empty")
	}
	if priority == 0 {
		priority = defaultPriority
	}
	if priority < minPriority || priority > maxPriority {
		return nil, newError(KindValidation, "priority must be in [%d,%d], got %d", minPriority, maxPriority, priority)
	}
	if maxAttempts == 0 {
		maxAttempts = defaultMaxAttempts
	}
	if maxAttempts < minMaxAttempts || maxAttempts > maxMaxAttempts {
		return nil, newError(KindValidation, "max_attempts must be in [%d,%d], got %d", minMaxAttempts, maxMaxAttempts, maxAttempts)
	}

	now := time.Now()
	j := &job.Job{
		Id:          uuid.New(),
		Type:        jobType,
		Payload:     payload,
		Priority:    priority,
		Status:      job.Queued,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.store.Insert(ctx, j); err != nil {
		return nil, wrapError(KindStorageUnavailable, err, "insert job %s: %v", j.Id, err)
	}
	e.publish(j.Id)
	return j, nil
}

// Get returns the job with the given id.
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	j, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "get job %s", id)
	}
	return j, nil
}

// List returns jobs matching filter, in the given order, up to limit.
func (e *Engine) List(ctx context.Context, filter Filter, order Order, limit int) ([]*job.Job, error) {
	jobs, err := e.store.List(ctx, filter, order, limit)
	if err != nil {
		return nil, wrapError(KindStorageUnavailable, err, "list jobs: %v", err)
	}
	return jobs, nil
}

// Lease grants workerID a lease on id for leaseSeconds, provided the job is
// queued, ready (NextRunAt has passed) and not already validly leased.
func (e *Engine) Lease(ctx context.Context, id uuid.UUID, workerID string, leaseSeconds int) (*job.Job, error) {
	if workerID == "" {
		return nil, newError(KindValidation, "worker_id must not be empty")
	}
	if leaseSeconds < minLeaseSeconds || leaseSeconds > maxLeaseSeconds {
		return nil, newError(KindValidation, "lease_seconds must be in [%d,%d], got %d", minLeaseSeconds, maxLeaseSeconds, leaseSeconds)
	}
	now := time.Now()
	until := now.Add(time.Duration(leaseSeconds) * time.Second)
	j, err := e.store.Lease(ctx, id, workerID, now, until)
	if err != nil {
		return nil, wrapStoreErr(err, "lease job %s", id)
	}
	return j, nil
}

// Start transitions a leased, ready, queued job to running.
func (e *Engine) Start(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	j, err := e.store.Start(ctx, id, time.Now())
	if err != nil {
		return nil, wrapStoreErr(err, "start job %s", id)
	}
	return j, nil
}

// Complete transitions a running job held by workerID to completed.
func (e *Engine) Complete(ctx context.Context, id uuid.UUID, workerID string) (*job.Job, error) {
	if workerID == "" {
		return nil, newError(KindValidation, "worker_id must not be empty")
	}
	j, err := e.store.Complete(ctx, id, workerID, time.Now())
	if err != nil {
		return nil, wrapStoreErr(err, "complete job %s", id)
	}
	return j, nil
}

// Fail records a failed attempt on a running job held by workerID. The job
// either becomes dead (attempts exhausted) or is requeued with the
// configured backoff delay.
func (e *Engine) Fail(ctx context.Context, id uuid.UUID, workerID, reason string) (*job.Job, error) {
	if workerID == "" {
		return nil, newError(KindValidation, "worker_id must not be empty")
	}
	if reason == "" {
		return nil, newError(KindValidation, "error must not be empty")
	}
	j, err := e.store.Fail(ctx, id, workerID, reason, time.Now(), e.backoff)
	if err != nil {
		return nil, wrapStoreErr(err, "fail job %s", id)
	}
	return j, nil
}

// Reconcile performs the two-phase sweep described in the data model:
// first it reclaims running jobs whose lease has expired, applying the
// same attempts/backoff rule as Fail; then it republishes ready queued
// jobs to the hint. Both phases are bounded by limit and commit per-row,
// so a partial failure still reports the count of rows that succeeded.
func (e *Engine) Reconcile(ctx context.Context, limit int) (ReconcileStats, error) {
	var stats ReconcileStats
	now := time.Now()

	expired, err := e.store.ListExpiredRunning(ctx, now, limit)
	if err != nil {
		return stats, wrapError(KindStorageUnavailable, err, "list expired running jobs: %v", err)
	}
	for _, j := range expired {
		claimed, dead, err := e.store.ReconcileExpire(ctx, j, now, e.backoff)
		if err != nil {
			e.log.Error("reconcile: failed to reclaim job", "id", j.Id, "err", err)
			continue
		}
		if !claimed {
			// Raced with the original worker's own Complete/Fail; its
			// outcome wins and this row is left alone.
			continue
		}
		if dead {
			stats.Dead++
		} else {
			stats.Recovered++
			e.publish(j.Id)
		}
	}

	ready, err := e.store.ListReady(ctx, now, limit)
	if err != nil {
		return stats, wrapError(KindStorageUnavailable, err, "list ready jobs: %v", err)
	}
	for _, j := range ready {
		e.publish(j.Id)
		stats.Requeued++
	}

	return stats, nil
}

// RequeueReady republishes up to limit ready queued jobs to the hint,
// without touching expired leases. It is the standalone counterpart to
// Reconcile's second phase, exposed separately because a caller may want
// to refresh the hint (e.g. after a restart with an empty hint) without
// paying for a full expired-lease sweep.
func (e *Engine) RequeueReady(ctx context.Context, limit int) (int, error) {
	ready, err := e.store.ListReady(ctx, time.Now(), limit)
	if err != nil {
		return 0, wrapError(KindStorageUnavailable, err, "list ready jobs: %v", err)
	}
	for _, j := range ready {
		e.publish(j.Id)
	}
	return len(ready), nil
}

func (e *Engine) publish(id uuid.UUID) {
	if e.hint == nil {
		return
	}
	e.hint.Push(id)
}

// wrapStoreErr normalizes an error returned by Store into a relay.Error,
// preserving an already-classified *Error unchanged.
func wrapStoreErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*Error); ok {
		return re
	}
	return wrapError(KindStorageUnavailable, err, format+": %v", append(args, err)...)
}
