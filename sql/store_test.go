package sql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/job"
	rsql "github.com/nineoclock/relay/sql"
)

func newQueuedJob(typ string, priority int) *job.Job {
	now := time.Now().UTC()
	return &job.Job{
		Id:          uuid.New(),
		Type:        typ,
		Payload:     `{"n":1}`,
		Priority:    priority,
		Status:      job.Queued,
		MaxAttempts: 3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, j.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != "email" || got.Status != job.Queued {
		t.Fatalf("unexpected job: %+v", got)
	}
}

func TestInsertDuplicateConflicts(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}
	err := store.Insert(ctx, j)
	if err == nil {
		t.Fatal("expected conflict on duplicate insert")
	}
	if !errors.Is(err, relay.ErrConflict) {
		t.Fatalf("expected KindConflict, got %v", err)
	}
}

func TestGetMissing(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	_, err := store.Get(ctx, uuid.New())
	if !errors.Is(err, relay.ErrNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	low := newQueuedJob("email", 1)
	high := newQueuedJob("email", 9)
	other := newQueuedJob("sms", 5)
	for _, j := range []*job.Job{low, high, other} {
		if err := store.Insert(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	results, err := store.List(ctx, relay.Filter{Type: "email"}, relay.OrderReady, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Id != high.Id {
		t.Fatalf("expected high priority job first, got %v", results[0].Id)
	}
}

func TestLeaseThenStartThenComplete(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	leased, err := store.Lease(ctx, j.Id, "worker-1", now, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if leased.LockedBy != "worker-1" {
		t.Fatalf("expected lease by worker-1, got %q", leased.LockedBy)
	}
	if leased.Status != job.Queued {
		t.Fatalf("lease must not change status, got %v", leased.Status)
	}

	started, err := store.Start(ctx, j.Id, now)
	if err != nil {
		t.Fatal(err)
	}
	if started.Status != job.Running {
		t.Fatalf("expected running, got %v", started.Status)
	}
	if started.StartedAt == nil {
		t.Fatal("expected StartedAt to be set")
	}

	done, err := store.Complete(ctx, j.Id, "worker-1", now.Add(time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != job.Completed {
		t.Fatalf("expected completed, got %v", done.Status)
	}
	if done.LockedBy != "" {
		t.Fatal("expected lease cleared on completion")
	}
}

func TestLeaseContentionOnlyOneWinner(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	if _, err := store.Lease(ctx, j.Id, "worker-1", now, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	_, err := store.Lease(ctx, j.Id, "worker-2", now, now.Add(time.Minute))
	if !errors.Is(err, relay.ErrConflict) {
		t.Fatalf("expected second lease to conflict, got %v", err)
	}
}

func TestCompleteRejectsWrongWorker(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	if _, err := store.Lease(ctx, j.Id, "worker-1", now, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Start(ctx, j.Id, now); err != nil {
		t.Fatal(err)
	}

	_, err := store.Complete(ctx, j.Id, "worker-2", now)
	if !errors.Is(err, relay.ErrConflict) {
		t.Fatalf("expected conflict for wrong worker, got %v", err)
	}
}

func TestFailRequeuesWithBackoffUntilDead(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	j.MaxAttempts = 2
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}

	backoff := relay.DefaultBackoff()
	now := time.Now().UTC()

	if _, err := store.Lease(ctx, j.Id, "worker-1", now, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Start(ctx, j.Id, now); err != nil {
		t.Fatal(err)
	}
	failed, err := store.Fail(ctx, j.Id, "worker-1", "boom", now, backoff)
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status != job.Queued {
		t.Fatalf("expected requeue after first failure, got %v", failed.Status)
	}
	if failed.Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", failed.Attempts)
	}
	if failed.NextRunAt == nil || !failed.NextRunAt.After(now) {
		t.Fatal("expected NextRunAt to be set in the future")
	}

	if _, err := store.Lease(ctx, j.Id, "worker-1", *failed.NextRunAt, failed.NextRunAt.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Start(ctx, j.Id, *failed.NextRunAt); err != nil {
		t.Fatal(err)
	}
	dead, err := store.Fail(ctx, j.Id, "worker-1", "boom again", *failed.NextRunAt, backoff)
	if err != nil {
		t.Fatal(err)
	}
	if dead.Status != job.Dead {
		t.Fatalf("expected dead after exhausting attempts, got %v", dead.Status)
	}
	if dead.NextRunAt != nil {
		t.Fatal("expected NextRunAt cleared once dead")
	}
}

func TestReconcileExpireRequeuesExpiredLease(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	j.MaxAttempts = 5
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	leased, err := store.Lease(ctx, j.Id, "worker-1", now, now.Add(-time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Start(ctx, j.Id, now.Add(-2*time.Second)); err != nil {
		t.Fatal(err)
	}

	expired, err := store.Get(ctx, j.Id)
	if err != nil {
		t.Fatal(err)
	}
	expired.LockedBy = leased.LockedBy
	expired.LockExpiresAt = leased.LockExpiresAt

	claimed, dead, err := store.ReconcileExpire(ctx, expired, now, relay.DefaultBackoff())
	if err != nil {
		t.Fatal(err)
	}
	if !claimed {
		t.Fatal("expected reconcile to claim the expired lease")
	}
	if dead {
		t.Fatal("expected requeue, not dead, with attempts remaining")
	}

	got, err := store.Get(ctx, j.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != job.Queued {
		t.Fatalf("expected queued, got %v", got.Status)
	}
}

func TestReconcileExpireLosesToConcurrentComplete(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	leased, err := store.Lease(ctx, j.Id, "worker-1", now, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Start(ctx, j.Id, now); err != nil {
		t.Fatal(err)
	}

	snapshot, err := store.Get(ctx, j.Id)
	if err != nil {
		t.Fatal(err)
	}
	snapshot.LockedBy = leased.LockedBy
	snapshot.LockExpiresAt = leased.LockExpiresAt

	if _, err := store.Complete(ctx, j.Id, "worker-1", now.Add(time.Second)); err != nil {
		t.Fatal(err)
	}

	claimed, _, err := store.ReconcileExpire(ctx, snapshot, now.Add(time.Minute), relay.DefaultBackoff())
	if err != nil {
		t.Fatal(err)
	}
	if claimed {
		t.Fatal("expected reconcile to lose to the completed job")
	}
}

func TestListReadyHonorsNextRunAt(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	now := time.Now().UTC()
	future := now.Add(time.Hour)

	ready := newQueuedJob("email", 5)
	deferred := newQueuedJob("email", 5)
	deferred.NextRunAt = &future
	for _, j := range []*job.Job{ready, deferred} {
		if err := store.Insert(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	results, err := store.ListReady(ctx, now, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Id != ready.Id {
		t.Fatalf("expected only the ready job, got %+v", results)
	}
}

func TestListExpiredRunning(t *testing.T) {
	db := newTestDB(t)
	store := rsql.NewStore(db)
	ctx := context.Background()

	j := newQueuedJob("email", 5)
	if err := store.Insert(ctx, j); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	if _, err := store.Lease(ctx, j.Id, "worker-1", now, now.Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Start(ctx, j.Id, now.Add(-2*time.Second)); err != nil {
		t.Fatal(err)
	}

	expired, err := store.ListExpiredRunning(ctx, now, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(expired) != 1 || expired[0].Id != j.Id {
		t.Fatalf("expected the expired job, got %+v", expired)
	}
}
