package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/internal"
	"github.com/nineoclock/relay/job"
)

// Handler processes one leased, running job.
//
// The provided context is canceled when the worker is shutting down.
// Handler must be idempotent: relay provides at-most-one-concurrent-lease
// semantics, not exactly-once execution, and a job may be retried after a
// crash that occurs after the handler ran but before Complete committed.
//
// A nil return marks the job Complete. A non-nil return records the
// error and either requeues the job with backoff or marks it Dead,
// according to the engine's retry policy.
type Handler func(ctx context.Context, j *job.Job) error

// JobClient is the subset of an engine's lifecycle operations a Worker
// needs. *relay.Engine satisfies it directly for in-process use; an
// HTTP-backed implementation satisfies it for remote workers.
type JobClient interface {
	Lease(ctx context.Context, id uuid.UUID, workerID string, leaseSeconds int) (*job.Job, error)
	Start(ctx context.Context, id uuid.UUID) (*job.Job, error)
	Complete(ctx context.Context, id uuid.UUID, workerID string) (*job.Job, error)
	Fail(ctx context.Context, id uuid.UUID, workerID, reason string) (*job.Job, error)
}

// WorkerConfig defines the runtime behavior of a Worker.
//
// Concurrency is the number of concurrent handler invocations.
// Queue is the internal buffering capacity between polling Source and
// dispatching to handlers.
// BatchSize is the maximum number of candidate ids fetched from Source
// per poll.
// PollInterval is how often Source is polled.
// LeaseSeconds is the lease duration requested on every successful Lease.
// It must comfortably exceed the expected handler runtime: relay has no
// lease-extension operation, so a lease that expires mid-handler makes
// the job eligible for reconciliation while still running.
type WorkerConfig struct {
	Concurrency  int
	Queue        int
	BatchSize    int
	PollInterval time.Duration
	LeaseSeconds int
}

// Worker coordinates polling a Source, leasing, starting, dispatching and
// reporting the outcome of jobs.
//
// Worker has a strict lifecycle:
//   - Start may only be called once.
//   - Stop gracefully shuts down polling and in-flight handlers, waiting
//     until they finish or the timeout expires.
type Worker struct {
	internal.LCBase
	client       JobClient
	source       Source
	pollTask     internal.TimerTask
	pool         *internal.WorkerPool[uuid.UUID]
	log          *slog.Logger
	handler      Handler
	workerID     string
	batchSize    int
	interval     time.Duration
	leaseSeconds int
}

// NewWorker creates a new Worker. The worker is not started automatically;
// call Start to begin polling and processing.
func NewWorker(client JobClient, source Source, handler Handler, workerID string, config *WorkerConfig, log *slog.Logger) *Worker {
	return &Worker{
		client:       client,
		source:       source,
		pool:         internal.NewWorkerPool[uuid.UUID](config.Concurrency, config.Queue, log),
		log:          log,
		handler:      handler,
		workerID:     workerID,
		batchSize:    config.BatchSize,
		interval:     config.PollInterval,
		leaseSeconds: config.LeaseSeconds,
	}
}

func (w *Worker) poll(ctx context.Context) {
	ids, err := w.source.Next(ctx, w.batchSize)
	if err != nil {
		w.log.Error("source poll failed", "err", err)
		return
	}
	for _, id := range ids {
		if !w.pool.Push(id) {
			w.log.Debug("id push interrupted via shutdown", "id", id)
			return
		}
	}
}

func (w *Worker) handle(ctx context.Context, id uuid.UUID) {
	j, err := w.client.Lease(ctx, id, w.workerID, w.leaseSeconds)
	if err != nil {
		if !errors.Is(err, relay.ErrConflict) && !errors.Is(err, relay.ErrNotFound) {
			w.log.Error("lease failed", "id", id, "err", err)
		}
		return
	}

	j, err = w.client.Start(ctx, j.Id)
	if err != nil {
		w.log.Error("start failed", "id", j.Id, "err", err)
		return
	}

	if herr := w.handler(ctx, j); herr != nil {
		if _, err := w.client.Fail(ctx, j.Id, w.workerID, herr.Error()); err != nil {
			w.log.Error("cannot fail job", "id", j.Id, "err", err)
		}
		return
	}

	if _, err := w.client.Complete(ctx, j.Id, w.workerID); err != nil {
		w.log.Error("cannot complete job", "id", j.Id, "err", err)
	}
}

// Start begins background polling and processing of jobs.
//
// Start returns internal.ErrDoubleStarted if the worker has already been
// started.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.TryStart(); err != nil {
		return err
	}
	w.pool.Start(ctx, w.handle)
	w.pollTask.Start(ctx, w.poll, w.interval)
	return nil
}

func (w *Worker) doStop() internal.DoneChan {
	first := w.pollTask.Stop()
	second := w.pool.Stop()
	return internal.Combine(first, second)
}

// Stop initiates graceful shutdown: polling stops, then Stop waits for
// in-flight handlers to finish or the timeout to expire.
//
// Stop returns internal.ErrStopTimeout if shutdown does not complete in
// time, and internal.ErrDoubleStopped if the worker is not running.
func (w *Worker) Stop(timeout time.Duration) error {
	return w.TryStop(timeout, w.doStop)
}
