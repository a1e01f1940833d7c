package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/internal"
	"github.com/nineoclock/relay/job"
)

// RetentionConfig defines the scheduling and filtering parameters for a
// RetentionWorker.
//
// Status restricts deletion to one terminal status; job.Unknown targets
// both Completed and Dead.
//
// Interval defines how often the retention sweep runs.
//
// If Before is true, deletion is restricted to jobs whose UpdatedAt is
// older than now - Delta.
type RetentionConfig struct {
	Status   job.Status
	Interval time.Duration
	Before   bool
	Delta    time.Duration
}

// RetentionWorker periodically invokes a relay.Cleaner according to the
// provided configuration.
//
// RetentionWorker is intended for administrative housekeeping only; it
// does not participate in job processing or lease management, and only
// ever touches terminal jobs.
//
// RetentionWorker has a strict lifecycle:
//   - Start may only be called once.
//   - Stop must be called to terminate it, and waits for the in-flight
//     sweep to finish or the timeout to expire.
type RetentionWorker struct {
	internal.LCBase
	cleaner  relay.Cleaner
	task     internal.TimerTask
	log      *slog.Logger
	status   job.Status
	interval time.Duration
	before   bool
	delta    time.Duration
}

// NewRetentionWorker creates a new RetentionWorker using the provided
// Cleaner and configuration. The worker is not started automatically.
func NewRetentionWorker(cleaner relay.Cleaner, config *RetentionConfig, log *slog.Logger) *RetentionWorker {
	return &RetentionWorker{
		cleaner:  cleaner,
		log:      log,
		status:   config.Status,
		interval: config.Interval,
		before:   config.Before,
		delta:    config.Delta,
	}
}

func (rw *RetentionWorker) beforeStamp() *time.Time {
	if !rw.before {
		return nil
	}
	ret := time.Now()
	if rw.delta != 0 {
		ret = ret.Add(-rw.delta)
	}
	return &ret
}

func (rw *RetentionWorker) clean(ctx context.Context) {
	before := rw.beforeStamp()
	count, err := rw.cleaner.Clean(ctx, rw.status, before)
	if err != nil {
		rw.log.Error("retention sweep failed", "err", err)
		return
	}
	rw.log.Info("retention sweep complete", "deleted", count)
}

// Start begins periodic execution of the retention sweep.
//
// Start returns internal.ErrDoubleStarted if the worker has already been
// started.
func (rw *RetentionWorker) Start(ctx context.Context) error {
	if err := rw.TryStart(); err != nil {
		return err
	}
	rw.task.Start(ctx, rw.clean, rw.interval)
	return nil
}

// Stop terminates the background retention task.
//
// Stop waits until the task finishes or the timeout expires, returning
// internal.ErrStopTimeout if it does not. Stop returns
// internal.ErrDoubleStopped if the worker is not running.
func (rw *RetentionWorker) Stop(timeout time.Duration) error {
	return rw.TryStop(timeout, rw.task.Stop)
}
