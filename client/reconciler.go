package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/internal"
)

// Reconciling is the engine operation a Reconciler drives periodically.
// *relay.Engine satisfies it.
type Reconciling interface {
	Reconcile(ctx context.Context, limit int) (relay.ReconcileStats, error)
}

// ReconcilerConfig defines the scheduling parameters for a Reconciler.
//
// Interval defines how often the reconciliation sweep runs.
// Limit bounds how many expired leases and ready jobs are processed per
// sweep; 0 means unbounded.
type ReconcilerConfig struct {
	Interval time.Duration
	Limit    int
}

// Reconciler periodically drives an engine's Reconcile sweep: reclaiming
// jobs whose lease expired without a report from the worker that held it,
// and republishing ready jobs that a lost hint push left undiscovered.
//
// Reconciler has a strict lifecycle:
//   - Start may only be called once.
//   - Stop must be called to terminate it, and waits for the in-flight
//     sweep to finish or the timeout to expire.
type Reconciler struct {
	internal.LCBase
	engine   Reconciling
	task     internal.TimerTask
	log      *slog.Logger
	interval time.Duration
	limit    int
	// id distinguishes this reconciler instance in logs when several run
	// against the same engine (e.g. one per replica).
	id uuid.UUID
}

// NewReconciler creates a new Reconciler over engine. The reconciler is
// not started automatically; call Start to begin periodic sweeps.
func NewReconciler(engine Reconciling, config *ReconcilerConfig, log *slog.Logger) *Reconciler {
	return &Reconciler{
		engine:   engine,
		log:      log,
		interval: config.Interval,
		limit:    config.Limit,
		id:       uuid.New(),
	}
}

func (r *Reconciler) sweep(ctx context.Context) {
	stats, err := r.engine.Reconcile(ctx, r.limit)
	if err != nil {
		r.log.Error("reconcile sweep failed", "reconciler", r.id, "err", err)
		return
	}
	r.log.Info("reconcile sweep complete",
		"reconciler", r.id,
		"recovered", stats.Recovered,
		"dead", stats.Dead,
		"requeued", stats.Requeued,
	)
}

// Start begins periodic execution of the reconciliation sweep.
//
// Start returns internal.ErrDoubleStarted if the reconciler has already
// been started.
func (r *Reconciler) Start(ctx context.Context) error {
	if err := r.TryStart(); err != nil {
		return err
	}
	r.task.Start(ctx, r.sweep, r.interval)
	return nil
}

// Stop terminates the background sweep task.
//
// Stop waits until the in-flight sweep finishes or the timeout expires,
// returning internal.ErrStopTimeout if it does not. Stop returns
// internal.ErrDoubleStopped if the reconciler is not running.
func (r *Reconciler) Stop(timeout time.Duration) error {
	return r.TryStop(timeout, r.task.Stop)
}
