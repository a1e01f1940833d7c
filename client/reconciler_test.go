package client_test

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/client"
)

type mockReconciling struct {
	calls atomic.Int32
}

func (m *mockReconciling) Reconcile(ctx context.Context, limit int) (relay.ReconcileStats, error) {
	m.calls.Add(1)
	return relay.ReconcileStats{Recovered: 1}, nil
}

func TestReconcilerSweepsPeriodically(t *testing.T) {
	engine := &mockReconciling{}
	cfg := &client.ReconcilerConfig{Interval: 30 * time.Millisecond, Limit: 10}
	r := client.NewReconciler(engine, cfg, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.Start(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if err := r.Stop(time.Second); err != nil {
		t.Fatal(err)
	}

	if engine.calls.Load() < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", engine.calls.Load())
	}
}

func TestReconcilerLifecycleErrors(t *testing.T) {
	engine := &mockReconciling{}
	cfg := &client.ReconcilerConfig{Interval: time.Second}
	r := client.NewReconciler(engine, cfg, slog.Default())

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Start(ctx); err == nil {
		t.Fatal("expected double-start error")
	}
	if err := r.Stop(time.Second); err != nil {
		t.Fatal(err)
	}
	if err := r.Stop(time.Second); err == nil {
		t.Fatal("expected double-stop error")
	}
}
