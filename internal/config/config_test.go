package config_test

import (
	"testing"
	"time"

	"github.com/nineoclock/relay/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected default HTTPAddr: %q", cfg.HTTPAddr)
	}
	if len(cfg.Backoff) != 4 {
		t.Fatalf("expected default 4-entry backoff table, got %d", len(cfg.Backoff))
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RELAY_HTTP_ADDR", ":9090")
	t.Setenv("RELAY_HINT_CAPACITY", "256")
	t.Setenv("RELAY_BACKOFF_SECONDS", "5,15,45")
	t.Setenv("RELAY_RECONCILE_INTERVAL", "2s")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.HintCapacity != 256 {
		t.Fatalf("unexpected HintCapacity: %d", cfg.HintCapacity)
	}
	if len(cfg.Backoff) != 3 || cfg.Backoff[0] != 5*time.Second {
		t.Fatalf("unexpected Backoff: %v", cfg.Backoff)
	}
	if cfg.ReconcileInterval != 2*time.Second {
		t.Fatalf("unexpected ReconcileInterval: %v", cfg.ReconcileInterval)
	}
}

func TestLoadRejectsInvalidInt(t *testing.T) {
	t.Setenv("RELAY_HINT_CAPACITY", "not-a-number")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for invalid RELAY_HINT_CAPACITY")
	}
}
