// Package config loads relay's small set of deployment-time settings from
// environment variables.
//
// There is no YAML/TOML layer and no dependency on a generic config
// library: the whole surface is six settings with sane defaults, and the
// teacher and the rest of the example pack have no precedent for a
// config library pulled in at this scale (see DESIGN.md).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nineoclock/relay"
)

// Config holds every environment-tunable setting relay's binaries need.
type Config struct {
	// StorageDSN is passed to the SQL driver. Defaults to an in-memory
	// SQLite database suitable only for local experimentation.
	StorageDSN string

	// HintCapacity bounds the in-process ready-queue hint. A non-positive
	// value means unbounded.
	HintCapacity int

	// DefaultLeaseSeconds is the configured default lease window. Neither
	// relayd nor relay-worker reads it; client.Worker takes its lease
	// window from WorkerConfig.LeaseSeconds.
	DefaultLeaseSeconds int

	// Backoff is the fixed retry delay table applied on job failure.
	Backoff relay.BackoffTable

	// HTTPAddr is the listen address for the Scheduler API server.
	HTTPAddr string

	// ReconcileInterval governs how often client.Reconciler sweeps.
	ReconcileInterval time.Duration
}

const (
	envStorageDSN        = "RELAY_STORAGE_DSN"
	envHintCapacity      = "RELAY_HINT_CAPACITY"
	envDefaultLease      = "RELAY_DEFAULT_LEASE_SECONDS"
	envBackoff           = "RELAY_BACKOFF_SECONDS" // comma-separated, e.g. "10,30,90,300"
	envHTTPAddr          = "RELAY_HTTP_ADDR"
	envReconcileInterval = "RELAY_RECONCILE_INTERVAL"
)

func defaultConfig() *Config {
	return &Config{
		StorageDSN:          "file::memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		HintCapacity:        1024,
		DefaultLeaseSeconds: 30,
		Backoff:             relay.DefaultBackoff(),
		HTTPAddr:            ":8080",
		ReconcileInterval:   10 * time.Second,
	}
}

// Load reads Config from the environment, falling back to defaults for any
// variable that is unset. It returns an error if a set variable fails to
// parse.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if v, ok := os.LookupEnv(envStorageDSN); ok && v != "" {
		cfg.StorageDSN = v
	}

	if v, ok := os.LookupEnv(envHintCapacity); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", envHintCapacity, err)
		}
		cfg.HintCapacity = n
	}

	if v, ok := os.LookupEnv(envDefaultLease); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", envDefaultLease, err)
		}
		cfg.DefaultLeaseSeconds = n
	}

	if v, ok := os.LookupEnv(envBackoff); ok && v != "" {
		table, err := parseBackoff(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", envBackoff, err)
		}
		cfg.Backoff = table
	}

	if v, ok := os.LookupEnv(envHTTPAddr); ok && v != "" {
		cfg.HTTPAddr = v
	}

	if v, ok := os.LookupEnv(envReconcileInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", envReconcileInterval, err)
		}
		cfg.ReconcileInterval = d
	}

	return cfg, nil
}

func parseBackoff(v string) (relay.BackoffTable, error) {
	var table relay.BackoffTable
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			part := v[start:i]
			start = i + 1
			if part == "" {
				continue
			}
			seconds, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			table = append(table, time.Duration(seconds)*time.Second)
		}
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("empty backoff table")
	}
	return table, nil
}
