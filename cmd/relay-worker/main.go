// Command relay-worker polls a remote relay server for ready jobs and
// runs them through a sample handler. It is a reference implementation
// of a JobClient consumer, not a production job processor: real
// deployments provide their own Handler.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nineoclock/relay/client"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "relay server base URL")
	workerID := flag.String("worker-id", hostnameOrDefault(), "worker identity reported to the server")
	concurrency := flag.Int("concurrency", 4, "number of concurrent handler invocations")
	batchSize := flag.Int("batch-size", 16, "max candidate ids fetched per poll")
	pollInterval := flag.Duration("poll-interval", 2*time.Second, "how often to poll for ready jobs")
	leaseSeconds := flag.Int("lease-seconds", 60, "lease duration requested on every successful Lease")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	httpClient := client.NewHTTPClient(*serverURL, nil)
	source := client.NewPollSource(httpClient)

	w := client.NewWorker(httpClient, source, sampleHandler(logger), *workerID, &client.WorkerConfig{
		Concurrency:  *concurrency,
		Queue:        *concurrency * 2,
		BatchSize:    *batchSize,
		PollInterval: *pollInterval,
		LeaseSeconds: *leaseSeconds,
	}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "err", err)
		os.Exit(1)
	}

	logger.Info("worker started", "server", *serverURL, "worker_id", *workerID)
	<-ctx.Done()

	logger.Info("shutting down worker")
	if err := w.Stop(30 * time.Second); err != nil {
		logger.Error("worker stop failed", "err", err)
	}
}

func hostnameOrDefault() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "relay-worker"
	}
	return h
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
