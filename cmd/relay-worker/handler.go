package main

import (
	"context"
	"log/slog"

	"github.com/nineoclock/relay/client"
	"github.com/nineoclock/relay/job"
)

// sampleHandler logs each job it receives and succeeds unconditionally.
// It exists to exercise the worker lifecycle end to end; a real deployment
// supplies its own client.Handler.
func sampleHandler(log *slog.Logger) client.Handler {
	return func(ctx context.Context, j *job.Job) error {
		log.Info("processing job", "id", j.Id, "type", j.Type, "attempt", j.Attempts)
		return nil
	}
}
