package estimator_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/internal/estimator"
	"github.com/nineoclock/relay/job"
)

type fakeLister struct {
	jobs []*job.Job
}

func (f *fakeLister) List(ctx context.Context, filter relay.Filter, order relay.Order, limit int) ([]*job.Job, error) {
	return f.jobs, nil
}

func completedJob(jobType string, payload string, runtime time.Duration) *job.Job {
	start := time.Now()
	end := start.Add(runtime)
	return &job.Job{
		Id:          uuid.New(),
		Type:        jobType,
		Payload:     payload,
		Status:      job.Completed,
		StartedAt:   &start,
		CompletedAt: &end,
	}
}

func TestPredictUnknownBucket(t *testing.T) {
	e := estimator.New()
	if _, ok := e.Predict("email", 10); ok {
		t.Fatal("expected no prediction before any Refresh")
	}
}

func TestRefreshAveragesRuntimePerTypeAndBucket(t *testing.T) {
	lister := &fakeLister{jobs: []*job.Job{
		completedJob("email", "short", 100*time.Millisecond),
		completedJob("email", "short", 200*time.Millisecond),
		completedJob("email", "a-much-longer-payload-than-before-filling-out-the-bucket-width-with-more-bytes-to-exceed-two-hundred-fifty-six-characters-total-so-it-lands-in-a-different-bucket-than-the-short-payload-above-definitely-over-the-line-now-for-sure-yes-and-then-some-more-padding-bytes-to-be-sure", 900*time.Millisecond),
	}}

	e := estimator.New()
	if err := e.Refresh(context.Background(), lister, 0); err != nil {
		t.Fatal(err)
	}

	ms, ok := e.Predict("email", len("short"))
	if !ok {
		t.Fatal("expected a prediction for the short-payload bucket")
	}
	if ms != 150 {
		t.Fatalf("expected average of 100 and 200 = 150ms, got %d", ms)
	}

	if _, ok := e.Predict("sms", len("short")); ok {
		t.Fatal("expected no prediction for an unseen type")
	}
}

func TestRefreshSkipsJobsMissingTimestamps(t *testing.T) {
	incomplete := &job.Job{Id: uuid.New(), Type: "email", Status: job.Completed}
	lister := &fakeLister{jobs: []*job.Job{incomplete}}

	e := estimator.New()
	if err := e.Refresh(context.Background(), lister, 0); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Predict("email", 0); ok {
		t.Fatal("expected no prediction from a job missing timestamps")
	}
}
