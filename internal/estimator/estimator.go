package estimator

import (
	"context"
	"sync"

	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/job"
)

// payloadBucket groups payloads into coarse size buckets so the estimator
// doesn't need one key per distinct payload length. Bucket width is 256
// bytes, matching the rough size classes a JSON payload tends to fall
// into (a handful of fields vs. an embedded blob).
const payloadBucketWidth = 256

func payloadBucket(size int) int {
	return size / payloadBucketWidth
}

type key struct {
	jobType string
	bucket  int
}

type runningMean struct {
	n    int64
	mean float64
}

func (r *runningMean) observe(sampleMs float64) {
	r.n++
	r.mean += (sampleMs - r.mean) / float64(r.n)
}

// Estimator predicts a job's runtime in milliseconds as the running mean
// of observed (CompletedAt - StartedAt) durations for jobs sharing the
// same type and payload-size bucket. It holds no authoritative state:
// Refresh rebuilds it from a Lister snapshot, and concurrent Predict
// calls are safe during a Refresh.
type Estimator struct {
	mu    sync.RWMutex
	stats map[key]*runningMean
}

// New creates an empty Estimator. Predict returns ok=false for every
// input until Refresh has observed at least one completed job in the
// matching bucket.
func New() *Estimator {
	return &Estimator{stats: make(map[key]*runningMean)}
}

// Lister is the read-only source Refresh scans. *relay.Engine satisfies
// it via its List method.
type Lister interface {
	List(ctx context.Context, filter relay.Filter, order relay.Order, limit int) ([]*job.Job, error)
}

// Refresh rebuilds the estimator's statistics from every completed job
// Lister currently knows about, up to limit (0 means unbounded). Jobs
// missing StartedAt or CompletedAt are skipped; they contribute no
// runtime sample.
func (e *Estimator) Refresh(ctx context.Context, lister Lister, limit int) error {
	jobs, err := lister.List(ctx, relay.Filter{Status: job.Completed}, relay.OrderCreatedDesc, limit)
	if err != nil {
		return err
	}

	stats := make(map[key]*runningMean)
	for _, j := range jobs {
		if j.StartedAt == nil || j.CompletedAt == nil {
			continue
		}
		runtimeMs := j.CompletedAt.Sub(*j.StartedAt).Milliseconds()
		if runtimeMs < 0 {
			continue
		}
		k := key{jobType: j.Type, bucket: payloadBucket(len(j.Payload))}
		rm, ok := stats[k]
		if !ok {
			rm = &runningMean{}
			stats[k] = rm
		}
		rm.observe(float64(runtimeMs))
	}

	e.mu.Lock()
	e.stats = stats
	e.mu.Unlock()
	return nil
}

// Predict returns the estimated runtime in milliseconds for a job of the
// given type and payload size, and whether any sample was observed for
// its bucket. The result is always clamped to a non-negative integer.
func (e *Estimator) Predict(jobType string, payloadSize int) (ms int, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rm, found := e.stats[key{jobType: jobType, bucket: payloadBucket(payloadSize)}]
	if !found || rm.n == 0 {
		return 0, false
	}
	if rm.mean < 0 {
		return 0, true
	}
	return int(rm.mean), true
}
