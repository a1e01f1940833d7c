package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/nineoclock/relay"
	"github.com/nineoclock/relay/hint"
	"github.com/nineoclock/relay/job"
)

// Source supplies candidate job ids for a Worker to attempt to lease.
// A Source is advisory: a returned id may already have been claimed by
// another worker by the time Lease is attempted, and Worker treats a
// conflict on Lease as routine rather than an error.
type Source interface {
	Next(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// HintSource drains an in-process hint.Hint. It never blocks: if the hint
// is empty it returns no ids, and the Worker's polling interval governs
// how quickly it is checked again.
type HintSource struct {
	hint *hint.Hint
}

// NewHintSource wraps h as a Source.
func NewHintSource(h *hint.Hint) *HintSource {
	return &HintSource{hint: h}
}

func (s *HintSource) Next(_ context.Context, limit int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, limit)
	for i := 0; i < limit; i++ {
		id, ok := s.hint.Pop()
		if !ok {
			break
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// PollSource lists queued jobs in ready order (priority descending, then
// created_at ascending) directly through a remote or in-process Lister,
// bypassing the hint entirely. The listing is not filtered by NextRunAt or
// by an existing lease; such candidates fail Lease with a conflict, which
// Worker treats as routine. It is the fallback source for deployments where
// no hint is shared with the scheduler, at the cost of a List call on every
// poll.
type PollSource struct {
	lister Lister
}

// Lister is the read used by PollSource to discover queued jobs.
// *relay.Engine satisfies it.
type Lister interface {
	List(ctx context.Context, filter relay.Filter, order relay.Order, limit int) ([]*job.Job, error)
}

// NewPollSource wraps lister as a Source.
func NewPollSource(lister Lister) *PollSource {
	return &PollSource{lister: lister}
}

func (s *PollSource) Next(ctx context.Context, limit int) ([]uuid.UUID, error) {
	jobs, err := s.lister.List(ctx, relay.Filter{Status: job.Queued}, relay.OrderReady, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(jobs))
	for i, j := range jobs {
		ids[i] = j.Id
	}
	return ids, nil
}
