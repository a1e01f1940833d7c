package hint

import (
	"sync"

	"github.com/google/uuid"
)

// Hint is a bounded, advisory FIFO of job ids. It is safe for concurrent
// use. When full, Push drops the oldest entry to make room — losing a hint
// entry is harmless because the store remains authoritative and workers
// fall back to scanning it.
type Hint struct {
	mu       sync.Mutex
	buf      []uuid.UUID
	capacity int
}

// New creates a Hint bounded to capacity entries. A non-positive capacity
// means unbounded.
func New(capacity int) *Hint {
	return &Hint{capacity: capacity}
}

// Push appends id to the tail of the queue, dropping the oldest entry if
// the hint is already at capacity.
func (h *Hint) Push(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.capacity > 0 && len(h.buf) >= h.capacity {
		h.buf = h.buf[1:]
	}
	h.buf = append(h.buf, id)
}

// Pop removes and returns the oldest id, or (uuid.Nil, false) if empty.
func (h *Hint) Pop() (uuid.UUID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) == 0 {
		return uuid.Nil, false
	}
	id := h.buf[0]
	h.buf = h.buf[1:]
	return id, true
}

// Len returns the current number of queued hints. It is a snapshot and may
// be stale by the time the caller acts on it.
func (h *Hint) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buf)
}
