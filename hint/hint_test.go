package hint_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/nineoclock/relay/hint"
)

func TestHintFIFOOrder(t *testing.T) {
	h := hint.New(0)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	h.Push(a)
	h.Push(b)
	h.Push(c)

	for _, want := range []uuid.UUID{a, b, c} {
		got, ok := h.Pop()
		if !ok {
			t.Fatal("expected an entry")
		}
		if got != want {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Fatal("expected empty hint")
	}
}

func TestHintBoundedDropsOldest(t *testing.T) {
	h := hint.New(2)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	h.Push(a)
	h.Push(b)
	h.Push(c) // a is dropped

	if got := h.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	first, _ := h.Pop()
	if first != b {
		t.Fatalf("expected b to survive eviction, got %v", first)
	}
}

func TestHintEmptyPop(t *testing.T) {
	h := hint.New(4)
	if _, ok := h.Pop(); ok {
		t.Fatal("expected no entry on empty hint")
	}
}
