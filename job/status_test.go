package job_test

import (
	"testing"

	"github.com/nineoclock/relay/job"
)

func TestParseStatusRoundTrip(t *testing.T) {
	cases := []job.Status{job.Queued, job.Running, job.Completed, job.Dead, job.Unknown}
	for _, s := range cases {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		parsed, err := job.ParseStatus(string(text))
		if err != nil {
			t.Fatal(err)
		}
		if parsed != s {
			t.Fatalf("round trip mismatch: got %v, want %v", parsed, s)
		}
	}
}

func TestParseStatusUnknownString(t *testing.T) {
	if _, err := job.ParseStatus("bogus"); err == nil {
		t.Fatal("expected error for unrecognized status string")
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := map[job.Status]bool{
		job.Queued:    false,
		job.Running:   false,
		job.Completed: true,
		job.Dead:      true,
	}
	for s, want := range terminal {
		if got := s.Terminal(); got != want {
			t.Fatalf("%v.Terminal() = %v, want %v", s, got, want)
		}
	}
}
