package job

import "fmt"

// Status represents the current lifecycle state of a Job.
//
// The state machine is:
//
//	queued  -> queued(+lease)  (via Lease, status unchanged)
//	queued  -> running         (via Start)
//	running -> completed       (via Complete)
//	running -> queued          (via Fail, retries remaining)
//	running -> dead            (via Fail, retries exhausted)
//
// Unknown is reserved as a zero value and is used to signal "no filter" in
// List calls; it is never a Job's actual persisted status.
type Status uint8

const (
	// Unknown is the zero value of Status. It never describes a real Job
	// and is only meaningful as a wildcard in filtering contexts.
	Unknown Status = iota

	// Queued indicates the job is waiting to run. A queued job may carry a
	// lease (locked_by/lock_expires_at) while still being Queued, and may
	// have a future NextRunAt that defers eligibility.
	Queued

	// Running indicates the job has been started by a worker and carries
	// its lease. The lease may already have expired; such a job stays
	// Running until Reconcile reclaims it.
	Running

	// Completed is a terminal state: the job finished successfully.
	Completed

	// Dead is a terminal state: the job exhausted its retry budget.
	Dead
)

func statusToString(status Status) string {
	switch status {
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

func statusFromString(status string) (Status, error) {
	switch status {
	case "queued":
		return Queued, nil
	case "running":
		return Running, nil
	case "completed":
		return Completed, nil
	case "dead":
		return Dead, nil
	case "unknown":
		return Unknown, nil
	default:
		return 0, fmt.Errorf("unknown status: %s", status)
	}
}

// ParseStatus converts a string representation of a status into a Status
// value. Recognized values are "queued", "running", "completed", "dead"
// and "unknown". An error is returned for unrecognized strings.
func ParseStatus(s string) (Status, error) {
	return statusFromString(s)
}

// Terminal reports whether the status is an absorbing state (completed or
// dead). No further mutation is possible for a Job in a terminal state,
// other than administrative deletion.
func (s Status) Terminal() bool {
	return s == Completed || s == Dead
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(statusToString(s)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	status, err := statusFromString(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// String returns the canonical string representation of the status.
func (s Status) String() string {
	return statusToString(s)
}
