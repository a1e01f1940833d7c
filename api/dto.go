package api

import (
	"time"

	"github.com/nineoclock/relay/job"
)

// JobView is the wire representation of a job.Job.
type JobView struct {
	Id          string `json:"id"`
	Type        string `json:"type"`
	Payload     string `json:"payload"`
	Priority    int    `json:"priority"`
	Status      string `json:"status"`
	Attempts    int    `json:"attempts"`
	MaxAttempts int    `json:"max_attempts"`
	LastError   string `json:"last_error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NextRunAt   *time.Time `json:"next_run_at,omitempty"`

	LockedBy      string     `json:"locked_by,omitempty"`
	LockExpiresAt *time.Time `json:"lock_expires_at,omitempty"`
}

func newJobView(j *job.Job) JobView {
	return JobView{
		Id:            j.Id.String(),
		Type:          j.Type,
		Payload:       j.Payload,
		Priority:      j.Priority,
		Status:        j.Status.String(),
		Attempts:      j.Attempts,
		MaxAttempts:   j.MaxAttempts,
		LastError:     j.LastError,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
		StartedAt:     j.StartedAt,
		CompletedAt:   j.CompletedAt,
		NextRunAt:     j.NextRunAt,
		LockedBy:      j.LockedBy,
		LockExpiresAt: j.LockExpiresAt,
	}
}

func newJobViews(jobs []*job.Job) []JobView {
	views := make([]JobView, len(jobs))
	for i, j := range jobs {
		views[i] = newJobView(j)
	}
	return views
}

type healthResponse struct {
	Status string `json:"status"`
}

type submitRequest struct {
	Type        string `json:"type"`
	Payload     string `json:"payload"`
	Priority    int    `json:"priority"`
	MaxAttempts int    `json:"max_attempts"`
}

type leaseRequest struct {
	WorkerID     string `json:"worker_id"`
	LeaseSeconds int    `json:"lease_seconds"`
}

type leaseResponse struct {
	Id            string     `json:"id"`
	LockedBy      string     `json:"locked_by"`
	LockExpiresAt *time.Time `json:"lock_expires_at"`
}

type statusResponse struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

type completeRequest struct {
	WorkerID string `json:"worker_id"`
}

type failRequest struct {
	WorkerID string `json:"worker_id"`
	Error    string `json:"error"`
}

type failResponse struct {
	Id        string     `json:"id"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	NextRunAt *time.Time `json:"next_run_at"`
}

type limitRequest struct {
	Limit int `json:"limit"`
}

type requeueResponse struct {
	Requeued int `json:"requeued"`
}

type reconcileResponse struct {
	Recovered int `json:"recovered"`
	Dead      int `json:"dead"`
	Requeued  int `json:"requeued"`
}
