package sql

import (
	"time"

	"github.com/google/uuid"
	"github.com/nineoclock/relay/job"
	"github.com/uptrace/bun"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`
	Id            uuid.UUID `bun:"id,pk,type:uuid"`

	Type     string `bun:"type,notnull"`
	Payload  string `bun:"payload"`
	Priority int    `bun:"priority,notnull,default:5"`

	Status      job.Status `bun:"status,notnull,default:1"`
	Attempts    int        `bun:"attempts,notnull,default:0"`
	MaxAttempts int        `bun:"max_attempts,notnull,default:3"`
	LastError   string     `bun:"last_error"`

	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	StartedAt   *time.Time `bun:"started_at,nullzero,default:null"`
	CompletedAt *time.Time `bun:"completed_at,nullzero,default:null"`
	NextRunAt   *time.Time `bun:"next_run_at,nullzero,default:null"`

	LockedBy      string     `bun:"locked_by,default:null"`
	LockExpiresAt *time.Time `bun:"lock_expires_at,nullzero,default:null"`
}

func (jm *jobModel) toJob() *job.Job {
	return &job.Job{
		Id:            jm.Id,
		Type:          jm.Type,
		Payload:       jm.Payload,
		Priority:      jm.Priority,
		Status:        jm.Status,
		Attempts:      jm.Attempts,
		MaxAttempts:   jm.MaxAttempts,
		LastError:     jm.LastError,
		CreatedAt:     jm.CreatedAt,
		UpdatedAt:     jm.UpdatedAt,
		StartedAt:     jm.StartedAt,
		CompletedAt:   jm.CompletedAt,
		NextRunAt:     jm.NextRunAt,
		LockedBy:      jm.LockedBy,
		LockExpiresAt: jm.LockExpiresAt,
	}
}

func fromJob(j *job.Job) *jobModel {
	return &jobModel{
		Id:          j.Id,
		Type:        j.Type,
		Payload:     j.Payload,
		Priority:    j.Priority,
		Status:      j.Status,
		Attempts:    j.Attempts,
		MaxAttempts: j.MaxAttempts,
		LastError:   j.LastError,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		NextRunAt:   j.NextRunAt,
	}
}

func toJobs(models []*jobModel) []*job.Job {
	jobs := make([]*job.Job, len(models))
	for i, m := range models {
		jobs[i] = m.toJob()
	}
	return jobs
}
