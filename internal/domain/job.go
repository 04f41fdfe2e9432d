package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus статус джобы генерации
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobError      JobStatus = "error"
)

// Job одна постановка генерации в очередь. Claim выдаёт джобу ровно
// одному воркеру (FOR UPDATE SKIP LOCKED на стороне хранилища).
type Job struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	SessionID   uuid.UUID  `json:"session_id" db:"session_id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Status      JobStatus  `json:"status" db:"status"`
	Env         string     `json:"env" db:"env"`
	WorkerID    *string    `json:"worker_id,omitempty" db:"worker_id"`
	Attempts    int        `json:"attempts" db:"attempts"`
	Error       *string    `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
