package jobRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/admin/tg-bots/photo-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/photo-bot/internal/ports/repository"
	"github.com/google/uuid"
)

type jobColumns struct {
	TableName   string
	ID          string
	SessionID   string
	UserID      string
	Status      string
	Env         string
	WorkerID    string
	Attempts    string
	Error       string
	CreatedAt   string
	StartedAt   string
	CompletedAt string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns jobColumns
}

// New создаёт новый репозиторий для работы с очередью джоб генерации
func New(db persistence.Persistence, log *slog.Logger) ports.IJobRepo {
	cols := jobColumns{
		TableName:   "photo_jobs",
		ID:          "id",
		SessionID:   "session_id",
		UserID:      "user_id",
		Status:      "status",
		Env:         "env",
		WorkerID:    "worker_id",
		Attempts:    "attempts",
		Error:       "error",
		CreatedAt:   "created_at",
		StartedAt:   "started_at",
		CompletedAt: "completed_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (11 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.SessionID,
		r.columns.UserID,
		r.columns.Status,
		r.columns.Env,
		r.columns.WorkerID,
		r.columns.Attempts,
		r.columns.Error,
		r.columns.CreatedAt,
		r.columns.StartedAt,
		r.columns.CompletedAt)
}

// Create ставит джобу в очередь
func (r *Repository) Create(ctx context.Context, job *domain.Job) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		job.ID,
		job.SessionID,
		job.UserID,
		string(job.Status),
		job.Env,
		job.WorkerID,
		job.Attempts,
		job.Error,
		job.CreatedAt,
		job.StartedAt,
		job.CompletedAt)
	if err != nil {
		r.Log.Error("failed to create job",
			"error", err,
			"job_id", job.ID,
			"session_id", job.SessionID)
		return fmt.Errorf("failed to create job: %w", err)
	}
	r.Log.Debug("job queued",
		"job_id", job.ID,
		"session_id", job.SessionID,
		"env", job.Env)
	return nil
}

// ClaimNext атомарно забирает следующую queued джобу для воркера.
// FOR UPDATE SKIP LOCKED гарантирует, что конкурирующие воркеры не
// получат одну и ту же строку. nil, nil — очередь пуста.
func (r *Repository) ClaimNext(ctx context.Context, workerID, env string) (*domain.Job, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3, %s = $1, %s = %s + 1, %s = NOW()
		WHERE %s = (
			SELECT %s FROM %s
			WHERE %s = $4 AND %s = $2
			ORDER BY %s
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.WorkerID,
		r.columns.Attempts,
		r.columns.Attempts,
		r.columns.StartedAt,
		r.columns.ID,
		r.columns.ID,
		r.columns.TableName,
		r.columns.Status,
		r.columns.Env,
		r.columns.CreatedAt,
		r.allColumns())

	var job domain.Job
	err := r.db.Get(ctx, &job, query,
		workerID,
		env,
		string(domain.JobProcessing),
		string(domain.JobQueued))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to claim job",
			"error", err,
			"worker_id", workerID,
			"env", env)
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	r.Log.Info("job claimed",
		"job_id", job.ID,
		"session_id", job.SessionID,
		"worker_id", workerID,
		"attempts", job.Attempts)
	return &job, nil
}

// MarkDone завершает джобу успешно
func (r *Repository) MarkDone(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.CompletedAt,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, id, string(domain.JobDone)); err != nil {
		r.Log.Error("failed to mark job done",
			"error", err,
			"job_id", id)
		return fmt.Errorf("failed to mark job done: %w", err)
	}
	return nil
}

// MarkDoneFromProcessing завершает джобу успешно, но только из статуса
// processing. Используется для исходов без результата: условие пропускает
// ровно один переход, и только он даёт право на возврат кредитов.
func (r *Repository) MarkDoneFromProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 AND %s = $3`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.CompletedAt,
		r.columns.ID,
		r.columns.Status)

	rowsAffected, err := r.db.ExecWithResult(ctx, query,
		id,
		string(domain.JobDone),
		string(domain.JobProcessing))
	if err != nil {
		r.Log.Error("failed to mark job done",
			"error", err,
			"job_id", id)
		return false, fmt.Errorf("failed to mark job done: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Warn("job not in processing state, done transition skipped",
			"job_id", id)
		return false, nil
	}
	return true, nil
}

// MarkError завершает джобу с ошибкой. Условие по статусу processing
// пропускает ровно один переход: только он даёт право на возврат кредитов.
func (r *Repository) MarkError(ctx context.Context, id uuid.UUID, errorText string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1 AND %s = $4`,
		r.columns.TableName,
		r.columns.Status,
		r.columns.Error,
		r.columns.CompletedAt,
		r.columns.ID,
		r.columns.Status)

	rowsAffected, err := r.db.ExecWithResult(ctx, query,
		id,
		string(domain.JobError),
		errorText,
		string(domain.JobProcessing))
	if err != nil {
		r.Log.Error("failed to mark job error",
			"error", err,
			"job_id", id)
		return false, fmt.Errorf("failed to mark job error: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Warn("job not in processing state, error transition skipped",
			"job_id", id)
		return false, nil
	}
	return true, nil
}
