package resultRepo

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/admin/tg-bots/photo-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/photo-bot/internal/ports/repository"
	"github.com/google/uuid"
)

type resultColumns struct {
	TableName         string
	ID                string
	UserID            string
	SessionID         string
	SourcePhotoFileID string
	UserInput         string
	GeneratedPrompt   string
	StoragePath       string
	Model             string
	AspectRatio       string
	Quality           string
	TelegramFileID    string
	Env               string
	CreatedAt         string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns resultColumns
}

// New создаёт новый репозиторий для журнала успешных генераций
func New(db persistence.Persistence, log *slog.Logger) ports.IResultRepo {
	cols := resultColumns{
		TableName:         "photo_results",
		ID:                "id",
		UserID:            "user_id",
		SessionID:         "session_id",
		SourcePhotoFileID: "source_photo_file_id",
		UserInput:         "user_input",
		GeneratedPrompt:   "generated_prompt",
		StoragePath:       "result_storage_path",
		Model:             "model",
		AspectRatio:       "aspect_ratio",
		Quality:           "quality",
		TelegramFileID:    "telegram_file_id",
		Env:               "env",
		CreatedAt:         "created_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (13 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.UserID,
		r.columns.SessionID,
		r.columns.SourcePhotoFileID,
		r.columns.UserInput,
		r.columns.GeneratedPrompt,
		r.columns.StoragePath,
		r.columns.Model,
		r.columns.AspectRatio,
		r.columns.Quality,
		r.columns.TelegramFileID,
		r.columns.Env,
		r.columns.CreatedAt)
}

// Create записывает результат генерации
func (r *Repository) Create(ctx context.Context, result *domain.Result) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		result.ID,
		result.UserID,
		result.SessionID,
		result.SourcePhotoFileID,
		result.UserInput,
		result.GeneratedPrompt,
		result.StoragePath,
		result.Model,
		result.AspectRatio,
		result.Quality,
		result.TelegramFileID,
		result.Env,
		result.CreatedAt)
	if err != nil {
		r.Log.Error("failed to create result",
			"error", err,
			"result_id", result.ID,
			"session_id", result.SessionID)
		return fmt.Errorf("failed to create result: %w", err)
	}
	r.Log.Debug("result created successfully",
		"result_id", result.ID,
		"session_id", result.SessionID,
		"storage_path", result.StoragePath)
	return nil
}

// SetTelegramFileID прикрепляет file_id доставленного сообщения
func (r *Repository) SetTelegramFileID(ctx context.Context, id uuid.UUID, fileID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		r.columns.TableName,
		r.columns.TelegramFileID,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, id, fileID); err != nil {
		r.Log.Error("failed to set result telegram file id",
			"error", err,
			"result_id", id)
		return fmt.Errorf("failed to set result telegram file id: %w", err)
	}
	return nil
}
