package sessionRepo

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

type sessionColumns struct {
	TableName         string
	ID                string
	UserID            string
	State             string
	IsActive          string
	Photos            string
	UserInput         string
	PromptFinal       string
	SelectedModel     string
	SelectedAspect    string
	SelectedQuality   string
	CreditsSpent      string
	ProgressChatID    string
	ProgressMessageID string
	LastResultFileID  string
	CreatedAt         string
	UpdatedAt         string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns sessionColumns
}

// New создаёт новый репозиторий для работы с сессиями генерации
func New(db persistence.Persistence, log *slog.Logger) ports.ISessionRepo {
	cols := sessionColumns{
		TableName:         "photo_sessions",
		ID:                "id",
		UserID:            "user_id",
		State:             "state",
		IsActive:          "is_active",
		Photos:            "photos",
		UserInput:         "user_input",
		PromptFinal:       "prompt_final",
		SelectedModel:     "selected_model",
		SelectedAspect:    "selected_aspect_ratio",
		SelectedQuality:   "selected_quality",
		CreditsSpent:      "credits_spent",
		ProgressChatID:    "progress_chat_id",
		ProgressMessageID: "progress_message_id",
		LastResultFileID:  "last_result_file_id",
		CreatedAt:         "created_at",
		UpdatedAt:         "updated_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (16 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.UserID,
		r.columns.State,
		r.columns.IsActive,
		r.columns.Photos,
		r.columns.UserInput,
		r.columns.PromptFinal,
		r.columns.SelectedModel,
		r.columns.SelectedAspect,
		r.columns.SelectedQuality,
		r.columns.CreditsSpent,
		r.columns.ProgressChatID,
		r.columns.ProgressMessageID,
		r.columns.LastResultFileID,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)
}

// Create создаёт новую сессию
func (r *Repository) Create(ctx context.Context, session *domain.Session) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		session.ID,
		session.UserID,
		string(session.State),
		session.IsActive,
		session.Photos,
		session.UserInput,
		session.PromptFinal,
		session.SelectedModel,
		session.SelectedAspect,
		session.SelectedQuality,
		session.CreditsSpent,
		session.ProgressChatID,
		session.ProgressMessageID,
		session.LastResultFileID,
		session.CreatedAt,
		session.UpdatedAt)
	if err != nil {
		r.Log.Error("failed to create session",
			"error", err,
			"session_id", session.ID,
			"user_id", session.UserID)
		return fmt.Errorf("failed to create session: %w", err)
	}
	r.Log.Debug("session created successfully",
		"session_id", session.ID,
		"user_id", session.UserID,
		"state", session.State)
	return nil
}

// GetByID получает сессию по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID)
	err := r.db.Get(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session not found: %w", err)
		}
		r.Log.Error("failed to get session by id",
			"error", err,
			"session_id", id)
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}
	return &session, nil
}

// GetActiveByUser получает активную сессию пользователя.
// Активная сессия у пользователя не более одной, берём свежайшую.
func (r *Repository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	var session domain.Session
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = true ORDER BY %s DESC LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.IsActive,
		r.columns.CreatedAt)
	err := r.db.Get(ctx, &session, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.Log.Error("failed to get active session",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return &session, nil
}

// CancelActiveForUser деактивирует все активные сессии пользователя
func (r *Repository) CancelActiveForUser(ctx context.Context, userID uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = false, %s = $2, %s = NOW() WHERE %s = $1 AND %s = true`,
		r.columns.TableName,
		r.columns.IsActive,
		r.columns.State,
		r.columns.UpdatedAt,
		r.columns.UserID,
		r.columns.IsActive)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, userID, string(domain.SessionCanceled))
	if err != nil {
		r.Log.Error("failed to cancel active sessions",
			"error", err,
			"user_id", userID)
		return fmt.Errorf("failed to cancel active sessions: %w", err)
	}
	if rowsAffected > 0 {
		r.Log.Debug("active sessions canceled",
			"user_id", userID,
			"count", rowsAffected)
	}
	return nil
}

// UpdatePhotos сохраняет список фото и переводит сессию в новое состояние
func (r *Repository) UpdatePhotos(ctx context.Context, id uuid.UUID, photos domain.PhotoList, state domain.SessionState) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.Photos,
		r.columns.State,
		r.columns.UpdatedAt,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, id, photos, string(state)); err != nil {
		r.Log.Error("failed to update session photos",
			"error", err,
			"session_id", id)
		return fmt.Errorf("failed to update session photos: %w", err)
	}
	return nil
}

// SetAwaitingCredits фиксирует описание и финальный промпт и переводит
// сессию в ожидание пополнения баланса
func (r *Repository) SetAwaitingCredits(ctx context.Context, id uuid.UUID, userInput, promptFinal string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.UserInput,
		r.columns.PromptFinal,
		r.columns.State,
		r.columns.UpdatedAt,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, id, userInput, promptFinal, string(domain.SessionWaitBuyCredit)); err != nil {
		r.Log.Error("failed to set session awaiting credits",
			"error", err,
			"session_id", id)
		return fmt.Errorf("failed to set session awaiting credits: %w", err)
	}
	return nil
}

// SetProcessing фиксирует описание, промпт и списанные кредиты и переводит
// сессию в обработку
func (r *Repository) SetProcessing(ctx context.Context, id uuid.UUID, userInput, promptFinal string, creditsSpent int) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.UserInput,
		r.columns.PromptFinal,
		r.columns.CreditsSpent,
		r.columns.State,
		r.columns.UpdatedAt,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, id, userInput, promptFinal, creditsSpent, string(domain.SessionProcessing)); err != nil {
		r.Log.Error("failed to set session processing",
			"error", err,
			"session_id", id)
		return fmt.Errorf("failed to set session processing: %w", err)
	}
	return nil
}

// UpdateState переводит сессию в новое состояние
func (r *Repository) UpdateState(ctx context.Context, id uuid.UUID, state domain.SessionState) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.State,
		r.columns.UpdatedAt,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, id, string(state)); err != nil {
		r.Log.Error("failed to update session state",
			"error", err,
			"session_id", id,
			"state", state)
		return fmt.Errorf("failed to update session state: %w", err)
	}
	return nil
}

// SetProgressMessage запоминает сообщение о прогрессе для последующего
// редактирования воркером
func (r *Repository) SetProgressMessage(ctx context.Context, id uuid.UUID, chatID, messageID int64) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.ProgressChatID,
		r.columns.ProgressMessageID,
		r.columns.UpdatedAt,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, id, chatID, messageID); err != nil {
		r.Log.Error("failed to set session progress message",
			"error", err,
			"session_id", id)
		return fmt.Errorf("failed to set session progress message: %w", err)
	}
	return nil
}

// CompleteResult сохраняет file_id результата и переводит сессию в
// подтверждение результата
func (r *Repository) CompleteResult(ctx context.Context, id uuid.UUID, resultFileID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.LastResultFileID,
		r.columns.State,
		r.columns.UpdatedAt,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, id, resultFileID, string(domain.SessionConfirmResult)); err != nil {
		r.Log.Error("failed to complete session result",
			"error", err,
			"session_id", id)
		return fmt.Errorf("failed to complete session result: %w", err)
	}
	return nil
}
