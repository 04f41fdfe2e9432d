package repository

import (
	"context"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/google/uuid"
)

// ISessionRepo репозиторий сессий генерации
type ISessionRepo interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.Session, error)

	// CancelActiveForUser переводит все активные сессии пользователя
	// в canceled. Вызывается перед созданием новой сессии.
	CancelActiveForUser(ctx context.Context, userID uuid.UUID) error

	// UpdatePhotos сохраняет список фото и новое состояние
	UpdatePhotos(ctx context.Context, id uuid.UUID, photos domain.PhotoList, state domain.SessionState) error

	// SetAwaitingCredits паркует сессию в wait_buy_credit с финальным промптом
	SetAwaitingCredits(ctx context.Context, id uuid.UUID, userInput, promptFinal string) error

	// SetProcessing переводит сессию в processing, фиксируя промпт и списанные кредиты
	SetProcessing(ctx context.Context, id uuid.UUID, userInput, promptFinal string, creditsSpent int) error

	// UpdateState меняет только состояние сессии
	UpdateState(ctx context.Context, id uuid.UUID, state domain.SessionState) error

	// SetProgressMessage запоминает сообщение-индикатор для апдейтов в процессе
	SetProgressMessage(ctx context.Context, id uuid.UUID, chatID, messageID int64) error

	// CompleteResult фиксирует доставленный результат и чистит индикатор
	CompleteResult(ctx context.Context, id uuid.UUID, resultFileID string) error
}
