package repository

import (
	"context"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/google/uuid"
)

// IUserRepo репозиторий пользователей. Баланс кредитов меняется только
// условными арифметическими апдейтами по одной строке.
type IUserRepo interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)

	// AddCredits атомарно начисляет кредиты и возвращает новый баланс
	AddCredits(ctx context.Context, userID uuid.UUID, amount int) (int, error)

	// DebitCredits атомарно списывает кредиты; false если баланса не хватает
	DebitCredits(ctx context.Context, userID uuid.UUID, amount int) (bool, error)

	// IncrementGenerations увеличивает счётчик генераций пользователя
	IncrementGenerations(ctx context.Context, userID uuid.UUID) error
}
