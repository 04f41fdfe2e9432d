package repository

import (
	"context"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/google/uuid"
)

// ITransactionRepo репозиторий платёжных транзакций. Переходы состояний —
// условные UPDATE по точному прежнему состоянию (compare-and-swap на уровне
// БД): это единственная защита от дублей платёжных колбэков.
type ITransactionRepo interface {
	Create(ctx context.Context, transaction *domain.Transaction) error

	// CancelActiveForUser отменяет все активные транзакции пользователя
	// перед созданием новой (не больше одной активной на пользователя)
	CancelActiveForUser(ctx context.Context, userID uuid.UUID) error

	// MarkProcessed переводит created -> processed, записывая id
	// pre_checkout_query. false — транзакция неизвестна или уже обработана.
	MarkProcessed(ctx context.Context, id uuid.UUID, preCheckoutQueryID string) (bool, error)

	// MarkDone переводит processed -> done, деактивирует транзакцию и
	// записывает идентификаторы платежа провайдера. Возвращает именно ту
	// строку, которую перевёл этот вызов; nil — дубль доставки, no-op.
	MarkDone(ctx context.Context, id uuid.UUID, telegramChargeID, providerChargeID string) (*domain.Transaction, error)
}
