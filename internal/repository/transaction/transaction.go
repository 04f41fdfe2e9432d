package transactionRepo

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

type transactionColumns struct {
	TableName               string
	ID                      string
	UserID                  string
	Amount                  string
	Price                   string
	State                   string
	IsActive                string
	PreCheckoutQueryID      string
	TelegramPaymentChargeID string
	ProviderPaymentChargeID string
	CreatedAt               string
	UpdatedAt               string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns transactionColumns
}

// New создаёт новый репозиторий для работы с платёжными транзакциями
func New(db persistence.Persistence, log *slog.Logger) ports.ITransactionRepo {
	cols := transactionColumns{
		TableName:               "photo_transactions",
		ID:                      "id",
		UserID:                  "user_id",
		Amount:                  "amount",
		Price:                   "price",
		State:                   "state",
		IsActive:                "is_active",
		PreCheckoutQueryID:      "pre_checkout_query_id",
		TelegramPaymentChargeID: "telegram_payment_charge_id",
		ProviderPaymentChargeID: "provider_payment_charge_id",
		CreatedAt:               "created_at",
		UpdatedAt:               "updated_at",
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
		r.columns.UserID,
		r.columns.Amount,
		r.columns.Price,
		r.columns.State,
		r.columns.IsActive,
		r.columns.PreCheckoutQueryID,
		r.columns.TelegramPaymentChargeID,
		r.columns.ProviderPaymentChargeID,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)
}

// Create создаёт новую транзакцию
func (r *Repository) Create(ctx context.Context, transaction *domain.Transaction) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		transaction.ID,
		transaction.UserID,
		transaction.Amount,
		transaction.Price,
		string(transaction.State),
		transaction.IsActive,
		transaction.PreCheckoutQueryID,
		transaction.TelegramPaymentChargeID,
		transaction.ProviderPaymentChargeID,
		transaction.CreatedAt,
		transaction.UpdatedAt)
	if err != nil {
		r.Log.Error("failed to create transaction",
			"error", err,
			"transaction_id", transaction.ID,
			"user_id", transaction.UserID)
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	r.Log.Debug("transaction created successfully",
		"transaction_id", transaction.ID,
		"user_id", transaction.UserID,
		"amount", transaction.Amount,
		"price", transaction.Price)
	return nil
}

// CancelActiveForUser отменяет все активные транзакции пользователя
func (r *Repository) CancelActiveForUser(ctx context.Context, userID uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = false, %s = NOW() WHERE %s = $1 AND %s = true`,
		r.columns.TableName,
		r.columns.State,
		r.columns.IsActive,
		r.columns.UpdatedAt,
		r.columns.UserID,
		r.columns.IsActive)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, userID, string(domain.TransactionCanceled))
	if err != nil {
		r.Log.Error("failed to cancel active transactions",
			"error", err,
			"user_id", userID)
		return fmt.Errorf("failed to cancel active transactions: %w", err)
	}
	if rowsAffected > 0 {
		r.Log.Debug("active transactions canceled",
			"user_id", userID,
			"count", rowsAffected)
	}
	return nil
}

// MarkProcessed переводит транзакцию created -> processed.
// Условие по прежнему состоянию встроено в UPDATE: повторная доставка
// pre_checkout затронет ноль строк и вернёт false.
func (r *Repository) MarkProcessed(ctx context.Context, id uuid.UUID, preCheckoutQueryID string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1 AND %s = $4`,
		r.columns.TableName,
		r.columns.State,
		r.columns.PreCheckoutQueryID,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.State)

	rowsAffected, err := r.db.ExecWithResult(ctx, query,
		id,
		string(domain.TransactionProcessed),
		preCheckoutQueryID,
		string(domain.TransactionCreated))
	if err != nil {
		r.Log.Error("failed to mark transaction processed",
			"error", err,
			"transaction_id", id)
		return false, fmt.Errorf("failed to mark transaction processed: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Warn("transaction not in created state, pre_checkout ignored",
			"transaction_id", id,
			"pre_checkout_query_id", preCheckoutQueryID)
		return false, nil
	}
	return true, nil
}

// MarkDone переводит транзакцию processed -> done и возвращает именно ту
// строку, которую перевёл этот вызов. Дубль successful_payment не пройдёт
// условие по состоянию и получит nil.
func (r *Repository) MarkDone(ctx context.Context, id uuid.UUID, telegramChargeID, providerChargeID string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = false, %s = $3, %s = $4, %s = NOW() WHERE %s = $1 AND %s = $5 RETURNING %s`,
		r.columns.TableName,
		r.columns.State,
		r.columns.IsActive,
		r.columns.TelegramPaymentChargeID,
		r.columns.ProviderPaymentChargeID,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.State,
		r.allColumns())

	var transaction domain.Transaction
	err := r.db.Get(ctx, &transaction, query,
		id,
		string(domain.TransactionDone),
		telegramChargeID,
		providerChargeID,
		string(domain.TransactionProcessed))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("transaction not in processed state, payment callback ignored",
				"transaction_id", id,
				"telegram_payment_charge_id", telegramChargeID)
			return nil, nil
		}
		r.Log.Error("failed to mark transaction done",
			"error", err,
			"transaction_id", id)
		return nil, fmt.Errorf("failed to mark transaction done: %w", err)
	}

	r.Log.Info("transaction done",
		"transaction_id", transaction.ID,
		"user_id", transaction.UserID,
		"amount", transaction.Amount,
		"price", transaction.Price)
	return &transaction, nil
}
