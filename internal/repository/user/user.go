package userRepo

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

type userColumns struct {
	TableName        string
	ID               string
	TelegramUserID   string
	TelegramChatID   string
	Username         string
	Lang             string
	Credits          string
	TotalGenerations string
	CreatedAt        string
	UpdatedAt        string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns userColumns
}

// New создаёт новый репозиторий для работы с пользователями
func New(db persistence.Persistence, log *slog.Logger) ports.IUserRepo {
	cols := userColumns{
		TableName:        "photo_users",
		ID:               "id",
		TelegramUserID:   "tg_id",
		TelegramChatID:   "chat_id",
		Username:         "username",
		Lang:             "lang",
		Credits:          "credits",
		TotalGenerations: "total_generations",
		CreatedAt:        "created_at",
		UpdatedAt:        "updated_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// allColumns возвращает строку со всеми колонками (9 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.TelegramUserID,
		r.columns.TelegramChatID,
		r.columns.Username,
		r.columns.Lang,
		r.columns.Credits,
		r.columns.TotalGenerations,
		r.columns.CreatedAt,
		r.columns.UpdatedAt)
}

// Create создаёт нового пользователя
func (r *Repository) Create(ctx context.Context, user *domain.User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		user.ID,
		user.TelegramUserID,
		user.TelegramChatID,
		user.Username,
		string(user.Lang),
		user.Credits,
		user.TotalGenerations,
		user.CreatedAt,
		user.UpdatedAt)
	if err != nil {
		r.Log.Error("failed to create user",
			"error", err,
			"telegram_user_id", user.TelegramUserID,
			"user_id", user.ID)
		return fmt.Errorf("failed to create user: %w", err)
	}
	r.Log.Debug("user created successfully",
		"id", user.ID,
		"telegram_user_id", user.TelegramUserID)
	return nil
}

// GetByID получает пользователя по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ID)
	err := r.db.Get(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("user not found", "user_id", id)
			return nil, fmt.Errorf("user not found: %w", err)
		}
		r.Log.Error("failed to get user by id",
			"error", err,
			"user_id", id)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *Repository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	var user domain.User
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.TelegramUserID)
	err := r.db.Get(ctx, &user, query, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		r.Log.Error("failed to get user by telegram id",
			"error", err,
			"telegram_user_id", telegramID)
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}
	return &user, nil
}

// AddCredits атомарно начисляет кредиты и возвращает новый баланс.
// Одна условная арифметическая операция по одной строке — без
// read-modify-write, чтобы конкурентные начисления не теряли кредиты.
func (r *Repository) AddCredits(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $2, %s = NOW() WHERE %s = $1 RETURNING %s`,
		r.columns.TableName,
		r.columns.Credits,
		r.columns.Credits,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.Credits)

	var newBalance int
	if err := r.db.QueryRow(ctx, query, userID, amount).Scan(&newBalance); err != nil {
		r.Log.Error("failed to add credits",
			"error", err,
			"user_id", userID,
			"amount", amount)
		return 0, fmt.Errorf("failed to add credits: %w", err)
	}

	r.Log.Debug("credits added",
		"user_id", userID,
		"amount", amount,
		"new_balance", newBalance)
	return newBalance, nil
}

// DebitCredits атомарно списывает кредиты. Предикат credits >= amount
// встроен в UPDATE: при нехватке баланса затронется ноль строк.
func (r *Repository) DebitCredits(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s - $2, %s = NOW() WHERE %s = $1 AND %s >= $2`,
		r.columns.TableName,
		r.columns.Credits,
		r.columns.Credits,
		r.columns.UpdatedAt,
		r.columns.ID,
		r.columns.Credits)

	rowsAffected, err := r.db.ExecWithResult(ctx, query, userID, amount)
	if err != nil {
		r.Log.Error("failed to debit credits",
			"error", err,
			"user_id", userID,
			"amount", amount)
		return false, fmt.Errorf("failed to debit credits: %w", err)
	}

	if rowsAffected == 0 {
		r.Log.Debug("not enough credits to debit",
			"user_id", userID,
			"amount", amount)
		return false, nil
	}
	return true, nil
}

// IncrementGenerations увеличивает счётчик генераций
func (r *Repository) IncrementGenerations(ctx context.Context, userID uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + 1, %s = NOW() WHERE %s = $1`,
		r.columns.TableName,
		r.columns.TotalGenerations,
		r.columns.TotalGenerations,
		r.columns.UpdatedAt,
		r.columns.ID)

	if err := r.db.Exec(ctx, query, userID); err != nil {
		r.Log.Error("failed to increment generations",
			"error", err,
			"user_id", userID)
		return fmt.Errorf("failed to increment generations: %w", err)
	}
	return nil
}
