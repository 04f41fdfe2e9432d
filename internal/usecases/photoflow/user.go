package photoflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/google/uuid"
)

// EnsureUser возвращает пользователя по Telegram ID, создавая его при
// первом обращении. Приветственные кредиты фиксируются в леджере
// отдельной неактивной done-транзакцией с нулевой ценой.
func (s *Service) EnsureUser(ctx context.Context, telegramUserID, chatID int64, username *string, langCode string) (*domain.User, error) {
	user, err := s.UserRepo.GetByTelegramID(ctx, telegramUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := time.Now()
	user = &domain.User{
		ID:             uuid.New(),
		TelegramUserID: telegramUserID,
		TelegramChatID: chatID,
		Username:       username,
		Lang:           domain.LangFromCode(langCode),
		Credits:        s.Cfg.WelcomeCredits,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.Cfg.WelcomeCredits > 0 {
		welcome := &domain.Transaction{
			ID:        uuid.New(),
			UserID:    user.ID,
			Amount:    s.Cfg.WelcomeCredits,
			Price:     0,
			State:     domain.TransactionDone,
			IsActive:  false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.TransactionRepo.Create(ctx, welcome); err != nil {
			// Кредиты уже на балансе, отсутствие записи в леджере не блокирует
			s.Log.Warn("failed to record welcome credit transaction",
				"error", err,
				"user_id", user.ID,
			)
		}
	}

	s.Log.Info("user created",
		"user_id", user.ID,
		"telegram_user_id", telegramUserID,
		"lang", user.Lang,
		"welcome_credits", s.Cfg.WelcomeCredits,
	)
	return user, nil
}
