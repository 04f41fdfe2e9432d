package photoflow

import (
	"context"
	"fmt"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/texts"
	"github.com/google/uuid"
)

// StartSession начинает новую сессию, вытесняя прежнюю активную.
// Инвариант одной активной сессии держится на паре cancel+create.
func (s *Service) StartSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	if err := s.SessionRepo.CancelActiveForUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to cancel active sessions: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		State:     domain.SessionWaitPhoto,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.SessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.Telegram.SendMessage(ctx, user.TelegramChatID, texts.Welcome(user.Lang)); err != nil {
		s.Log.Warn("failed to send welcome message",
			"error", err,
			"user_id", user.ID,
		)
	}

	s.Log.Info("session started",
		"session_id", session.ID,
		"user_id", user.ID,
	)
	return session, nil
}

// HandlePhoto принимает фото. Вне wait_photo фото только дописывается в
// историю: одна сессия обслуживает один запрос генерации.
func (s *Service) HandlePhoto(ctx context.Context, user *domain.User, fileID string) error {
	session, err := s.SessionRepo.GetActiveByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to get active session: %w", err)
	}
	if session == nil {
		if session, err = s.StartSession(ctx, user); err != nil {
			return err
		}
	}

	if session.State == domain.SessionProcessing {
		return s.notify(ctx, user, texts.AlreadyProcessing(user.Lang))
	}

	photos := append(session.Photos, fileID)
	nextState := session.State
	if session.State == domain.SessionWaitPhoto {
		nextState = domain.SessionWaitDesc
	}
	if err := s.SessionRepo.UpdatePhotos(ctx, session.ID, photos, nextState); err != nil {
		return fmt.Errorf("failed to save session photo: %w", err)
	}

	if nextState == domain.SessionWaitDesc && session.State == domain.SessionWaitPhoto {
		return s.notify(ctx, user, texts.PhotoAccepted(user.Lang))
	}
	return nil
}

// HandleDescription принимает описание стиля, финализирует промпт и
// запускает генерацию либо паркует сессию до пополнения баланса
func (s *Service) HandleDescription(ctx context.Context, user *domain.User, text string) error {
	session, err := s.SessionRepo.GetActiveByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to get active session: %w", err)
	}
	if session == nil || len(session.Photos) == 0 {
		return s.notify(ctx, user, texts.SendPhotoFirst(user.Lang))
	}
	if session.State == domain.SessionProcessing {
		// Вторая заявка во время обработки игнорируется
		s.Log.Debug("description ignored, session is processing",
			"session_id", session.ID,
			"user_id", user.ID,
		)
		return nil
	}

	promptResult, err := s.PromptGenerator.GeneratePrompt(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to generate prompt: %w", err)
	}
	if promptResult.Retry {
		return s.notify(ctx, user, texts.StyleNotRecognized(user.Lang))
	}

	return s.startGeneration(ctx, user, session, text, promptResult.Prompt)
}

// RetryGeneration повторно запускает генерацию по сохранённому промпту
// после ошибки или блокировки модерацией
func (s *Service) RetryGeneration(ctx context.Context, user *domain.User) error {
	session, err := s.SessionRepo.GetActiveByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to get active session: %w", err)
	}
	if session == nil || session.PromptFinal == nil || *session.PromptFinal == "" {
		return s.notify(ctx, user, texts.SendPhotoFirst(user.Lang))
	}
	if session.State == domain.SessionProcessing {
		return s.notify(ctx, user, texts.AlreadyProcessing(user.Lang))
	}

	userInput := ""
	if session.UserInput != nil {
		userInput = *session.UserInput
	}
	return s.startGeneration(ctx, user, session, userInput, *session.PromptFinal)
}

// ResumeSession пытается запустить припаркованную в wait_buy_credit сессию
// после пополнения. balance — свежий баланс после начисления.
// Возвращает true, если генерация стартовала.
func (s *Service) ResumeSession(ctx context.Context, user *domain.User, balance int) (bool, error) {
	session, err := s.SessionRepo.GetActiveByUser(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("failed to get active session: %w", err)
	}
	if session == nil || session.State != domain.SessionWaitBuyCredit {
		return false, nil
	}
	if session.PromptFinal == nil || *session.PromptFinal == "" {
		return false, nil
	}

	needed := session.PhotosNeeded()
	if balance < needed {
		// Пополнение не покрыло стоимость: сообщаем остаток и ждём дальше
		if err := s.notify(ctx, user, texts.ShortfallAfterTopUp(user.Lang, needed-balance)); err != nil {
			return false, err
		}
		return false, nil
	}

	userInput := ""
	if session.UserInput != nil {
		userInput = *session.UserInput
	}
	if err := s.startGeneration(ctx, user, session, userInput, *session.PromptFinal); err != nil {
		return false, err
	}
	return true, nil
}

// startGeneration списывает кредиты и ставит джобу в очередь.
// При нехватке баланса сессия паркуется с финальным промптом,
// чтобы после пополнения продолжить без повторного ввода.
func (s *Service) startGeneration(ctx context.Context, user *domain.User, session *domain.Session, userInput, promptFinal string) error {
	needed := session.PhotosNeeded()

	debited, err := s.UserRepo.DebitCredits(ctx, user.ID, needed)
	if err != nil {
		return fmt.Errorf("failed to debit credits: %w", err)
	}
	if !debited {
		if err := s.SessionRepo.SetAwaitingCredits(ctx, session.ID, userInput, promptFinal); err != nil {
			return fmt.Errorf("failed to park session: %w", err)
		}
		if err := s.Telegram.SendMessageWithKeyboard(ctx, user.TelegramChatID,
			texts.NotEnoughCredits(user.Lang, needed, user.Credits), texts.PacksKeyboard()); err != nil {
			s.Log.Warn("failed to send top-up offer",
				"error", err,
				"user_id", user.ID,
			)
		}
		s.Log.Info("session parked awaiting credits",
			"session_id", session.ID,
			"user_id", user.ID,
			"needed", needed,
		)
		return nil
	}

	if err := s.SessionRepo.SetProcessing(ctx, session.ID, userInput, promptFinal, needed); err != nil {
		s.refundDebit(ctx, user.ID, needed)
		return fmt.Errorf("failed to move session to processing: %w", err)
	}

	now := time.Now()
	job := &domain.Job{
		ID:        uuid.New(),
		SessionID: session.ID,
		UserID:    user.ID,
		Status:    domain.JobQueued,
		Env:       s.Cfg.Env,
		CreatedAt: now,
	}
	if err := s.JobRepo.Create(ctx, job); err != nil {
		s.refundDebit(ctx, user.ID, needed)
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	// Сообщение-индикатор: воркер будет редактировать его по ходу пайплайна
	messageID, err := s.Telegram.SendMessageReturnID(ctx, user.TelegramChatID, texts.Generating(user.Lang))
	if err != nil {
		s.Log.Warn("failed to send progress message",
			"error", err,
			"session_id", session.ID,
		)
	} else if err := s.SessionRepo.SetProgressMessage(ctx, session.ID, user.TelegramChatID, messageID); err != nil {
		s.Log.Warn("failed to save progress message",
			"error", err,
			"session_id", session.ID,
		)
	}

	s.Log.Info("generation job enqueued",
		"job_id", job.ID,
		"session_id", session.ID,
		"user_id", user.ID,
		"credits_spent", needed,
	)
	return nil
}

// refundDebit возвращает списанные кредиты, если постановка джобы сорвалась
func (s *Service) refundDebit(ctx context.Context, userID uuid.UUID, amount int) {
	if _, err := s.UserRepo.AddCredits(ctx, userID, amount); err != nil {
		s.Log.Error("failed to refund debit after enqueue failure",
			"error", err,
			"user_id", userID,
			"amount", amount,
		)
	}
}

// notify отправляет пользователю сообщение, ошибки доставки только логируются
func (s *Service) notify(ctx context.Context, user *domain.User, text string) error {
	if err := s.Telegram.SendMessage(ctx, user.TelegramChatID, text); err != nil {
		s.Log.Warn("failed to send message",
			"error", err,
			"user_id", user.ID,
		)
	}
	return nil
}
