package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	tgports "github.com/admin/tg-bots/photo-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/texts"
	"github.com/google/uuid"
)

// SelectPack создаёт транзакцию на выбранный пакет и выставляет счёт.
// Прежняя активная транзакция отменяется: счёт всегда один.
func (s *Service) SelectPack(ctx context.Context, user *domain.User, credits, price int) error {
	pack, ok := domain.FindCreditPack(credits, price)
	if !ok {
		// Колбэк с несуществующим пакетом: устаревшая клавиатура или подделка
		s.Log.Warn("unknown credit pack requested",
			"user_id", user.ID,
			"credits", credits,
			"price", price,
		)
		return nil
	}

	if err := s.TransactionRepo.CancelActiveForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to cancel active transactions: %w", err)
	}

	now := time.Now()
	transaction := &domain.Transaction{
		ID:        uuid.New(),
		UserID:    user.ID,
		Amount:    pack.Credits,
		Price:     pack.Price,
		State:     domain.TransactionCreated,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.TransactionRepo.Create(ctx, transaction); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	err := s.Telegram.SendInvoice(ctx, tgports.SendInvoiceRequest{
		ChatID:      user.TelegramChatID,
		Title:       texts.InvoiceTitle(user.Lang, pack.Credits),
		Description: texts.InvoiceDescription(user.Lang, pack.Credits),
		Payload:     transaction.ID.String(),
		Currency:    starsCurrency,
		Amount:      pack.Price,
		PriceLabel:  texts.PackLabel(pack.Credits, pack.Price),
	})
	if err != nil {
		return fmt.Errorf("failed to send invoice: %w", err)
	}

	s.Log.Info("invoice sent",
		"transaction_id", transaction.ID,
		"user_id", user.ID,
		"credits", pack.Credits,
		"price", pack.Price,
	)
	return nil
}

// HandlePreCheckout отвечает на pre_checkout_query. Подтверждаем только
// транзакцию в created: повторный pre-checkout по той же транзакции
// отклоняется условным апдейтом.
func (s *Service) HandlePreCheckout(ctx context.Context, queryID, payload string) error {
	transactionID, err := uuid.Parse(payload)
	if err != nil {
		s.Log.Warn("pre-checkout with malformed payload",
			"query_id", queryID,
			"payload", payload,
		)
		return s.declinePreCheckout(ctx, queryID)
	}

	processed, err := s.TransactionRepo.MarkProcessed(ctx, transactionID, queryID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction processed: %w", err)
	}
	if !processed {
		s.Log.Warn("pre-checkout for unknown or already processed transaction",
			"transaction_id", transactionID,
			"query_id", queryID,
		)
		return s.declinePreCheckout(ctx, queryID)
	}

	if err := s.Telegram.AnswerPreCheckoutQuery(ctx, queryID, true, nil); err != nil {
		return fmt.Errorf("failed to answer pre-checkout query: %w", err)
	}
	return nil
}

// HandlePaymentConfirmed обрабатывает successful_payment. MarkDone —
// compare-and-swap processed -> done: при дубле доставки возвращается nil
// и начисления не происходит. Ровно один вызов получает строку и кредитует.
func (s *Service) HandlePaymentConfirmed(ctx context.Context, user *domain.User, payload, telegramChargeID, providerChargeID string) error {
	transactionID, err := uuid.Parse(payload)
	if err != nil {
		return fmt.Errorf("malformed payment payload %q: %w", payload, err)
	}

	transaction, err := s.TransactionRepo.MarkDone(ctx, transactionID, telegramChargeID, providerChargeID)
	if err != nil {
		return fmt.Errorf("failed to mark transaction done: %w", err)
	}
	if transaction == nil {
		// Дубль колбэка об оплате, начисление уже сделано
		s.Log.Warn("duplicate payment confirmation ignored",
			"transaction_id", transactionID,
			"user_id", user.ID,
		)
		return nil
	}

	balance, err := s.UserRepo.AddCredits(ctx, transaction.UserID, transaction.Amount)
	if err != nil {
		// Деньги списаны, транзакция done, а начисление упало:
		// это инцидент для ручного разбора, а не тихий ретрай
		return fmt.Errorf("failed to add credits for transaction %s: %w", transaction.ID, err)
	}

	s.Log.Info("credits added",
		"transaction_id", transaction.ID,
		"user_id", transaction.UserID,
		"amount", transaction.Amount,
		"balance", balance,
	)

	if err := s.Telegram.SendMessage(ctx, user.TelegramChatID, texts.CreditsAdded(user.Lang, transaction.Amount, balance)); err != nil {
		s.Log.Warn("failed to send credits added message",
			"error", err,
			"user_id", user.ID,
		)
	}

	resumed, err := s.Flow.ResumeSession(ctx, user, balance)
	if err != nil {
		s.Log.Error("failed to resume parked session after top-up",
			"error", err,
			"user_id", user.ID,
		)
		return nil
	}
	if resumed {
		s.Log.Info("parked session resumed after top-up",
			"user_id", user.ID,
			"balance", balance,
		)
	}
	return nil
}

func (s *Service) declinePreCheckout(ctx context.Context, queryID string) error {
	message := "Payment session expired, please pick a pack again"
	if err := s.Telegram.AnswerPreCheckoutQuery(ctx, queryID, false, &message); err != nil {
		return fmt.Errorf("failed to decline pre-checkout query: %w", err)
	}
	return nil
}
