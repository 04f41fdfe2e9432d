// Package ledger операции платёжного леджера: выбор пакета, pre-checkout
// и подтверждение оплаты. Каждый переход транзакции — условный UPDATE,
// поэтому дубли колбэков провайдера не приводят к двойному начислению.
package ledger

import (
	"log/slog"

	"github.com/admin/tg-bots/photo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/photo-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/photoflow"
)

const starsCurrency = "XTR"

type Service struct {
	UserRepo        repository.IUserRepo
	TransactionRepo repository.ITransactionRepo
	Telegram        telegram.IClient
	Flow            *photoflow.Service
	Log             *slog.Logger
}

func New(
	userRepo repository.IUserRepo,
	transactionRepo repository.ITransactionRepo,
	telegramClient telegram.IClient,
	flow *photoflow.Service,
	log *slog.Logger,
) *Service {
	return &Service{
		UserRepo:        userRepo,
		TransactionRepo: transactionRepo,
		Telegram:        telegramClient,
		Flow:            flow,
		Log:             log,
	}
}
