// Package photoflow операции сессии генерации: это write-контракт,
// который дёргает гейтвей на входящие события пользователя.
package photoflow

import (
	"log/slog"

	"github.com/admin/tg-bots/photo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/photo-bot/internal/ports/service"
	"github.com/admin/tg-bots/photo-bot/internal/ports/telegram"
)

// Config настройки флоу генерации
type Config struct {
	Env            string `envconfig:"ENV" default:"prod"`
	DefaultModel   string `envconfig:"DEFAULT_MODEL" default:"gemini-2.5-flash-image"`
	WelcomeCredits int    `envconfig:"WELCOME_CREDITS" default:"1"`
}

type Service struct {
	UserRepo        repository.IUserRepo
	SessionRepo     repository.ISessionRepo
	JobRepo         repository.IJobRepo
	TransactionRepo repository.ITransactionRepo
	Telegram        telegram.IClient
	PromptGenerator service.IPromptGenerator
	Cfg             *Config
	Log             *slog.Logger
}

func New(
	userRepo repository.IUserRepo,
	sessionRepo repository.ISessionRepo,
	jobRepo repository.IJobRepo,
	transactionRepo repository.ITransactionRepo,
	telegramClient telegram.IClient,
	promptGenerator service.IPromptGenerator,
	cfg *Config,
	log *slog.Logger,
) *Service {
	return &Service{
		UserRepo:        userRepo,
		SessionRepo:     sessionRepo,
		JobRepo:         jobRepo,
		TransactionRepo: transactionRepo,
		Telegram:        telegramClient,
		PromptGenerator: promptGenerator,
		Cfg:             cfg,
		Log:             log,
	}
}
