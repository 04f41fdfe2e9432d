// Package worker консьюмер очереди джоб генерации. Несколько процессов
// могут крутить один и тот же цикл: claim отдаёт джобу ровно одному.
package worker

import (
	"log/slog"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/ports/events"
	"github.com/admin/tg-bots/photo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/photo-bot/internal/ports/service"
	"github.com/admin/tg-bots/photo-bot/internal/ports/storage"
	"github.com/admin/tg-bots/photo-bot/internal/ports/telegram"
)

// Config настройки воркера
type Config struct {
	WorkerID     string        `envconfig:"WORKER_ID" default:"worker-1"`
	Env          string        `envconfig:"ENV" default:"prod"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
	DefaultModel string        `envconfig:"DEFAULT_MODEL" default:"gemini-2.5-flash-image"`
}

type Service struct {
	UserRepo    repository.IUserRepo
	SessionRepo repository.ISessionRepo
	JobRepo     repository.IJobRepo
	ResultRepo  repository.IResultRepo
	Telegram    telegram.IClient
	Generator   service.IGenerationService
	Alerter     service.IAlerterService
	S3          storage.IS3Client
	Producer    events.IProducer
	Cfg         *Config
	Log         *slog.Logger
}

func New(
	userRepo repository.IUserRepo,
	sessionRepo repository.ISessionRepo,
	jobRepo repository.IJobRepo,
	resultRepo repository.IResultRepo,
	telegramClient telegram.IClient,
	generator service.IGenerationService,
	alerter service.IAlerterService,
	s3 storage.IS3Client,
	producer events.IProducer,
	cfg *Config,
	log *slog.Logger,
) *Service {
	return &Service{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		JobRepo:     jobRepo,
		ResultRepo:  resultRepo,
		Telegram:    telegramClient,
		Generator:   generator,
		Alerter:     alerter,
		S3:          s3,
		Producer:    producer,
		Cfg:         cfg,
		Log:         log,
	}
}
