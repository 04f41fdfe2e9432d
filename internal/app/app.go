package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	server "github.com/admin/tg-bots/photo-bot/internal/adapters/primary/http"
	healthcheckController "github.com/admin/tg-bots/photo-bot/internal/adapters/primary/http/controllers/healthcheck"
	alerterAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/alerter"
	genaiAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/genai"
	kafkaAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/storage/s3"
	telegramAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/photo-bot/internal/pkg/logger"
	"github.com/admin/tg-bots/photo-bot/internal/ports/cache"
	"github.com/admin/tg-bots/photo-bot/internal/ports/events"
	appConfigRepo "github.com/admin/tg-bots/photo-bot/internal/repository/appconfig"
	jobRepo "github.com/admin/tg-bots/photo-bot/internal/repository/job"
	resultRepo "github.com/admin/tg-bots/photo-bot/internal/repository/result"
	sessionRepo "github.com/admin/tg-bots/photo-bot/internal/repository/session"
	transactionRepo "github.com/admin/tg-bots/photo-bot/internal/repository/transaction"
	userRepo "github.com/admin/tg-bots/photo-bot/internal/repository/user"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/ledger"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/photoflow"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/worker"
	"golang.org/x/sync/errgroup"

	"github.com/jmoiron/sqlx"
)

type App struct {
	Name string
	Cfg  *Config
	Log  *slog.Logger

	// Flow и Ledger — write-контракт для гейтвея, который импортирует
	// этот модуль. Воркер-процесс их не вызывает, но собирает, чтобы
	// падать на старте при битой конфигурации, а не в гейтвее.
	Flow   *photoflow.Service
	Ledger *ledger.Service
}

func New(name string, cfg *Config) *App {
	return &App{
		Name: name,
		Cfg:  cfg,
		Log:  logger.New(name, cfg.Log),
	}
}

func (a *App) Run(ctx context.Context) error {
	a.Log.Info("running photo-bot worker")

	db, err := a.initPostgres()
	if err != nil {
		return fmt.Errorf("failed to init postgres: %w", err)
	}

	persistenceLayer := pg.NewDB(db)
	users := userRepo.New(persistenceLayer, a.Log)
	sessions := sessionRepo.New(persistenceLayer, a.Log)
	jobs := jobRepo.New(persistenceLayer, a.Log)
	transactions := transactionRepo.New(persistenceLayer, a.Log)
	results := resultRepo.New(persistenceLayer, a.Log)

	configCache, err := a.initCache()
	if err != nil {
		return fmt.Errorf("failed to init cache: %w", err)
	}
	appConfig := appConfigRepo.NewCached(
		appConfigRepo.New(persistenceLayer, a.Log),
		configCache, a.Cfg.ConfigCacheTTL, a.Log)

	telegramClient := telegramAdapter.NewClient(a.Cfg.Telegram.BotToken, a.Log)
	genaiClient := genaiAdapter.NewClient(a.Cfg.GenAI, a.Log)
	promptAgent := genaiAdapter.NewPromptAgent(genaiClient, appConfig, a.Log)
	alerterClient := alerterAdapter.NewClient(a.Cfg.Alerter, a.Log)

	minioClient, err := a.Cfg.S3.NewClient()
	if err != nil {
		return fmt.Errorf("failed to init s3 client: %w", err)
	}
	s3Client := s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)

	var producer events.IProducer
	var kafkaProducer *kafkaAdapter.Producer
	if a.Cfg.Kafka != nil && a.Cfg.Kafka.Brokers != "" {
		kafkaProducer, err = kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			return fmt.Errorf("failed to init kafka producer: %w", err)
		}
		producer = kafkaProducer
	} else {
		a.Log.Warn("kafka brokers are not configured, generation events disabled")
	}

	a.Flow = photoflow.New(users, sessions, jobs, transactions,
		telegramClient, promptAgent, a.Cfg.Flow, a.Log)
	a.Ledger = ledger.New(users, transactions, telegramClient, a.Flow, a.Log)

	workerService := worker.New(users, sessions, jobs, results,
		telegramClient, genaiClient, alerterClient, s3Client, producer,
		a.Cfg.Worker, a.Log)

	healthCheck := healthcheckController.New(db, a.Log)
	httpServer := server.NewHTTPServer(a.Cfg.Server, a.Log, healthCheck)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server",
			"host", a.Cfg.Server.Host,
			"port", a.Cfg.Server.Port)

		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := workerService.Run(gCtx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("worker error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Error("failed to shutdown http server", "error", err)
		}

		if err := db.Close(); err != nil {
			a.Log.Error("failed to close database", "error", err)
		}

		if err := configCache.Close(); err != nil {
			a.Log.Error("failed to close cache", "error", err)
		}

		if kafkaProducer != nil {
			if err := kafkaProducer.Close(); err != nil {
				a.Log.Error("failed to close kafka producer", "error", err)
			}
		}

		a.Log.Info("application shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("application error", "error", err)
		return err
	}

	return nil
}

func (a *App) initPostgres() (*sqlx.DB, error) {
	db, err := a.Cfg.Postgres.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	a.Log.Info("postgres connected successfully")

	if err := pg.RunMigrations(db, a.Log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func (a *App) initCache() (cache.Cache, error) {
	if a.Cfg.CacheBackend != "redis" {
		return inmemory.NewCache(nil), nil
	}

	client, err := a.Cfg.Redis.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	a.Log.Info("redis connected successfully")
	return redisAdapter.NewClient(client), nil
}
