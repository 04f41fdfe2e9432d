package app

import (
	"time"

	server "github.com/admin/tg-bots/photo-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/alerter"
	genaiAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/genai"
	kafkaAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/storage/redis"
	"github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/photo-bot/internal/pkg/logger"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/photoflow"
	"github.com/admin/tg-bots/photo-bot/internal/usecases/worker"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres *pg.Config             `envconfig:"POSTGRES"`
	Redis    *redisAdapter.Config   `envconfig:"REDIS"`
	S3       *s3.Config             `envconfig:"S3"`
	Log      *logger.Config         `envconfig:"LOG"`
	Server   *server.Config         `envconfig:"APISERVER"`
	Telegram *telegram.Config       `envconfig:"TELEGRAM"`
	GenAI    *genaiAdapter.Config   `envconfig:"GENAI"`
	Alerter  *alerterAdapter.Config `envconfig:"ALERTER"`
	Kafka    *kafkaAdapter.Config   `envconfig:"KAFKA"`
	Flow     *photoflow.Config      `envconfig:"FLOW"`
	Worker   *worker.Config         `envconfig:"WORKER"`

	// CacheBackend бэкенд кэша конфигурации: "redis" или "memory"
	CacheBackend   string        `envconfig:"CACHE_BACKEND" default:"memory"`
	ConfigCacheTTL time.Duration `envconfig:"CONFIG_CACHE_TTL" default:"5m"`
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
