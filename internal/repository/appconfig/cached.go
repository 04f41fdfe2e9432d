package appConfigRepo

import (
	"context"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/ports/cache"
	ports "github.com/admin/tg-bots/photo-bot/internal/ports/repository"
)

// CachedRepository декоратор над конфигурационным репозиторием с TTL-кэшем.
// Промах и ошибка кэша прозрачно уходят в нижний репозиторий.
type CachedRepository struct {
	inner ports.IAppConfigRepo
	cache cache.Cache
	ttl   time.Duration
	Log   *slog.Logger
}

func NewCached(inner ports.IAppConfigRepo, c cache.Cache, ttl time.Duration, log *slog.Logger) ports.IAppConfigRepo {
	return &CachedRepository{
		inner: inner,
		cache: c,
		ttl:   ttl,
		Log:   log,
	}
}

func (r *CachedRepository) GetValue(ctx context.Context, key string) (string, error) {
	cacheKey := "app_config:" + key
	if value, err := r.cache.Get(ctx, cacheKey); err == nil && value != "" {
		return value, nil
	}

	value, err := r.inner.GetValue(ctx, key)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, cacheKey, value, r.ttl); err != nil {
		r.Log.Warn("failed to cache app config value",
			"error", err,
			"key", key)
	}
	return value, nil
}
