package appConfigRepo

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/photo-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/photo-bot/internal/ports/repository"
)

type appConfigColumns struct {
	TableName string
	Key       string
	Value     string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns appConfigColumns
}

// New создаёт новый репозиторий key-value конфигурации приложения
func New(db persistence.Persistence, log *slog.Logger) ports.IAppConfigRepo {
	cols := appConfigColumns{
		TableName: "photo_app_config",
		Key:       "key",
		Value:     "value",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

// GetValue получает значение настройки по ключу
func (r *Repository) GetValue(ctx context.Context, key string) (string, error) {
	var value string
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.columns.Value,
		r.columns.TableName,
		r.columns.Key)
	if err := r.db.Get(ctx, &value, query, key); err != nil {
		r.Log.Error("failed to get app config value",
			"error", err,
			"key", key)
		return "", fmt.Errorf("failed to get app config value: %w", err)
	}
	return value, nil
}
