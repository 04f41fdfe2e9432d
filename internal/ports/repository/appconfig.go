package repository

import "context"

// IAppConfigRepo key-value конфигурация приложения в БД
type IAppConfigRepo interface {
	GetValue(ctx context.Context, key string) (string, error)
}
