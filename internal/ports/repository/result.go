package repository

import (
	"context"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/google/uuid"
)

// IResultRepo append-only журнал успешных генераций
type IResultRepo interface {
	Create(ctx context.Context, result *domain.Result) error

	// SetTelegramFileID прикрепляет file_id доставленного сообщения —
	// единственная разрешённая мутация результата
	SetTelegramFileID(ctx context.Context, id uuid.UUID, fileID string) error
}
