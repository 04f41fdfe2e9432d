package events

import (
	"context"

	"github.com/google/uuid"
)

// GenerationEvent событие жизненного цикла генерации для аналитики
type GenerationEvent struct {
	Kind      string // "done" | "error" | "moderation_block"
	JobID     uuid.UUID
	SessionID uuid.UUID
	UserID    uuid.UUID
	Model     string
	Error     string
}

// IProducer отправляет события генерации во внешнюю шину.
// Ошибки доставки логируются и не влияют на пайплайн.
type IProducer interface {
	SendGenerationEvent(ctx context.Context, event GenerationEvent) error
}
