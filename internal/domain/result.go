package domain

import (
	"time"

	"github.com/google/uuid"
)

// Result неизменяемая запись об успешной генерации. После создания
// обновляется только TelegramFileID доставленного сообщения.
type Result struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	SessionID         uuid.UUID `json:"session_id" db:"session_id"`
	SourcePhotoFileID string    `json:"source_photo_file_id" db:"source_photo_file_id"`
	UserInput         *string   `json:"user_input,omitempty" db:"user_input"`
	GeneratedPrompt   *string   `json:"generated_prompt,omitempty" db:"generated_prompt"`
	StoragePath       string    `json:"result_storage_path" db:"result_storage_path"`
	Model             string    `json:"model" db:"model"`
	AspectRatio       string    `json:"aspect_ratio" db:"aspect_ratio"`
	Quality           string    `json:"quality" db:"quality"`
	TelegramFileID    *string   `json:"telegram_file_id,omitempty" db:"telegram_file_id"`
	Env               string    `json:"env" db:"env"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
