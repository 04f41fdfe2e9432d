package service

import "context"

// GenerateImageRequest запрос на генерацию картинки
type GenerateImageRequest struct {
	Prompt      string
	Image       []byte
	MimeType    string
	Model       string
	AspectRatio string
}

// GenerateImageResult ответ провайдера генерации
type GenerateImageResult struct {
	Image []byte
}

// IGenerationService клиент внешнего API генерации картинок.
// Блокировка модерацией возвращается как domain.ModerationBlockError,
// пустой ответ — как domain.ErrNoImage.
type IGenerationService interface {
	GenerateImage(ctx context.Context, req GenerateImageRequest) (*GenerateImageResult, error)
}

// PromptResult результат финализации промпта
type PromptResult struct {
	OK     bool
	Prompt string
	Retry  bool // стиль не распознан, просим пользователя переформулировать
}

// IPromptGenerator превращает пользовательское описание стиля в финальный
// промпт для генерации. При ошибке провайдера возвращает исходный текст.
type IPromptGenerator interface {
	GeneratePrompt(ctx context.Context, userInput string) (PromptResult, error)
}
