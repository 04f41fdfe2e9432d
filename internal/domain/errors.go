package domain

import "errors"

// BusinessError ошибка бизнес-логики, которая уже залогирована в UseCase
type BusinessError struct {
	Err error
}

func (e *BusinessError) Error() string {
	return e.Err.Error()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func WrapBusinessError(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Err: err}
}

func IsBusinessError(err error) bool {
	var businessErr *BusinessError
	return errors.As(err, &businessErr)
}

// ModerationBlockError генерация отклонена модерацией провайдера.
// Для очереди это не ошибка: кредиты возвращаются, джоба завершается.
type ModerationBlockError struct {
	Reason string
}

func (e *ModerationBlockError) Error() string {
	return "generation blocked by moderation: " + e.Reason
}

func IsModerationBlock(err error) (*ModerationBlockError, bool) {
	var blockErr *ModerationBlockError
	if errors.As(err, &blockErr) {
		return blockErr, true
	}
	return nil, false
}

// ErrNoImage провайдер ответил без картинки
var ErrNoImage = errors.New("generation API returned no image")
