package service

import "context"

// IAlerterService интерфейс для отправки алертов и бизнес-уведомлений
// операторам. Доставка best-effort: ошибка логируется и не влияет на
// основной поток.
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
	SendNotification(ctx context.Context, caption string, photos ...[]byte) error
}
