package repository

import (
	"context"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/google/uuid"
)

// IJobRepo очередь джоб генерации. ClaimNext — атомарный примитив
// хранилища: джоба выдаётся не более чем одному воркеру.
type IJobRepo interface {
	Create(ctx context.Context, job *domain.Job) error

	// ClaimNext атомарно забирает следующую queued джобу для воркера
	// в данном окружении. nil, nil — очередь пуста.
	ClaimNext(ctx context.Context, workerID, env string) (*domain.Job, error)

	// MarkDone завершает джобу успешно
	MarkDone(ctx context.Context, id uuid.UUID) error

	// MarkDoneFromProcessing завершает джобу успешно условным апдейтом
	// по статусу processing. Для исходов без результата (блокировка
	// модерацией): true возвращается ровно один раз на джобу, и только
	// этот вызов имеет право на возврат кредитов.
	MarkDoneFromProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	// MarkError завершает джобу с ошибкой. Условный апдейт по статусу
	// processing: true возвращается ровно один раз на джобу, и только
	// этот вызов имеет право на возврат кредитов.
	MarkError(ctx context.Context, id uuid.UUID, errorText string) (bool, error)
}
