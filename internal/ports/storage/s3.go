package storage

import "context"

// IS3Client интерфейс S3-совместимого хранилища (MinIO) для долговечной
// копии результатов, независимой от file_id чат-транспорта
type IS3Client interface {
	PutFile(ctx context.Context, path string, data []byte, contentType string) error
	GetFile(ctx context.Context, path string) ([]byte, error)
}
