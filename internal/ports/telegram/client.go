package telegram

import "context"

// SendInvoiceRequest запрос на выставление счёта (Telegram Stars)
type SendInvoiceRequest struct {
	ChatID      int64
	Title       string
	Description string
	Payload     string // id транзакции — идемпотентный маркер платежа
	Currency    string // "XTR"
	Amount      int
	PriceLabel  string
}

// IClient узкий контракт чат-транспорта, который нужен воркеру и юзкейсам
type IClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error

	// SendMessageReturnID отправляет сообщение и возвращает message_id,
	// чтобы его можно было редактировать по ходу обработки
	SendMessageReturnID(ctx context.Context, chatID int64, text string) (int64, error)
	SendPhoto(ctx context.Context, chatID int64, photo []byte, filename string, keyboard map[string]interface{}) (string, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// GetFilePath резолвит file_id в путь файлового хранилища Telegram
	GetFilePath(ctx context.Context, fileID string) (string, error)
	// DownloadFile скачивает файл по пути из GetFilePath
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)

	SendInvoice(ctx context.Context, req SendInvoiceRequest) error
	AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage *string) error
}
