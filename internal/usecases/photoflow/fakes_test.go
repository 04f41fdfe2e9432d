package photoflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/admin/tg-bots/photo-bot/internal/ports/service"
	tgports "github.com/admin/tg-bots/photo-bot/internal/ports/telegram"
	"github.com/google/uuid"
)

var errTest = errors.New("induced failure")

type userRepoFake struct {
	users map[uuid.UUID]*domain.User
}

func newUserRepoFake() *userRepoFake {
	return &userRepoFake{users: make(map[uuid.UUID]*domain.User)}
}

func (f *userRepoFake) Create(ctx context.Context, user *domain.User) error {
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *userRepoFake) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	copied := *user
	return &copied, nil
}

func (f *userRepoFake) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	for _, user := range f.users {
		if user.TelegramUserID == telegramID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
}

func (f *userRepoFake) AddCredits(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	user, ok := f.users[userID]
	if !ok {
		return 0, errors.New("user not found")
	}
	user.Credits += amount
	return user.Credits, nil
}

func (f *userRepoFake) DebitCredits(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	user, ok := f.users[userID]
	if !ok {
		return false, errors.New("user not found")
	}
	if user.Credits < amount {
		return false, nil
	}
	user.Credits -= amount
	return true, nil
}

func (f *userRepoFake) IncrementGenerations(ctx context.Context, userID uuid.UUID) error {
	if user, ok := f.users[userID]; ok {
		user.TotalGenerations++
	}
	return nil
}

type sessionRepoFake struct {
	sessions map[uuid.UUID]*domain.Session
}

func newSessionRepoFake() *sessionRepoFake {
	return &sessionRepoFake{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (f *sessionRepoFake) Create(ctx context.Context, session *domain.Session) error {
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *sessionRepoFake) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sql.ErrNoRows)
	}
	copied := *session
	return &copied, nil
}

func (f *sessionRepoFake) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	var latest *domain.Session
	for _, session := range f.sessions {
		if session.UserID != userID || !session.IsActive {
			continue
		}
		if latest == nil || session.CreatedAt.After(latest.CreatedAt) {
			latest = session
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (f *sessionRepoFake) CancelActiveForUser(ctx context.Context, userID uuid.UUID) error {
	for _, session := range f.sessions {
		if session.UserID == userID && session.IsActive {
			session.IsActive = false
			session.State = domain.SessionCanceled
		}
	}
	return nil
}

func (f *sessionRepoFake) UpdatePhotos(ctx context.Context, id uuid.UUID, photos domain.PhotoList, state domain.SessionState) error {
	session, ok := f.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	session.Photos = photos
	session.State = state
	return nil
}

func (f *sessionRepoFake) SetAwaitingCredits(ctx context.Context, id uuid.UUID, userInput, promptFinal string) error {
	session, ok := f.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	session.State = domain.SessionWaitBuyCredit
	session.UserInput = &userInput
	session.PromptFinal = &promptFinal
	return nil
}

func (f *sessionRepoFake) SetProcessing(ctx context.Context, id uuid.UUID, userInput, promptFinal string, creditsSpent int) error {
	session, ok := f.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	session.State = domain.SessionProcessing
	session.UserInput = &userInput
	session.PromptFinal = &promptFinal
	session.CreditsSpent = creditsSpent
	return nil
}

func (f *sessionRepoFake) UpdateState(ctx context.Context, id uuid.UUID, state domain.SessionState) error {
	session, ok := f.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	session.State = state
	return nil
}

func (f *sessionRepoFake) SetProgressMessage(ctx context.Context, id uuid.UUID, chatID, messageID int64) error {
	session, ok := f.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	session.ProgressChatID = &chatID
	session.ProgressMessageID = &messageID
	return nil
}

func (f *sessionRepoFake) CompleteResult(ctx context.Context, id uuid.UUID, resultFileID string) error {
	session, ok := f.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	session.State = domain.SessionConfirmResult
	session.LastResultFileID = &resultFileID
	session.ProgressChatID = nil
	session.ProgressMessageID = nil
	return nil
}

type jobRepoFake struct {
	jobs      []*domain.Job
	createErr error
}

func newJobRepoFake() *jobRepoFake {
	return &jobRepoFake{}
}

func (f *jobRepoFake) Create(ctx context.Context, job *domain.Job) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *job
	f.jobs = append(f.jobs, &copied)
	return nil
}

func (f *jobRepoFake) ClaimNext(ctx context.Context, workerID, env string) (*domain.Job, error) {
	for _, job := range f.jobs {
		if job.Status == domain.JobQueued && job.Env == env {
			job.Status = domain.JobProcessing
			job.WorkerID = &workerID
			job.Attempts++
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *jobRepoFake) MarkDone(ctx context.Context, id uuid.UUID) error {
	for _, job := range f.jobs {
		if job.ID == id {
			job.Status = domain.JobDone
			return nil
		}
	}
	return errors.New("job not found")
}

func (f *jobRepoFake) MarkDoneFromProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	for _, job := range f.jobs {
		if job.ID == id {
			if job.Status != domain.JobProcessing {
				return false, nil
			}
			job.Status = domain.JobDone
			return true, nil
		}
	}
	return false, nil
}

func (f *jobRepoFake) MarkError(ctx context.Context, id uuid.UUID, errorText string) (bool, error) {
	for _, job := range f.jobs {
		if job.ID == id {
			if job.Status != domain.JobProcessing {
				return false, nil
			}
			job.Status = domain.JobError
			job.Error = &errorText
			return true, nil
		}
	}
	return false, nil
}

type transactionRepoFake struct {
	transactions map[uuid.UUID]*domain.Transaction
}

func newTransactionRepoFake() *transactionRepoFake {
	return &transactionRepoFake{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (f *transactionRepoFake) Create(ctx context.Context, transaction *domain.Transaction) error {
	copied := *transaction
	f.transactions[transaction.ID] = &copied
	return nil
}

func (f *transactionRepoFake) CancelActiveForUser(ctx context.Context, userID uuid.UUID) error {
	for _, transaction := range f.transactions {
		if transaction.UserID == userID && transaction.IsActive {
			transaction.IsActive = false
			transaction.State = domain.TransactionCanceled
		}
	}
	return nil
}

func (f *transactionRepoFake) MarkProcessed(ctx context.Context, id uuid.UUID, preCheckoutQueryID string) (bool, error) {
	transaction, ok := f.transactions[id]
	if !ok || transaction.State != domain.TransactionCreated {
		return false, nil
	}
	transaction.State = domain.TransactionProcessed
	transaction.PreCheckoutQueryID = &preCheckoutQueryID
	return true, nil
}

func (f *transactionRepoFake) MarkDone(ctx context.Context, id uuid.UUID, telegramChargeID, providerChargeID string) (*domain.Transaction, error) {
	transaction, ok := f.transactions[id]
	if !ok || transaction.State != domain.TransactionProcessed {
		return nil, nil
	}
	transaction.State = domain.TransactionDone
	transaction.IsActive = false
	transaction.TelegramPaymentChargeID = &telegramChargeID
	transaction.ProviderPaymentChargeID = &providerChargeID
	copied := *transaction
	return &copied, nil
}

type sentMessage struct {
	chatID   int64
	text     string
	keyboard map[string]interface{}
}

type telegramFake struct {
	messages      []sentMessage
	invoices      []string // payload каждого счёта
	nextMessageID int64
}

func newTelegramFake() *telegramFake {
	return &telegramFake{}
}

func (f *telegramFake) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *telegramFake) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (f *telegramFake) SendMessageReturnID(ctx context.Context, chatID int64, text string) (int64, error) {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text})
	f.nextMessageID++
	return f.nextMessageID, nil
}

func (f *telegramFake) SendPhoto(ctx context.Context, chatID int64, photo []byte, filename string, keyboard map[string]interface{}) (string, error) {
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: filename, keyboard: keyboard})
	return "delivered-file-id", nil
}

func (f *telegramFake) EditMessageText(ctx context.Context, chatID, messageID int64, text string) error {
	return nil
}

func (f *telegramFake) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return nil
}

func (f *telegramFake) GetFilePath(ctx context.Context, fileID string) (string, error) {
	return "photos/" + fileID, nil
}

func (f *telegramFake) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	return []byte("source-bytes"), nil
}

func (f *telegramFake) SendInvoice(ctx context.Context, req tgports.SendInvoiceRequest) error {
	f.invoices = append(f.invoices, req.Payload)
	return nil
}

func (f *telegramFake) AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage *string) error {
	return nil
}

func (f *telegramFake) lastMessage() *sentMessage {
	if len(f.messages) == 0 {
		return nil
	}
	return &f.messages[len(f.messages)-1]
}

type promptGeneratorFake struct {
	retry bool
}

func (f *promptGeneratorFake) GeneratePrompt(ctx context.Context, userInput string) (service.PromptResult, error) {
	if f.retry {
		return service.PromptResult{Retry: true}, nil
	}
	return service.PromptResult{OK: true, Prompt: "final: " + userInput}, nil
}

type flowFixture struct {
	users        *userRepoFake
	sessions     *sessionRepoFake
	jobs         *jobRepoFake
	transactions *transactionRepoFake
	telegram     *telegramFake
	prompts      *promptGeneratorFake
	svc          *Service
}

func newFlowFixture() *flowFixture {
	f := &flowFixture{
		users:        newUserRepoFake(),
		sessions:     newSessionRepoFake(),
		jobs:         newJobRepoFake(),
		transactions: newTransactionRepoFake(),
		telegram:     newTelegramFake(),
		prompts:      &promptGeneratorFake{},
	}
	cfg := &Config{Env: "test", DefaultModel: "test-model", WelcomeCredits: 1}
	f.svc = New(f.users, f.sessions, f.jobs, f.transactions, f.telegram, f.prompts, cfg, slog.Default())
	return f
}

func (f *flowFixture) addUser(credits int) *domain.User {
	user := &domain.User{
		ID:             uuid.New(),
		TelegramUserID: 100,
		TelegramChatID: 200,
		Lang:           domain.LangEN,
		Credits:        credits,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	f.users.users[user.ID] = user
	return user
}
