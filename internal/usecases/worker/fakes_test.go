package worker

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/admin/tg-bots/photo-bot/internal/ports/events"
	"github.com/admin/tg-bots/photo-bot/internal/ports/service"
	tgports "github.com/admin/tg-bots/photo-bot/internal/ports/telegram"
	"github.com/google/uuid"
)

type userRepoFake struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func (f *userRepoFake) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *userRepoFake) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	copied := *user
	return &copied, nil
}

func (f *userRepoFake) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return nil, sql.ErrNoRows
}

func (f *userRepoFake) AddCredits(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return 0, errors.New("user not found")
	}
	user.Credits += amount
	return user.Credits, nil
}

func (f *userRepoFake) DebitCredits(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.Credits < amount {
		return false, nil
	}
	user.Credits -= amount
	return true, nil
}

func (f *userRepoFake) IncrementGenerations(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.TotalGenerations++
	}
	return nil
}

func (f *userRepoFake) credits(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].Credits
}

type sessionRepoFake struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
	// getErrs задаёт, сколько ближайших GetByID упадут
	getErrs int
}

func (f *sessionRepoFake) Create(ctx context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *sessionRepoFake) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErrs > 0 {
		f.getErrs--
		return nil, errors.New("induced db failure")
	}
	session, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", sql.ErrNoRows)
	}
	copied := *session
	return &copied, nil
}

func (f *sessionRepoFake) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	return nil, nil
}

func (f *sessionRepoFake) CancelActiveForUser(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (f *sessionRepoFake) UpdatePhotos(ctx context.Context, id uuid.UUID, photos domain.PhotoList, state domain.SessionState) error {
	return nil
}

func (f *sessionRepoFake) SetAwaitingCredits(ctx context.Context, id uuid.UUID, userInput, promptFinal string) error {
	return nil
}

func (f *sessionRepoFake) SetProcessing(ctx context.Context, id uuid.UUID, userInput, promptFinal string, creditsSpent int) error {
	return nil
}

func (f *sessionRepoFake) UpdateState(ctx context.Context, id uuid.UUID, state domain.SessionState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	session.State = state
	return nil
}

func (f *sessionRepoFake) SetProgressMessage(ctx context.Context, id uuid.UUID, chatID, messageID int64) error {
	return nil
}

func (f *sessionRepoFake) CompleteResult(ctx context.Context, id uuid.UUID, resultFileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return errors.New("session not found")
	}
	session.State = domain.SessionConfirmResult
	session.LastResultFileID = &resultFileID
	return nil
}

func (f *sessionRepoFake) state(id uuid.UUID) domain.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[id].State
}

type jobRepoFake struct {
	mu   sync.Mutex
	jobs []*domain.Job
}

func (f *jobRepoFake) Create(ctx context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *job
	f.jobs = append(f.jobs, &copied)
	return nil
}

func (f *jobRepoFake) ClaimNext(ctx context.Context, workerID, env string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.jobs {
		if job.ID == id {
			job.Status = domain.JobDone
			return nil
		}
	}
	return errors.New("job not found")
}

func (f *jobRepoFake) MarkDoneFromProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
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
	f.mu.Lock()
	defer f.mu.Unlock()
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

func (f *jobRepoFake) status(id uuid.UUID) domain.JobStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.jobs {
		if job.ID == id {
			return job.Status
		}
	}
	return ""
}

type resultRepoFake struct {
	mu      sync.Mutex
	results []*domain.Result
}

func (f *resultRepoFake) Create(ctx context.Context, result *domain.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *result
	f.results = append(f.results, &copied)
	return nil
}

func (f *resultRepoFake) SetTelegramFileID(ctx context.Context, id uuid.UUID, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, result := range f.results {
		if result.ID == id {
			result.TelegramFileID = &fileID
		}
	}
	return nil
}

type telegramFake struct {
	mu         sync.Mutex
	messages   []string
	keyboards  []map[string]interface{}
	photosSent int
	// sendPhotoErrs задаёт, сколько ближайших SendPhoto упадут
	sendPhotoErrs int
	sendPhotoErr  error
}

func (f *telegramFake) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *telegramFake) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	f.keyboards = append(f.keyboards, keyboard)
	return nil
}

func (f *telegramFake) SendMessageReturnID(ctx context.Context, chatID int64, text string) (int64, error) {
	return 1, nil
}

func (f *telegramFake) SendPhoto(ctx context.Context, chatID int64, photo []byte, filename string, keyboard map[string]interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendPhotoErrs > 0 {
		f.sendPhotoErrs--
		return "", f.sendPhotoErr
	}
	f.photosSent++
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
	return []byte("source-photo-bytes"), nil
}

func (f *telegramFake) SendInvoice(ctx context.Context, req tgports.SendInvoiceRequest) error {
	return nil
}

func (f *telegramFake) AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage *string) error {
	return nil
}

type generatorFake struct {
	err   error
	image []byte
	calls int
}

func (f *generatorFake) GenerateImage(ctx context.Context, req service.GenerateImageRequest) (*service.GenerateImageResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &service.GenerateImageResult{Image: f.image}, nil
}

type alerterFake struct {
	mu            sync.Mutex
	alerts        []string
	notifications []string
	notifPhotos   [][][]byte
}

func (f *alerterFake) SendAlert(ctx context.Context, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, message)
	return nil
}

func (f *alerterFake) SendNotification(ctx context.Context, caption string, photos ...[]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, caption)
	f.notifPhotos = append(f.notifPhotos, photos)
	return nil
}

type s3Fake struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (f *s3Fake) PutFile(ctx context.Context, path string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	return nil
}

func (f *s3Fake) GetFile(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path], nil
}

type producerFake struct {
	mu     sync.Mutex
	events []events.GenerationEvent
}

func (f *producerFake) SendGenerationEvent(ctx context.Context, event events.GenerationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

type workerFixture struct {
	users     *userRepoFake
	sessions  *sessionRepoFake
	jobs      *jobRepoFake
	results   *resultRepoFake
	telegram  *telegramFake
	generator *generatorFake
	alerter   *alerterFake
	s3        *s3Fake
	producer  *producerFake
	svc       *Service
}

func newWorkerFixture() *workerFixture {
	f := &workerFixture{
		users:     &userRepoFake{users: make(map[uuid.UUID]*domain.User)},
		sessions:  &sessionRepoFake{sessions: make(map[uuid.UUID]*domain.Session)},
		jobs:      &jobRepoFake{},
		results:   &resultRepoFake{},
		telegram:  &telegramFake{},
		generator: &generatorFake{image: testPNG()},
		alerter:   &alerterFake{},
		s3:        &s3Fake{files: make(map[string][]byte)},
		producer:  &producerFake{},
	}
	cfg := &Config{WorkerID: "worker-test", Env: "test", PollInterval: 10 * time.Millisecond, DefaultModel: "test-model"}
	f.svc = New(f.users, f.sessions, f.jobs, f.results, f.telegram,
		f.generator, f.alerter, f.s3, f.producer, cfg, slog.Default())
	return f
}

// addProcessingJob создаёт пользователя, сессию в processing и заклейменную
// джобу, как если бы её только что выдал ClaimNext
func (f *workerFixture) addProcessingJob(creditsSpent int) (*domain.Job, *domain.Session, *domain.User) {
	user := &domain.User{
		ID:             uuid.New(),
		TelegramUserID: 100,
		TelegramChatID: 200,
		Lang:           domain.LangEN,
	}
	f.users.users[user.ID] = user

	input := "watercolor"
	prompt := "a watercolor portrait"
	session := &domain.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		State:        domain.SessionProcessing,
		IsActive:     true,
		Photos:       domain.PhotoList{"src-photo"},
		UserInput:    &input,
		PromptFinal:  &prompt,
		CreditsSpent: creditsSpent,
	}
	f.sessions.sessions[session.ID] = session

	workerID := "worker-test"
	job := &domain.Job{
		ID:        uuid.New(),
		SessionID: session.ID,
		UserID:    user.ID,
		Status:    domain.JobProcessing,
		Env:       "test",
		WorkerID:  &workerID,
		Attempts:  1,
	}
	f.jobs.jobs = append(f.jobs.jobs, job)
	claimed := *job
	return &claimed, session, user
}

func testPNG() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
