package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionState состояние сессии генерации
type SessionState string

const (
	SessionWaitPhoto     SessionState = "wait_photo"       // ждём фото
	SessionWaitDesc      SessionState = "wait_description" // ждём описание стиля
	SessionWaitBuyCredit SessionState = "wait_buy_credit"  // не хватило кредитов, ждём пополнения
	SessionProcessing    SessionState = "processing"       // джоба в работе, ввод игнорируется
	SessionConfirmResult SessionState = "confirm_result"   // результат доставлен
	SessionCanceled      SessionState = "canceled"         // вытеснена новой сессией
)

// IsTerminal сессия больше не принимает пользовательский ввод
func (s SessionState) IsTerminal() bool {
	return s == SessionCanceled
}

// PhotoList список file_id исходных фото, хранится как JSONB
type PhotoList []string

func (p *PhotoList) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported photo list type %T", value)
	}

	if len(bytes) == 0 {
		*p = nil
		return nil
	}
	return json.Unmarshal(bytes, p)
}

func (p PhotoList) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Session одна сессия генерации. Инвариант: не больше одной активной
// сессии на пользователя, новая сессия вытесняет старую в canceled.
type Session struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	UserID            uuid.UUID    `json:"user_id" db:"user_id"`
	State             SessionState `json:"state" db:"state"`
	IsActive          bool         `json:"is_active" db:"is_active"`
	Photos            PhotoList    `json:"photos" db:"photos"`
	UserInput         *string      `json:"user_input,omitempty" db:"user_input"`
	PromptFinal       *string      `json:"prompt_final,omitempty" db:"prompt_final"`
	SelectedModel     *string      `json:"selected_model,omitempty" db:"selected_model"`
	SelectedAspect    *string      `json:"selected_aspect_ratio,omitempty" db:"selected_aspect_ratio"`
	SelectedQuality   *string      `json:"selected_quality,omitempty" db:"selected_quality"`
	CreditsSpent      int          `json:"credits_spent" db:"credits_spent"`
	ProgressChatID    *int64       `json:"progress_chat_id,omitempty" db:"progress_chat_id"`
	ProgressMessageID *int64       `json:"progress_message_id,omitempty" db:"progress_message_id"`
	LastResultFileID  *string      `json:"last_result_file_id,omitempty" db:"last_result_file_id"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at" db:"updated_at"`
}

// PhotosNeeded сколько кредитов требует генерация по этой сессии
func (s *Session) PhotosNeeded() int {
	if len(s.Photos) == 0 {
		return 1
	}
	return len(s.Photos)
}

// SourceFileID file_id исходного фото для генерации (последнее присланное)
func (s *Session) SourceFileID() string {
	if len(s.Photos) == 0 {
		return ""
	}
	return s.Photos[len(s.Photos)-1]
}

// Params параметры генерации с дефолтами
func (s *Session) Params(defaultModel string) GenerationParams {
	params := GenerationParams{
		Model:       defaultModel,
		AspectRatio: DefaultAspectRatio,
		Quality:     DefaultQuality,
	}
	if s.SelectedModel != nil && *s.SelectedModel != "" {
		params.Model = *s.SelectedModel
	}
	if s.SelectedAspect != nil && *s.SelectedAspect != "" {
		params.AspectRatio = *s.SelectedAspect
	}
	if s.SelectedQuality != nil && *s.SelectedQuality != "" {
		params.Quality = *s.SelectedQuality
	}
	return params
}
