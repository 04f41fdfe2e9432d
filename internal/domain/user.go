package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lang язык пользователя для текстов бота
type Lang string

const (
	LangRU Lang = "ru"
	LangEN Lang = "en"
)

// LangFromCode определяет язык по language_code из Telegram
func LangFromCode(code string) Lang {
	if len(code) >= 2 && (code[:2] == "ru" || code[:2] == "RU" || code[:2] == "Ru") {
		return LangRU
	}
	return LangEN
}

// User пользователь бота. Credits — единственный источник правды о праве
// на генерацию: пополняется леджером, списывается/возвращается воркером.
type User struct {
	ID               uuid.UUID `json:"id" db:"id"`
	TelegramUserID   int64     `json:"telegram_user_id" db:"tg_id"`
	TelegramChatID   int64     `json:"telegram_chat_id" db:"chat_id"`
	Username         *string   `json:"username,omitempty" db:"username"`
	Lang             Lang      `json:"lang" db:"lang"`
	Credits          int       `json:"credits" db:"credits"`
	TotalGenerations int       `json:"total_generations" db:"total_generations"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName имя для алертов и уведомлений операторам
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return "@" + *u.Username
	}
	return fmt.Sprintf("tg:%d", u.TelegramUserID)
}
