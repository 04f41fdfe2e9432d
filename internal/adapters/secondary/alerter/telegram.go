package alerter

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/photo-bot/internal/adapters/secondary/telegram"
)

//согл, что чистота нарушена, но тут выбор в пользу делегирования ответственности другому адаптеру

// Client клиент для отправки алертов и бизнес-уведомлений через Telegram.
// Алерты идут в операторский чат, бизнес-уведомления о генерациях — в свой.
type Client struct {
	telegramClient *telegram.Client
	alertChatID    int64
	businessChatID int64
	log            *slog.Logger
}

// NewClient создаёт новый клиент для отправки алертов
func NewClient(cfg *Config, log *slog.Logger) *Client {
	if cfg == nil {
		return nil
	}

	tgClient := telegram.NewClient(cfg.BotToken, log)
	businessChatID := cfg.BusinessChatID
	if businessChatID == 0 {
		businessChatID = cfg.AlertChatID
	}
	return &Client{
		telegramClient: tgClient,
		alertChatID:    cfg.AlertChatID,
		businessChatID: businessChatID,
		log:            log,
	}
}

// SendAlert отправляет алерт в операторский чат
func (c *Client) SendAlert(ctx context.Context, message string) error {
	if c == nil || c.telegramClient == nil {
		return fmt.Errorf("alerter client is not initialized")
	}

	if err := c.telegramClient.SendMessage(ctx, c.alertChatID, message); err != nil {
		c.log.Warn("failed to send alert",
			"error", err,
			"chat_id", c.alertChatID,
		)
		return fmt.Errorf("failed to send alert: %w", err)
	}

	c.log.Debug("alert sent successfully",
		"chat_id", c.alertChatID,
	)

	return nil
}

// SendNotification отправляет бизнес-уведомление с приложенными фото.
// Ошибка отправки одного фото не прерывает остальные.
func (c *Client) SendNotification(ctx context.Context, caption string, photos ...[]byte) error {
	if c == nil || c.telegramClient == nil {
		return fmt.Errorf("alerter client is not initialized")
	}

	if err := c.telegramClient.SendMessage(ctx, c.businessChatID, caption); err != nil {
		c.log.Warn("failed to send notification",
			"error", err,
			"chat_id", c.businessChatID,
		)
		return fmt.Errorf("failed to send notification: %w", err)
	}

	for i, photo := range photos {
		if len(photo) == 0 {
			continue
		}
		filename := fmt.Sprintf("photo_%d.png", i+1)
		if _, err := c.telegramClient.SendPhoto(ctx, c.businessChatID, photo, filename, nil); err != nil {
			c.log.Warn("failed to send notification photo",
				"error", err,
				"chat_id", c.businessChatID,
				"photo_index", i,
			)
		}
	}

	return nil
}
