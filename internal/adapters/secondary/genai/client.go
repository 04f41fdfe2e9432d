package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
	"github.com/admin/tg-bots/photo-bot/internal/pkg/retry"
	"github.com/admin/tg-bots/photo-bot/internal/ports/service"
)

// truncateString обрезает строку до указанной длины
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Client клиент для работы с API генерации картинок
type Client struct {
	cfg        *Config
	HTTPClient *http.Client
	Log        *slog.Logger
}

// NewClient создаёт новый клиент генерации
func NewClient(cfg *Config, log *slog.Logger) *Client {
	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		Log: log,
	}
}

// buildURL собирает полный URL метода generateContent для модели
func (c *Client) buildURL(model string) string {
	baseURL := strings.TrimSuffix(c.cfg.BaseURL, "/")
	return baseURL + "/" + path.Join(c.cfg.ApiVersion, "models", model+":generateContent")
}

// setHeaders устанавливает стандартные заголовки для запросов к API
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.ApiKey != "" {
		req.Header.Set("x-goog-api-key", c.cfg.ApiKey)
	}
}

// GenerateImage генерирует картинку по промпту и исходному фото.
// Блокировка модерацией и пустой ответ провайдера различаются на уровне
// типов ошибок, чтобы очередь обработала их по-разному.
func (c *Client) GenerateImage(ctx context.Context, req service.GenerateImageRequest) (*service.GenerateImageResult, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	apiReq := generateContentRequest{
		Contents: []content{
			{
				Parts: []contentPart{
					{Text: req.Prompt},
					{InlineData: &inlineData{
						MimeType: req.MimeType,
						Data:     base64.StdEncoding.EncodeToString(req.Image),
					}},
				},
			},
		},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig: &imageConfig{
				AspectRatio: req.AspectRatio,
			},
		},
	}

	respBody, err := c.generateContent(ctx, model, apiReq)
	if err != nil {
		return nil, err
	}

	if respBody.PromptFeedback != nil && respBody.PromptFeedback.BlockReason != "" {
		c.Log.Warn("generation blocked by moderation",
			"block_reason", respBody.PromptFeedback.BlockReason,
			"model", model,
		)
		return nil, &domain.ModerationBlockError{Reason: respBody.PromptFeedback.BlockReason}
	}

	for _, cand := range respBody.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			imageData, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode generated image: %w", err)
			}
			c.Log.Debug("image generated",
				"model", model,
				"image_size", len(imageData),
			)
			return &service.GenerateImageResult{Image: imageData}, nil
		}
	}

	c.Log.Warn("generation API response contains no image", "model", model)
	return nil, domain.ErrNoImage
}

// generateContent выполняет запрос generateContent и разбирает ответ
func (c *Client) generateContent(ctx context.Context, model string, apiReq generateContentRequest) (*generateContentResponse, error) {
	jsonData, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := c.buildURL(model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}

	c.setHeaders(httpReq)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Log.Debug("generation API returned non-200 status",
			"status_code", resp.StatusCode,
			"model", model,
			"body_preview", truncateString(string(body), 200),
		)
		return nil, &retry.HTTPStatusError{Status: resp.StatusCode, Body: truncateString(string(body), 500)}
	}

	var respBody generateContentResponse
	if err := json.Unmarshal(body, &respBody); err != nil {
		c.Log.Debug("failed to unmarshal generation response",
			"error", err,
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(body), 200),
		)
		return nil, fmt.Errorf("generation API unmarshal failed [status=%d]: %w", resp.StatusCode, err)
	}

	return &respBody, nil
}
