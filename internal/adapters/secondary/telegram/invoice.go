package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	tgports "github.com/admin/tg-bots/photo-bot/internal/ports/telegram"
)

// LabeledPrice позиция в счёте. Для Telegram Stars amount — количество звёзд.
type LabeledPrice struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// sendInvoiceRequest тело запроса sendInvoice
// Документация: https://core.telegram.org/bots/api#sendinvoice
type sendInvoiceRequest struct {
	ChatID      int64          `json:"chat_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Payload     string         `json:"payload"`
	Currency    string         `json:"currency"`
	Prices      []LabeledPrice `json:"prices"`
}

// SendInvoiceResult результат отправки счёта
type SendInvoiceResult struct {
	MessageID int64    `json:"message_id"`
	Chat      ChatInfo `json:"chat"`
}

// SendInvoiceResponse ответ от Telegram API на sendInvoice
type SendInvoiceResponse struct {
	APIResponse
	Result SendInvoiceResult `json:"result"`
}

// SendInvoice выставляет счёт пользователю (Telegram Stars).
// В payload уходит id транзакции: по нему платёжные колбэки находят
// свою строку в леджере.
func (c *Client) SendInvoice(ctx context.Context, req tgports.SendInvoiceRequest) error {
	apiReq := sendInvoiceRequest{
		ChatID:      req.ChatID,
		Title:       req.Title,
		Description: req.Description,
		Payload:     req.Payload,
		Currency:    req.Currency,
		Prices: []LabeledPrice{
			{Label: req.PriceLabel, Amount: int64(req.Amount)},
		},
	}

	jsonData, err := json.Marshal(apiReq)
	if err != nil {
		c.log.Error("failed to marshal sendInvoice request",
			"error", err,
			"chat_id", req.ChatID,
		)
		return fmt.Errorf("telegram marshal failed [chat_id=%d]: %w", req.ChatID, err)
	}

	url := c.baseURL + "/sendInvoice"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		c.log.Error("failed to create sendInvoice request",
			"error", err,
			"chat_id", req.ChatID,
		)
		return fmt.Errorf("telegram create request failed [chat_id=%d]: %w", req.ChatID, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug("telegram sendInvoice request failed",
			"error", err,
			"chat_id", req.ChatID,
		)
		return fmt.Errorf("telegram request failed [chat_id=%d]: %w", req.ChatID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("failed to read sendInvoice response body",
			"error", err,
			"chat_id", req.ChatID,
			"status_code", resp.StatusCode,
		)
		return fmt.Errorf("telegram read body failed [chat_id=%d, status=%d]: %w",
			req.ChatID, resp.StatusCode, err)
	}

	var apiResp SendInvoiceResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		c.log.Error("failed to unmarshal sendInvoice response",
			"error", err,
			"chat_id", req.ChatID,
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(body), 200),
		)
		return fmt.Errorf("telegram unmarshal failed [chat_id=%d, status=%d]: %w",
			req.ChatID, resp.StatusCode, err)
	}

	if !apiResp.OK {
		c.log.Debug("telegram sendInvoice API error",
			"error_code", apiResp.ErrorCode,
			"description", apiResp.Description,
			"chat_id", req.ChatID,
			"status_code", resp.StatusCode,
		)
		return fmt.Errorf("telegram API error [code=%d, chat_id=%d]: %s",
			apiResp.ErrorCode, req.ChatID, apiResp.Description)
	}

	c.log.Debug("invoice sent successfully",
		"chat_id", req.ChatID,
		"message_id", apiResp.Result.MessageID,
		"payload", req.Payload,
	)

	return nil
}

// AnswerPreCheckoutQueryRequest запрос на ответ pre_checkout_query
type AnswerPreCheckoutQueryRequest struct {
	PreCheckoutQueryID string  `json:"pre_checkout_query_id"`
	OK                 bool    `json:"ok"`
	ErrorMessage       *string `json:"error_message,omitempty"`
}

// AnswerPreCheckoutQuery подтверждает или отклоняет платёж.
// Документация: https://core.telegram.org/bots/api#answerprecheckoutquery
func (c *Client) AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage *string) error {
	reqBody := AnswerPreCheckoutQueryRequest{
		PreCheckoutQueryID: queryID,
		OK:                 ok,
		ErrorMessage:       errorMessage,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		c.log.Error("failed to marshal answerPreCheckoutQuery request",
			"error", err,
			"query_id", queryID,
		)
		return fmt.Errorf("telegram marshal failed [query_id=%s]: %w", queryID, err)
	}

	url := c.baseURL + "/answerPreCheckoutQuery"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		c.log.Error("failed to create answerPreCheckoutQuery request",
			"error", err,
			"query_id", queryID,
		)
		return fmt.Errorf("telegram create request failed [query_id=%s]: %w", queryID, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug("telegram answerPreCheckoutQuery request failed",
			"error", err,
			"query_id", queryID,
		)
		return fmt.Errorf("telegram request failed [query_id=%s]: %w", queryID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("failed to read answerPreCheckoutQuery response body",
			"error", err,
			"query_id", queryID,
			"status_code", resp.StatusCode,
		)
		return fmt.Errorf("telegram read body failed [query_id=%s, status=%d]: %w",
			queryID, resp.StatusCode, err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		c.log.Error("failed to unmarshal answerPreCheckoutQuery response",
			"error", err,
			"query_id", queryID,
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(body), 200),
		)
		return fmt.Errorf("telegram unmarshal failed [query_id=%s, status=%d]: %w",
			queryID, resp.StatusCode, err)
	}

	if !apiResp.OK {
		c.log.Debug("telegram answerPreCheckoutQuery API error",
			"error_code", apiResp.ErrorCode,
			"description", apiResp.Description,
			"query_id", queryID,
			"status_code", resp.StatusCode,
		)
		return fmt.Errorf("telegram API error [code=%d, query_id=%s]: %s",
			apiResp.ErrorCode, queryID, apiResp.Description)
	}

	c.log.Debug("pre_checkout_query answered successfully",
		"query_id", queryID,
		"ok", ok,
	)
	return nil
}
