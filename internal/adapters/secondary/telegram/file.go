package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/admin/tg-bots/photo-bot/internal/pkg/retry"
)

// FileResult описание файла в хранилище Telegram
type FileResult struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileSize     *int64 `json:"file_size,omitempty"`
	FilePath     string `json:"file_path"`
}

// GetFileResponse ответ от Telegram API на getFile
type GetFileResponse struct {
	APIResponse
	Result FileResult `json:"result"`
}

// GetFilePath резолвит file_id в путь файлового хранилища Telegram
func (c *Client) GetFilePath(ctx context.Context, fileID string) (string, error) {
	reqURL := fmt.Sprintf("%s/getFile?file_id=%s", c.baseURL, url.QueryEscape(fileID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug("telegram getFile request failed",
			"error", err,
			"file_id", fileID)
		return "", fmt.Errorf("telegram request failed [file_id=%s]: %w", fileID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("telegram read response failed [file_id=%s, status=%d]: %w",
			fileID, resp.StatusCode, err)
	}

	var apiResp GetFileResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		c.log.Error("failed to unmarshal getFile response",
			"error", err,
			"file_id", fileID,
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(body), 200),
		)
		return "", fmt.Errorf("telegram unmarshal failed [file_id=%s, status=%d]: %w",
			fileID, resp.StatusCode, err)
	}

	if !apiResp.OK {
		c.log.Debug("telegram getFile API error",
			"error_code", apiResp.ErrorCode,
			"description", apiResp.Description,
			"file_id", fileID,
		)
		return "", fmt.Errorf("telegram API error [code=%d, file_id=%s]: %s",
			apiResp.ErrorCode, fileID, apiResp.Description)
	}

	if apiResp.Result.FilePath == "" {
		return "", fmt.Errorf("empty file_path in getFile response [file_id=%s]", fileID)
	}

	return apiResp.Result.FilePath, nil
}

// DownloadFile скачивает файл по пути, полученному из GetFilePath
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	reqURL := c.fileBaseURL + "/" + filePath

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Debug("telegram file download failed",
			"error", err,
			"file_path", filePath)
		return nil, fmt.Errorf("telegram file download failed [path=%s]: %w", filePath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram read file failed [path=%s, status=%d]: %w",
			filePath, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Debug("telegram file download non-OK status",
			"status_code", resp.StatusCode,
			"file_path", filePath,
			"body_preview", truncateString(string(body), 200))
		return nil, &retry.HTTPStatusError{Status: resp.StatusCode, Body: string(body)}
	}

	c.log.Debug("file downloaded",
		"file_path", filePath,
		"size", len(body))
	return body, nil
}
