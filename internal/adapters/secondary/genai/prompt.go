package genai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	ports "github.com/admin/tg-bots/photo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/photo-bot/internal/ports/service"
)

const promptAgentInstructionKey = "prompt_agent_instruction"

// PromptAgent превращает пользовательское описание стиля в финальный промпт
// через текстовую модель. Инструкция агента с примерами живёт в конфигурации
// приложения и правится без редеплоя.
type PromptAgent struct {
	client    *Client
	appConfig ports.IAppConfigRepo
	Log       *slog.Logger
}

// NewPromptAgent создаёт нового агента финализации промптов
func NewPromptAgent(client *Client, appConfig ports.IAppConfigRepo, log *slog.Logger) *PromptAgent {
	return &PromptAgent{
		client:    client,
		appConfig: appConfig,
		Log:       log,
	}
}

// promptAgentReply структурированный ответ агента
type promptAgentReply struct {
	OK     bool   `json:"ok"`
	Prompt string `json:"prompt"`
	Retry  bool   `json:"retry"`
}

// GeneratePrompt финализирует промпт. Ошибка провайдера не валит пайплайн:
// генерация пойдёт с исходным текстом пользователя.
func (a *PromptAgent) GeneratePrompt(ctx context.Context, userInput string) (service.PromptResult, error) {
	fallback := service.PromptResult{OK: true, Prompt: userInput}

	instruction, err := a.appConfig.GetValue(ctx, promptAgentInstructionKey)
	if err != nil {
		a.Log.Warn("prompt agent instruction unavailable, using raw user input",
			"error", err,
		)
		return fallback, nil
	}

	apiReq := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []contentPart{
				{Text: instruction + "\n\n" + userInput},
			}},
		},
	}

	respBody, err := a.client.generateContent(ctx, a.client.cfg.PromptModel, apiReq)
	if err != nil {
		a.Log.Warn("prompt agent call failed, using raw user input",
			"error", err,
		)
		return fallback, nil
	}

	text := extractText(respBody)
	if text == "" {
		a.Log.Warn("prompt agent returned empty response, using raw user input")
		return fallback, nil
	}

	var reply promptAgentReply
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &reply); err != nil {
		// Агент ответил не по формату: берём текст ответа как промпт
		a.Log.Debug("prompt agent reply is not structured, using raw reply",
			"reply_preview", truncateString(text, 200),
		)
		return service.PromptResult{OK: true, Prompt: strings.TrimSpace(text)}, nil
	}

	if reply.Retry {
		return service.PromptResult{Retry: true}, nil
	}
	if !reply.OK || reply.Prompt == "" {
		return fallback, nil
	}
	return service.PromptResult{OK: true, Prompt: reply.Prompt}, nil
}

// extractText собирает текстовые части первого кандидата
func extractText(resp *generateContentResponse) string {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

// stripCodeFence убирает обёртку ```json ... ``` из ответа модели
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
