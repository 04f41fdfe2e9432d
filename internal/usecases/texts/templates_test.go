package texts

import (
	"strings"
	"testing"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
)

func TestPickFallsBackToEnglish(t *testing.T) {
	if got := Welcome(domain.LangRU); !strings.Contains(got, "Привет") {
		t.Errorf("expected russian welcome, got %q", got)
	}
	if got := Welcome(domain.Lang("de")); !strings.Contains(got, "Hi") {
		t.Errorf("expected english fallback, got %q", got)
	}
}

func TestOperatorTextsEscapeUserInput(t *testing.T) {
	input := "<script>alert(1)</script>"
	got := OperatorGenerationDone("@user", "model", &input)
	if strings.Contains(got, "<script>") {
		t.Error("expected user input escaped in operator text")
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("expected escaped markup, got %q", got)
	}
}

func TestPacksKeyboardCoversAllPacks(t *testing.T) {
	keyboard := PacksKeyboard()
	rows, ok := keyboard["inline_keyboard"].([][]map[string]interface{})
	if !ok {
		t.Fatalf("unexpected keyboard shape: %T", keyboard["inline_keyboard"])
	}
	if len(rows) != len(domain.CreditPacks) {
		t.Fatalf("expected %d rows, got %d", len(domain.CreditPacks), len(rows))
	}
	for i, pack := range domain.CreditPacks {
		callback := rows[i][0]["callback_data"].(string)
		if !strings.HasPrefix(callback, CallbackBuyPrefix) {
			t.Errorf("expected buy callback, got %q", callback)
		}
		if !strings.Contains(callback, ":") {
			t.Errorf("expected credits and price in callback, got %q", callback)
		}
		label := rows[i][0]["text"].(string)
		if label != PackLabel(pack.Credits, pack.Price) {
			t.Errorf("expected pack label, got %q", label)
		}
	}
}
