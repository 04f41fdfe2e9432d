package texts

import (
	"fmt"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
)

// Callback-команды кнопок. Разбирает их гейтвей и зовёт соответствующие
// операции юзкейсов.
const (
	CallbackRetry     = "retry_generation"
	CallbackNewPhoto  = "new_photo"
	CallbackNewStyle  = "another_style"
	CallbackBuyPrefix = "buy_pack:" // buy_pack:<credits>:<price>
)

func inlineKeyboard(rows ...[]map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"inline_keyboard": rows,
	}
}

func button(text, callbackData string) map[string]interface{} {
	return map[string]interface{}{
		"text":          text,
		"callback_data": callbackData,
	}
}

// RetryKeyboard кнопка повторной попытки генерации
func RetryKeyboard(lang domain.Lang) map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{
			button(pick(lang, "🔁 Попробовать ещё раз", "🔁 Try again"), CallbackRetry),
		},
	)
}

// ResultKeyboard кнопки под доставленным результатом
func ResultKeyboard(lang domain.Lang) map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{
			button(pick(lang, "✨ Другой стиль", "✨ Another style"), CallbackNewStyle),
		},
		[]map[string]interface{}{
			button(pick(lang, "📸 Новое фото", "📸 New photo"), CallbackNewPhoto),
		},
	)
}

// PacksKeyboard кнопки выбора пакета пополнения
func PacksKeyboard() map[string]interface{} {
	rows := make([][]map[string]interface{}, 0, len(domain.CreditPacks))
	for _, pack := range domain.CreditPacks {
		callback := fmt.Sprintf("%s%d:%d", CallbackBuyPrefix, pack.Credits, pack.Price)
		rows = append(rows, []map[string]interface{}{
			button(PackLabel(pack.Credits, pack.Price), callback),
		})
	}
	return inlineKeyboard(rows...)
}
