// Package texts пользовательские тексты бота на русском и английском.
// Тексты выбираются по языку пользователя, пользовательский ввод
// экранируется для HTML-разметки сообщений.
package texts

import (
	"fmt"
	"html"

	"github.com/admin/tg-bots/photo-bot/internal/domain"
)

func pick(lang domain.Lang, ru, en string) string {
	if lang == domain.LangRU {
		return ru
	}
	return en
}

// Welcome приветствие новой сессии, просим фото
func Welcome(lang domain.Lang) string {
	return pick(lang,
		"Привет! Пришли фото, которое хочешь преобразить 📸",
		"Hi! Send a photo you want to transform 📸")
}

// PhotoAccepted фото получено, просим описание стиля
func PhotoAccepted(lang domain.Lang) string {
	return pick(lang,
		"Фото получил! Теперь опиши стиль, в котором сделать картинку ✨",
		"Got your photo! Now describe the style for your image ✨")
}

// SendPhotoFirst описание пришло раньше фото
func SendPhotoFirst(lang domain.Lang) string {
	return pick(lang,
		"Сначала пришли фото, потом описание стиля 🙌",
		"Please send a photo first, then the style description 🙌")
}

// AlreadyProcessing генерация уже идёт, ввод игнорируется
func AlreadyProcessing(lang domain.Lang) string {
	return pick(lang,
		"Генерация уже идёт, подожди результат ⏳",
		"Generation is already in progress, please wait ⏳")
}

// StyleNotRecognized агент не понял описание, просим переформулировать
func StyleNotRecognized(lang domain.Lang) string {
	return pick(lang,
		"Не получилось распознать стиль. Попробуй описать его другими словами 🤔",
		"Couldn't recognize the style. Try describing it differently 🤔")
}

// Generating стартовый текст сообщения-индикатора
func Generating(lang domain.Lang) string {
	return pick(lang,
		"Генерирую картинку... 🎨",
		"Generating your image... 🎨")
}

// ProgressPostProcessing индикатор на этапе постобработки
func ProgressPostProcessing(lang domain.Lang) string {
	return pick(lang,
		"Почти готово, обрабатываю результат... 🖼",
		"Almost there, post-processing the result... 🖼")
}

// NotEnoughCredits не хватает кредитов на генерацию
func NotEnoughCredits(lang domain.Lang, needed, balance int) string {
	return fmt.Sprintf(pick(lang,
		"Для генерации нужно %d кр., на балансе %d. Выбери пакет пополнения 👇",
		"Generation costs %d credits, your balance is %d. Pick a top-up pack 👇"),
		needed, balance)
}

// CreditsAdded кредиты зачислены
func CreditsAdded(lang domain.Lang, amount, balance int) string {
	return fmt.Sprintf(pick(lang,
		"Зачислено %d кр.! Баланс: %d ⭐",
		"%d credits added! Balance: %d ⭐"),
		amount, balance)
}

// ShortfallAfterTopUp после пополнения всё ещё не хватает
func ShortfallAfterTopUp(lang domain.Lang, missing int) string {
	return fmt.Sprintf(pick(lang,
		"Для запуска генерации не хватает ещё %d кр. Пополни баланс, и я продолжу 🙏",
		"You still need %d more credits to start the generation 🙏"),
		missing)
}

// GenerationFailed генерация упала, кредиты вернули
func GenerationFailed(lang domain.Lang) string {
	return pick(lang,
		"Что-то пошло не так, кредиты вернул на баланс. Попробуем ещё раз? 🔁",
		"Something went wrong, your credits were refunded. Try again? 🔁")
}

// ModerationBlocked генерация отклонена модерацией
func ModerationBlocked(lang domain.Lang) string {
	return pick(lang,
		"Модерация не пропустила этот запрос, кредиты вернул. Попробуй другое описание 🙈",
		"This request was blocked by moderation, credits refunded. Try a different description 🙈")
}

// ResultReady подпись к доставленному результату
func ResultReady(lang domain.Lang) string {
	return pick(lang,
		"Готово! Что дальше? 👇",
		"Done! What's next? 👇")
}

// InvoiceTitle заголовок счёта на пакет кредитов
func InvoiceTitle(lang domain.Lang, credits int) string {
	return fmt.Sprintf(pick(lang,
		"%d кредитов",
		"%d credits"),
		credits)
}

// InvoiceDescription описание счёта
func InvoiceDescription(lang domain.Lang, credits int) string {
	return fmt.Sprintf(pick(lang,
		"Пакет из %d кредитов для генерации картинок",
		"A pack of %d credits for image generation"),
		credits)
}

// PackLabel подпись кнопки пакета
func PackLabel(credits, price int) string {
	return fmt.Sprintf("%d кр. — %d ⭐", credits, price)
}

// OperatorGenerationDone бизнес-уведомление об успешной генерации
func OperatorGenerationDone(displayName, model string, userInput *string) string {
	input := ""
	if userInput != nil {
		input = *userInput
	}
	return fmt.Sprintf("✅ Генерация %s\nМодель: %s\nЗапрос: %s",
		html.EscapeString(displayName),
		html.EscapeString(model),
		html.EscapeString(input))
}

// OperatorModerationBlock алерт о блокировке модерацией
func OperatorModerationBlock(displayName, reason string, userInput *string) string {
	input := ""
	if userInput != nil {
		input = *userInput
	}
	return fmt.Sprintf("🙈 Модерация заблокировала генерацию %s\nПричина: %s\nЗапрос: %s",
		html.EscapeString(displayName),
		html.EscapeString(reason),
		html.EscapeString(input))
}

// OperatorJobError алерт об ошибке джобы
func OperatorJobError(jobID, errText string) string {
	return fmt.Sprintf("❌ Ошибка генерации job=%s\n%s",
		jobID,
		html.EscapeString(errText))
}
