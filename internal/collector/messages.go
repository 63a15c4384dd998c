package collector

import (
	"fmt"
	"strconv"

	"github.com/ginjaninja78/sales-report-bot/internal/session"
	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

// skipWords are the accepted spellings of "skip this product", already
// case-folded.
var skipWords = map[string]struct{}{
	"пропустить": {},
	"skip":       {},
}

// IsSkip reports whether normalized input asks to skip the current product.
func IsSkip(normalized string) bool {
	_, ok := skipWords[normalized]
	return ok
}

// Operator-facing texts.
const (
	msgStarted      = "Начинаем отчёт."
	msgNoSession    = "Сессия не найдена. Напиши /start_report."
	msgInvalid      = "Введи число (например 5) или 'пропустить'."
	msgCancelled    = "Ввод отменён. Для начала заново — /start_report"
	msgComplete     = "Все позиции заполнены. Формирую отчёт…"
	msgSkipped      = "%s — пропущено."
	msgPosition     = "Позиция %d/%d:\n%s — %s %s"
	msgRecordedMorn = "%s — утром %s."
	msgRecordedEve  = "%s — остаток %s."
	msgRecordedExch = "%s — обмен %s."
)

// fieldPrompts is the request line for each phase.
var fieldPrompts = map[session.Phase]string{
	session.AwaitingMorning:  "Введите количество полученное утром (или 'пропустить').",
	session.AwaitingEvening:  "Теперь введи остаток (вечером).",
	session.AwaitingExchange: "Введи обмен (или 0, если не было).",
}

// recordedFormats acknowledges a stored value, keyed by the phase it was
// stored for.
var recordedFormats = map[session.Phase]string{
	session.AwaitingMorning:  msgRecordedMorn,
	session.AwaitingEvening:  msgRecordedEve,
	session.AwaitingExchange: msgRecordedExch,
}

// prompt asks for the field of phase for product p at 0-based position pos.
func prompt(p types.Product, pos, total int, phase session.Phase, currency string) string {
	return fmt.Sprintf(msgPosition, pos+1, total, p.Name, formatNumber(p.Price), currency) +
		"\n" + fieldPrompts[phase]
}

// formatNumber prints 12 as "12" and 2.5 as "2.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
