package models

// Command — закрытое множество распознанных команд администратора.
type Command interface {
	isCommand()
}

// RenewCommand — продление подписки пользователя: renew <id> <days> [<amount>].
// Числовые аргументы парсятся строго, проверки диапазонов описаны тегами.
type RenewCommand struct {
	TelegramID int64   `validate:"required"`
	Days       int     `validate:"required,gt=0"`
	Amount     float64 `validate:"gte=0"`
}

// StatsCommand — запрос агрегированного отчёта: stats.
type StatsCommand struct{}

func (RenewCommand) isCommand() {}
func (StatsCommand) isCommand() {}
