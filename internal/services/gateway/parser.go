package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

// ErrUnknownCommand означает нераспознанную команду. По принятой политике
// низкого шума такие сообщения игнорируются без ответа, в отличие от
// распознанных команд с некорректными аргументами.
var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand разбирает текстовую команду администратора в типизированный
// вариант. Числовые аргументы парсятся строго: нечисловые days/amount — это
// ошибка с ответом отправителю, а не молчаливый ноль.
func ParseCommand(text string) (models.Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, ErrUnknownCommand
	}

	switch strings.ToLower(fields[0]) {
	case "renew":
		return parseRenew(fields[1:])
	case "stats":
		return models.StatsCommand{}, nil
	default:
		return nil, ErrUnknownCommand
	}
}

func parseRenew(args []string) (models.Command, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, errors.New("usage: renew <id> <days> [<amount>]")
	}

	telegramID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("id must be a number, got %q", args[0])
	}
	days, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("days must be a number, got %q", args[1])
	}

	var amount float64
	if len(args) == 3 {
		amount, err = strconv.ParseFloat(args[2], 64)
		if err != nil {
			return nil, fmt.Errorf("amount must be a number, got %q", args[2])
		}
	}

	return models.RenewCommand{
		TelegramID: telegramID,
		Days:       days,
		Amount:     amount,
	}, nil
}
