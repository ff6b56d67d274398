// Package services реализует шлюз административных команд: строгий разбор
// текстовой команды, вызов движка жизненного цикла и однострочный ответ.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/storage/repository"
)

// Engine описывает операции движка, доступные из команд администратора.
type Engine interface {
	Renew(ctx context.Context, telegramID int64, days int, amount float64, method string) (*models.RenewalResult, error)
	ComputeStats(ctx context.Context) (*models.Stats, error)
}

// GatewayService разбирает и исполняет команды администратора.
type GatewayService struct {
	engine   Engine
	validate *validator.Validate
	log      *slog.Logger
}

// NewGatewayService создает новый экземпляр GatewayService.
func NewGatewayService(engine Engine, log *slog.Logger) *GatewayService {
	return &GatewayService{
		engine:   engine,
		validate: validator.New(),
		log:      log,
	}
}

// Execute выполняет одну команду и возвращает текст ответа. Пустой ответ
// означает, что команда не распознана и отвечать не нужно.
func (g *GatewayService) Execute(ctx context.Context, text string) string {
	cmd, err := ParseCommand(text)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			return ""
		}
		g.log.Info("rejected malformed command", slog.String("text", text), sl.Err(err))
		return "Ошибка: " + err.Error()
	}

	switch c := cmd.(type) {
	case models.RenewCommand:
		return g.executeRenew(ctx, c)
	case models.StatsCommand:
		return g.executeStats(ctx)
	default:
		return ""
	}
}

func (g *GatewayService) executeRenew(ctx context.Context, cmd models.RenewCommand) string {
	if err := g.validate.Struct(cmd); err != nil {
		g.log.Info("renew command failed validation", sl.Err(err))
		return "Ошибка: days должен быть больше 0, amount не меньше 0"
	}

	result, err := g.engine.Renew(ctx, cmd.TelegramID, cmd.Days, cmd.Amount, "manual")
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Sprintf("Пользователь %d не найден", cmd.TelegramID)
		}
		g.log.Error("failed to renew subscription", sl.Err(err))
		return "Не удалось продлить подписку, попробуйте позже"
	}

	return fmt.Sprintf("Подписка пользователя %d продлена до %s",
		cmd.TelegramID, result.EndDate.Format("02.01.2006"))
}

func (g *GatewayService) executeStats(ctx context.Context) string {
	stats, err := g.engine.ComputeStats(ctx)
	if err != nil {
		g.log.Error("failed to compute stats", sl.Err(err))
		return "Не удалось собрать статистику, попробуйте позже"
	}

	return fmt.Sprintf(
		"Статистика:\n"+
			"Активных: %d\n"+
			"Ожидают оплаты: %d\n"+
			"Истёкших: %d\n"+
			"Исключённых: %d\n"+
			"Выручка всего: %.2f\n"+
			"Выручка за месяц: %.2f\n"+
			"Средний платёж: %.2f",
		stats.ActiveCount,
		stats.PendingCount,
		stats.ExpiredCount,
		stats.RemovedCount,
		stats.TotalRevenue,
		stats.MonthToDateRevenue,
		stats.AveragePayment,
	)
}
