// Package sender собирает воркер доставки административных уведомлений.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/config"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/messenger"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/membership-gatekeeper/internal/services/sender"
)

// App представляет приложение воркера уведомлений.
type App struct {
	senderService *senderservice.SenderService
	conn          *amqp.Connection
	ch            *amqp.Channel
	logger        *slog.Logger
}

// New создает новый экземпляр воркера уведомлений.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	botClient := messenger.NewClient(cfg.Token, cfg.APIURL)
	senderService := senderservice.NewSenderService(botClient, cfg.AdminID, logger)

	return &App{
		senderService: senderService,
		conn:          conn,
		ch:            ch,
		logger:        logger,
	}, nil
}

// Run запускает потребление очереди уведомлений до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "notifications.admin", a.senderService.SendAdminNotice)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	<-ctx.Done()

	a.logger.Info("shutting down sender service")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	return nil
}
