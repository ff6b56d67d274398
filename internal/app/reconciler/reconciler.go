// Package reconciler собирает приложение ежедневной ревизии подписок.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/cache"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/config"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/messenger"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/rabbitmq"
	lifecycleservice "github.com/magabrotheeeer/membership-gatekeeper/internal/services/lifecycle"
	reconcilerservice "github.com/magabrotheeeer/membership-gatekeeper/internal/services/reconciler"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/storage/repository"
)

// App представляет приложение ревизии.
type App struct {
	reconcilerService *reconcilerservice.ReconcilerService
	conn              *amqp.Connection
	ch                *amqp.Channel
	logger            *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения ревизии.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	botClient := messenger.NewClient(cfg.Token, cfg.APIURL)
	publisher := rabbitmq.NewPublisher(ch)

	lifecycleService := lifecycleservice.NewLifecycleService(
		db, botClient, publisher, cacheRedis, logger, cfg.GracePeriodDays)
	reconcilerService := reconcilerservice.NewReconcilerService(
		lifecycleService, cfg.RunAt, logger)

	return &App{
		reconcilerService: reconcilerService,
		conn:              conn,
		ch:                ch,
		logger:            logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает ревизию.
func (a *App) Run(ctx context.Context) error {
	go a.reconcilerService.Run(ctx)

	<-ctx.Done()

	a.logger.Info("shutting down reconciler service")
	closeResources(a.ch, a.conn, a.logger)
	return nil
}
