// Package gatekeeper собирает основное приложение бота: вебхук-сервер,
// движок жизненного цикла и шлюз команд администратора.
package gatekeeper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/cache"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/config"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/messenger"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/migrations"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/rabbitmq"
	gatewayservice "github.com/magabrotheeeer/membership-gatekeeper/internal/services/gateway"
	lifecycleservice "github.com/magabrotheeeer/membership-gatekeeper/internal/services/lifecycle"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}

	botClient := messenger.NewClient(cfg.Token, cfg.APIURL)
	publisher := rabbitmq.NewPublisher(ch)

	lifecycleService := lifecycleservice.NewLifecycleService(
		db, botClient, publisher, cacheRedis, logger, cfg.GracePeriodDays)
	gatewayService := gatewayservice.NewGatewayService(lifecycleService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, lifecycleService, gatewayService, botClient)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		_ = a.db.DB.Close()
		return err
	}
}
