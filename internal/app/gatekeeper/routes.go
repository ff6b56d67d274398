// Package gatekeeper предоставляет маршруты для основного приложения.
package gatekeeper

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/config"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/http/handlers/health"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/http/handlers/webhook"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/messenger"
	gatewayservice "github.com/magabrotheeeer/membership-gatekeeper/internal/services/gateway"
	lifecycleservice "github.com/magabrotheeeer/membership-gatekeeper/internal/services/lifecycle"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	lifecycleService *lifecycleservice.LifecycleService,
	gatewayService *gatewayservice.GatewayService,
	botClient *messenger.Client) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("membership-gatekeeper is alive"))
	})
	r.Get("/healthz", health.New())

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/webhook/{secret}", webhook.New(logger, lifecycleService, gatewayService,
			botClient, cfg.AdminID, cfg.WebhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
}
