// Package metrics содержит счётчики Prometheus для наблюдения за работой бота.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookUpdates — количество принятых обновлений вебхука по типу события.
	WebhookUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekeeper_webhook_updates_total",
		Help: "Number of webhook updates received, by classified event type.",
	}, []string{"event"})

	// Renewals — количество успешных продлений подписок.
	Renewals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_renewals_total",
		Help: "Number of successful subscription renewals.",
	})

	// Revocations — количество исключений из группы по просрочке.
	Revocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_revocations_total",
		Help: "Number of memberships revoked by reconciliation.",
	})

	// NotificationFailures — количество неудачных best-effort уведомлений.
	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gatekeeper_notification_failures_total",
		Help: "Number of failed notification deliveries.",
	})
)
