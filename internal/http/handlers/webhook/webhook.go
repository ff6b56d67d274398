// Package webhook реализует HTTP-обработчик входящих обновлений платформы.
//
// Обработчик классифицирует обновление в типизированные события и передаёт
// их движку жизненного цикла и шлюзу команд. Каждое обновление
// подтверждается статусом 200 независимо от результата обработки, чтобы
// платформа не повторяла доставку; повторная доставка и так безопасна,
// поскольку регистрация идемпотентна.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/metrics"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

// Engine описывает точки входа движка, доступные из вебхука.
type Engine interface {
	RegisterUser(ctx context.Context, member models.Member) (bool, error)
	IdentifyChannel(ctx context.Context, chatID int64) error
}

// Gateway описывает исполнение команд администратора.
type Gateway interface {
	Execute(ctx context.Context, text string) string
}

// Messenger описывает отправку ответов на команды.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Handler обрабатывает входящие обновления вебхука.
type Handler struct {
	log       *slog.Logger
	engine    Engine
	gateway   Gateway
	messenger Messenger
	adminID   int64
	secret    string
}

// New создает новый Handler.
func New(log *slog.Logger, engine Engine, gateway Gateway, messenger Messenger,
	adminID int64, secret string) *Handler {
	return &Handler{
		log:       log,
		engine:    engine,
		gateway:   gateway,
		messenger: messenger,
		adminID:   adminID,
		secret:    secret,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if subtle.ConstantTimeCompare([]byte(chi.URLParam(r, "secret")), []byte(h.secret)) != 1 {
		log.Error("webhook secret mismatch")
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("forbidden"))
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		// Подтверждаем и мусорные тела, иначе платформа будет повторять доставку.
		log.Error("failed to decode update", sl.Err(err))
		render.JSON(w, r, response.OK())
		return
	}

	for _, event := range Classify(update, h.adminID) {
		h.dispatch(r.Context(), log, event)
	}

	render.JSON(w, r, response.OK())
}

func (h *Handler) dispatch(ctx context.Context, log *slog.Logger, event models.Event) {
	switch ev := event.(type) {
	case models.NewMembersEvent:
		metrics.WebhookUpdates.WithLabelValues("new_members").Inc()
		for _, m := range ev.Members {
			if m.IsBot {
				continue
			}
			if _, err := h.engine.RegisterUser(ctx, m); err != nil {
				log.Error("failed to register member",
					slog.Int64("telegram_id", m.TelegramID), sl.Err(err))
			}
		}

	case models.MembershipChangedEvent:
		metrics.WebhookUpdates.WithLabelValues("membership_changed").Inc()
		if ev.NewStatus != "member" || ev.Member.IsBot {
			return
		}
		if _, err := h.engine.RegisterUser(ctx, ev.Member); err != nil {
			log.Error("failed to register member",
				slog.Int64("telegram_id", ev.Member.TelegramID), sl.Err(err))
		}

	case models.AdminMessageEvent:
		metrics.WebhookUpdates.WithLabelValues("admin_message").Inc()
		reply := h.gateway.Execute(ctx, ev.Text)
		if reply == "" {
			return
		}
		if err := h.messenger.SendMessage(ctx, ev.ChatID, reply); err != nil {
			metrics.NotificationFailures.Inc()
			log.Error("failed to send command reply", sl.Err(err))
		}

	case models.ChannelIdentifiedEvent:
		metrics.WebhookUpdates.WithLabelValues("channel_identified").Inc()
		if err := h.engine.IdentifyChannel(ctx, ev.ChatID); err != nil {
			log.Error("failed to persist group chat id",
				slog.Int64("chat_id", ev.ChatID), sl.Err(err))
		}
	}
}
