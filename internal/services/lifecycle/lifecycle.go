// Package services содержит движок жизненного цикла подписок: регистрацию
// участников, продление, поиск и применение просроченных переходов,
// агрегированную статистику. Движок владеет всеми переходами состояния;
// побочные эффекты (сообщения, исключение из группы) выполняются строго
// после фиксации транзакции и никогда её не откатывают.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/lib/date"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/metrics"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

// Repository определяет методы хранилища, нужные движку.
type Repository interface {
	// CreateUser идемпотентно сохраняет участника, created=true только при первой вставке.
	CreateUser(ctx context.Context, user models.User) (int64, bool, error)
	// GetUserByTelegramID возвращает участника по идентификатору платформы.
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	// RenewSubscription атомарно продлевает подписку и пишет платёж.
	RenewSubscription(ctx context.Context, entry models.RenewalEntry) (*models.RenewalResult, error)
	// FindUsersExpiringToday возвращает участников с подпиской, истекающей сегодня.
	FindUsersExpiringToday(ctx context.Context) ([]*models.ExpiringUser, error)
	// FindOverdueUsers возвращает участников с подпиской, просроченной дольше грейс-периода.
	FindOverdueUsers(ctx context.Context, gracePeriodDays int) ([]*models.OverdueUser, error)
	// RevokeUser закрывает участника и его активную подписку, revoked=false если уже закрыт.
	RevokeUser(ctx context.Context, userID int64) (bool, error)
	// CountStats собирает агрегированный отчёт.
	CountStats(ctx context.Context) (*models.Stats, error)
	// GetGroupChatID и SaveGroupChatID работают с сохранённым id целевой группы.
	GetGroupChatID(ctx context.Context) (int64, error)
	SaveGroupChatID(ctx context.Context, chatID int64) error
}

// Messenger описывает исходящие вызовы к платформе. Best-effort:
// ошибки только логируются.
type Messenger interface {
	RevokeMembership(ctx context.Context, chatID, userID int64) error
}

// NoticePublisher публикует административные уведомления в очередь.
type NoticePublisher interface {
	Publish(routingKey string, message any) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// LifecycleService реализует переходы состояния подписок.
type LifecycleService struct {
	repo            Repository
	messenger       Messenger
	notices         NoticePublisher
	cache           Cache
	log             *slog.Logger
	gracePeriodDays int
}

const statsCacheKey = "stats:report"

// NewLifecycleService создает новый экземпляр LifecycleService.
func NewLifecycleService(repo Repository, messenger Messenger, notices NoticePublisher,
	cache Cache, log *slog.Logger, gracePeriodDays int) *LifecycleService {
	return &LifecycleService{
		repo:            repo,
		messenger:       messenger,
		notices:         notices,
		cache:           cache,
		log:             log,
		gracePeriodDays: gracePeriodDays,
	}
}

// RegisterUser регистрирует впервые увиденного участника. Повторная
// регистрация того же telegram id — no-op: ни новой строки, ни повторного
// уведомления администратору.
func (s *LifecycleService) RegisterUser(ctx context.Context, member models.Member) (bool, error) {
	user := models.User{
		TelegramID: member.TelegramID,
		Username:   member.Username,
		FirstName:  member.FirstName,
	}

	id, created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	s.log.Info("registered new user",
		slog.Int64("id", id), slog.Int64("telegram_id", member.TelegramID))

	s.publishNotice(models.AdminNotice{
		Kind:       models.NoticeNewUser,
		TelegramID: member.TelegramID,
		Username:   member.Username,
		Text: fmt.Sprintf("Обнаружен новый участник: %s (id %d)",
			member.Username, member.TelegramID),
	})
	return true, nil
}

// Renew продлевает подписку пользователя на days дней начиная с сегодняшней
// даты. Все записи фиксируются одной транзакцией хранилища. Неизвестный
// telegram id возвращается как repository.ErrUserNotFound в цепочке ошибки.
func (s *LifecycleService) Renew(ctx context.Context, telegramID int64, days int,
	amount float64, method string) (*models.RenewalResult, error) {
	if days <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %d", days)
	}
	if amount < 0 {
		return nil, fmt.Errorf("amount must not be negative, got %.2f", amount)
	}

	today := date.Today()
	entry := models.RenewalEntry{
		TelegramID:   telegramID,
		StartDate:    today,
		EndDate:      today.AddDate(0, 0, days),
		OperationUID: uuid.New().String(),
		Amount:       amount,
		Currency:     "RUB",
		Method:       method,
	}

	result, err := s.repo.RenewSubscription(ctx, entry)
	if err != nil {
		return nil, err
	}

	metrics.Renewals.Inc()
	s.log.Info("subscription renewed",
		slog.Int64("telegram_id", telegramID),
		slog.String("operation_uid", entry.OperationUID),
		slog.Time("end_date", result.EndDate))

	if err := s.cache.Invalidate(statsCacheKey); err != nil {
		s.log.Warn("failed to drop stats cache", sl.Err(err))
	}
	return result, nil
}

// ReconcileDueToday находит подписки, истекающие сегодня, и отправляет
// администратору предупреждения. Состояние не меняется.
func (s *LifecycleService) ReconcileDueToday(ctx context.Context) ([]*models.ExpiringUser, error) {
	expiring, err := s.repo.FindUsersExpiringToday(ctx)
	if err != nil {
		return nil, err
	}
	if len(expiring) == 0 {
		s.log.Info("no subscriptions expiring today")
		return nil, nil
	}

	s.log.Info("found subscriptions expiring today", slog.Int("count", len(expiring)))
	for _, eu := range expiring {
		s.publishNotice(models.AdminNotice{
			Kind:     models.NoticeExpiringToday,
			Username: eu.Username,
			Text: fmt.Sprintf("Подписка участника %s заканчивается сегодня (%s)",
				eu.Username, eu.EndDate.Format("02.01.2006")),
		})
	}
	return expiring, nil
}

// ReconcileOverdue исключает участников, чья подписка просрочена дольше
// грейс-периода. Для каждого кандидата сначала фиксируется переход в
// хранилище; пользователь, чей статус уже не active, в кандидаты не попадает,
// поэтому повторный запуск не порождает дублей исключений и уведомлений.
func (s *LifecycleService) ReconcileOverdue(ctx context.Context) ([]*models.OverdueUser, error) {
	chatID, err := s.repo.GetGroupChatID(ctx)
	if err != nil {
		return nil, fmt.Errorf("group chat is not identified yet: %w", err)
	}

	candidates, err := s.repo.FindOverdueUsers(ctx, s.gracePeriodDays)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.log.Info("no overdue subscriptions")
		return nil, nil
	}

	s.log.Info("found overdue subscriptions", slog.Int("count", len(candidates)))
	var revoked []*models.OverdueUser
	for _, ou := range candidates {
		ok, err := s.repo.RevokeUser(ctx, ou.UserID)
		if err != nil {
			s.log.Error("failed to revoke user", slog.Int64("user_id", ou.UserID), sl.Err(err))
			continue
		}
		if !ok {
			// Статус уже не active: кто-то успел продлить или исключить.
			continue
		}

		metrics.Revocations.Inc()
		revoked = append(revoked, ou)

		if err := s.messenger.RevokeMembership(ctx, chatID, ou.TelegramID); err != nil {
			metrics.NotificationFailures.Inc()
			s.log.Error("failed to revoke platform membership",
				slog.Int64("telegram_id", ou.TelegramID), sl.Err(err))
		}

		s.publishNotice(models.AdminNotice{
			Kind:       models.NoticeRevoked,
			TelegramID: ou.TelegramID,
			Username:   ou.Username,
			Text: fmt.Sprintf("Участник %s исключён: подписка истекла %s",
				ou.Username, ou.EndDate.Format("02.01.2006")),
		})
	}
	return revoked, nil
}

// ComputeStats возвращает агрегированный отчёт, используя кеш или хранилище.
func (s *LifecycleService) ComputeStats(ctx context.Context) (*models.Stats, error) {
	var stats *models.Stats
	found, err := s.cache.Get(statsCacheKey, &stats)
	if err != nil {
		s.log.Warn("failed to read stats cache", sl.Err(err))
	}
	if found && stats != nil {
		return stats, nil
	}

	stats, err = s.repo.CountStats(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(statsCacheKey, stats, time.Minute); err != nil {
		s.log.Warn("failed to cache stats", sl.Err(err))
	}
	return stats, nil
}

// IdentifyChannel сохраняет обнаруженный id целевой группы. Запись
// транзакционная и переживает перезапуск.
func (s *LifecycleService) IdentifyChannel(ctx context.Context, chatID int64) error {
	if err := s.repo.SaveGroupChatID(ctx, chatID); err != nil {
		return err
	}
	s.log.Info("group chat identified", slog.Int64("chat_id", chatID))
	return nil
}

func (s *LifecycleService) publishNotice(notice models.AdminNotice) {
	if err := s.notices.Publish("admin", notice); err != nil {
		metrics.NotificationFailures.Inc()
		s.log.Error("failed to publish admin notice", sl.Err(err))
	}
}
