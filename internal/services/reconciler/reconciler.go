// Package services содержит ежедневную ревизию подписок: один запуск в
// фиксированное время суток, сначала предупреждения об истекающих сегодня,
// затем исключение просроченных. Запуски независимы: кандидаты каждый раз
// выводятся из текущего состояния хранилища, поэтому ревизию безопасно
// пропустить, задержать или повторить.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

// Lifecycle описывает точки входа движка, которые дергает ревизия.
type Lifecycle interface {
	ReconcileDueToday(ctx context.Context) ([]*models.ExpiringUser, error)
	ReconcileOverdue(ctx context.Context) ([]*models.OverdueUser, error)
}

// ReconcilerService запускает ревизию раз в сутки в заданное время.
type ReconcilerService struct {
	engine Lifecycle
	runAt  string // "15:04"
	log    *slog.Logger
}

// NewReconcilerService создает новый экземпляр ReconcilerService.
func NewReconcilerService(engine Lifecycle, runAt string, log *slog.Logger) *ReconcilerService {
	return &ReconcilerService{
		engine: engine,
		runAt:  runAt,
		log:    log,
	}
}

// Run блокируется до отмены контекста, выполняя ревизию раз в сутки
// в настроенное время.
func (s *ReconcilerService) Run(ctx context.Context) {
	for {
		next := NextRun(time.Now(), s.runAt)
		s.log.Info("next reconciliation scheduled", slog.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// RunOnce выполняет один проход ревизии. Ошибки логируются и не прерывают
// проход: следующий запуск сам подберёт оставшихся кандидатов.
func (s *ReconcilerService) RunOnce(ctx context.Context) {
	s.log.Info("starting daily reconciliation")

	expiring, err := s.engine.ReconcileDueToday(ctx)
	if err != nil {
		s.log.Error("failed to reconcile subscriptions due today", sl.Err(err))
	} else {
		s.log.Info("reconciled subscriptions due today", slog.Int("count", len(expiring)))
	}

	revoked, err := s.engine.ReconcileOverdue(ctx)
	if err != nil {
		s.log.Error("failed to reconcile overdue subscriptions", sl.Err(err))
		return
	}
	s.log.Info("reconciled overdue subscriptions", slog.Int("revoked", len(revoked)))
}

// NextRun возвращает ближайший момент запуска: сегодня в runAt, если это
// время ещё не прошло, иначе завтра.
func NextRun(now time.Time, runAt string) time.Time {
	at, err := time.Parse("15:04", runAt)
	if err != nil {
		// Конфиг валидируется при загрузке, сюда попадает только дефолт.
		at = time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)
	}

	next := time.Date(now.Year(), now.Month(), now.Day(),
		at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
