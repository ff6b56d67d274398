// Package services содержит воркер доставки административных уведомлений:
// читает сообщения из очереди и отправляет их администратору через
// клиент платформы.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

// Messenger описывает транспорт доставки сообщений.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// SenderService доставляет уведомления администратору.
type SenderService struct {
	messenger Messenger
	adminID   int64
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(messenger Messenger, adminID int64, log *slog.Logger) *SenderService {
	return &SenderService{
		messenger: messenger,
		adminID:   adminID,
		log:       log,
	}
}

// SendAdminNotice обрабатывает одно сообщение очереди. Ошибка доставки
// возвращается вызывающему, чтобы сообщение вернулось в очередь.
func (s *SenderService) SendAdminNotice(body []byte) error {
	var notice models.AdminNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		s.log.Error("failed to unmarshal notice", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	if err := s.messenger.SendMessage(context.Background(), s.adminID, notice.Text); err != nil {
		s.log.Error("failed to deliver admin notice",
			slog.String("kind", notice.Kind), sl.Err(err))
		return err
	}

	s.log.Info("admin notice delivered", slog.String("kind", notice.Kind))
	return nil
}
