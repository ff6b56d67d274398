package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

type MessengerMock struct{ mock.Mock }

func (m *MessengerMock) SendMessage(ctx context.Context, chatID int64, text string) error {
	return m.Called(ctx, chatID, text).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSenderService_SendAdminNotice(t *testing.T) {
	notice := models.AdminNotice{
		Kind:       models.NoticeNewUser,
		TelegramID: 42,
		Username:   "alice",
		Text:       "Обнаружен новый участник: alice (id 42)",
	}
	body, err := json.Marshal(notice)
	require.NoError(t, err)

	t.Run("delivers notice to admin chat", func(t *testing.T) {
		msg := new(MessengerMock)
		svc := NewSenderService(msg, 111, newNoopLogger())

		msg.On("SendMessage", mock.Anything, int64(111), notice.Text).Return(nil).Once()

		assert.NoError(t, svc.SendAdminNotice(body))
		msg.AssertExpectations(t)
	})

	t.Run("delivery failure is returned for requeue", func(t *testing.T) {
		msg := new(MessengerMock)
		svc := NewSenderService(msg, 111, newNoopLogger())

		msg.On("SendMessage", mock.Anything, int64(111), notice.Text).
			Return(errors.New("network down")).Once()

		assert.Error(t, svc.SendAdminNotice(body))
	})

	t.Run("garbage body fails without send", func(t *testing.T) {
		msg := new(MessengerMock)
		svc := NewSenderService(msg, 111, newNoopLogger())

		assert.Error(t, svc.SendAdminNotice([]byte("not a json")))
		msg.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	})
}
