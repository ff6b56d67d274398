package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
	"github.com/magabrotheeeer/membership-gatekeeper/internal/storage/repository"
)

type EngineMock struct{ mock.Mock }

func (m *EngineMock) Renew(ctx context.Context, telegramID int64, days int, amount float64, method string) (*models.RenewalResult, error) {
	args := m.Called(ctx, telegramID, days, amount, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RenewalResult), args.Error(1)
}

func (m *EngineMock) ComputeStats(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestGatewayService_Execute(t *testing.T) {
	endDate := time.Date(2025, 4, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		text      string
		setupMock func(e *EngineMock)
		wantReply string
	}{
		{
			name: "renew success replies with end date",
			text: "renew 42 30 20",
			setupMock: func(e *EngineMock) {
				e.On("Renew", mock.Anything, int64(42), 30, 20.0, "manual").
					Return(&models.RenewalResult{TelegramID: 42, EndDate: endDate}, nil).Once()
			},
			wantReply: "Подписка пользователя 42 продлена до 13.04.2025",
		},
		{
			name: "renew unknown user replies not found",
			text: "renew 999 30",
			setupMock: func(e *EngineMock) {
				e.On("Renew", mock.Anything, int64(999), 30, 0.0, "manual").
					Return(nil, repository.ErrUserNotFound).Once()
			},
			wantReply: "Пользователь 999 не найден",
		},
		{
			name: "renew engine failure replies generically",
			text: "renew 42 30",
			setupMock: func(e *EngineMock) {
				e.On("Renew", mock.Anything, int64(42), 30, 0.0, "manual").
					Return(nil, errors.New("db down")).Once()
			},
			wantReply: "Не удалось продлить подписку, попробуйте позже",
		},
		{
			name:      "renew zero days rejected before engine",
			text:      "renew 42 0",
			setupMock: func(_ *EngineMock) {},
			wantReply: "Ошибка: days должен быть больше 0, amount не меньше 0",
		},
		{
			name:      "malformed days rejected with error reply",
			text:      "renew 42 abc",
			setupMock: func(_ *EngineMock) {},
			wantReply: `Ошибка: days must be a number, got "abc"`,
		},
		{
			name: "stats replies with report",
			text: "stats",
			setupMock: func(e *EngineMock) {
				e.On("ComputeStats", mock.Anything).Return(&models.Stats{
					ActiveCount:        3,
					PendingCount:       1,
					ExpiredCount:       2,
					RemovedCount:       4,
					TotalRevenue:       150.5,
					MonthToDateRevenue: 40,
					AveragePayment:     25.08,
				}, nil).Once()
			},
			wantReply: "Статистика:\n" +
				"Активных: 3\n" +
				"Ожидают оплаты: 1\n" +
				"Истёкших: 2\n" +
				"Исключённых: 4\n" +
				"Выручка всего: 150.50\n" +
				"Выручка за месяц: 40.00\n" +
				"Средний платёж: 25.08",
		},
		{
			name:      "unknown command is silently ignored",
			text:      "hello",
			setupMock: func(_ *EngineMock) {},
			wantReply: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := new(EngineMock)
			tt.setupMock(engine)
			svc := NewGatewayService(engine, newNoopLogger())

			got := svc.Execute(context.Background(), tt.text)

			assert.Equal(t, tt.wantReply, got)
			engine.AssertExpectations(t)
		})
	}
}
