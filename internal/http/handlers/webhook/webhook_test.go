package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

type EngineMock struct{ mock.Mock }

func (m *EngineMock) RegisterUser(ctx context.Context, member models.Member) (bool, error) {
	args := m.Called(ctx, member)
	return args.Bool(0), args.Error(1)
}

func (m *EngineMock) IdentifyChannel(ctx context.Context, chatID int64) error {
	return m.Called(ctx, chatID).Error(0)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) Execute(ctx context.Context, text string) string {
	return m.Called(ctx, text).String(0)
}

type MessengerMock struct{ mock.Mock }

func (m *MessengerMock) SendMessage(ctx context.Context, chatID int64, text string) error {
	return m.Called(ctx, chatID, text).Error(0)
}

const (
	testAdminID = int64(111)
	testSecret  = "topsecret"
)

func newTestServer(engine *EngineMock, gateway *GatewayMock, msg *MessengerMock) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	h := New(logger, engine, gateway, msg, testAdminID, testSecret)

	router := chi.NewRouter()
	router.Post("/webhook/{secret}", h.ServeHTTP)
	return router
}

func postUpdate(t *testing.T, router *chi.Mux, secret string, update any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	switch v := update.(type) {
	case string:
		body.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&body).Encode(v))
	}

	req := httptest.NewRequest(http.MethodPost, "/webhook/"+secret, &body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestWebhookHandler_SecretMismatch(t *testing.T) {
	engine := new(EngineMock)
	router := newTestServer(engine, new(GatewayMock), new(MessengerMock))

	rr := postUpdate(t, router, "wrong", Update{UpdateID: 1})

	assert.Equal(t, http.StatusForbidden, rr.Code)
	engine.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
}

func TestWebhookHandler_NewMembers(t *testing.T) {
	engine := new(EngineMock)
	router := newTestServer(engine, new(GatewayMock), new(MessengerMock))

	engine.On("IdentifyChannel", mock.Anything, int64(-100500)).Return(nil).Once()
	engine.On("RegisterUser", mock.Anything, models.Member{
		TelegramID: 42, Username: "alice", FirstName: "Alice",
	}).Return(true, nil).Once()

	update := Update{
		UpdateID: 1,
		Message: &Message{
			Chat: Chat{ID: -100500, Type: "supergroup"},
			NewChatMembers: []Account{
				{ID: 42, Username: "alice", FirstName: "Alice"},
				{ID: 43, Username: "helperbot", IsBot: true},
			},
		},
	}
	rr := postUpdate(t, router, testSecret, update)

	assert.Equal(t, http.StatusOK, rr.Code)
	engine.AssertExpectations(t)
	// Бот из списка участников не регистрируется.
	engine.AssertNumberOfCalls(t, "RegisterUser", 1)
}

func TestWebhookHandler_MembershipChanged(t *testing.T) {
	tests := []struct {
		name         string
		newStatus    string
		wantRegister bool
	}{
		{name: "joined member is registered", newStatus: "member", wantRegister: true},
		{name: "left member is not registered", newStatus: "left", wantRegister: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := new(EngineMock)
			router := newTestServer(engine, new(GatewayMock), new(MessengerMock))

			engine.On("IdentifyChannel", mock.Anything, int64(-100500)).Return(nil).Once()
			if tt.wantRegister {
				engine.On("RegisterUser", mock.Anything, mock.Anything).Return(true, nil).Once()
			}

			update := Update{
				UpdateID: 2,
				ChatMember: &ChatMemberUpdated{
					Chat: Chat{ID: -100500, Type: "supergroup"},
					NewChatMember: ChatMember{
						Status: tt.newStatus,
						User:   Account{ID: 42, Username: "alice"},
					},
				},
			}
			rr := postUpdate(t, router, testSecret, update)

			assert.Equal(t, http.StatusOK, rr.Code)
			engine.AssertExpectations(t)
			if !tt.wantRegister {
				engine.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestWebhookHandler_AdminCommand(t *testing.T) {
	t.Run("reply is sent back to admin chat", func(t *testing.T) {
		gateway := new(GatewayMock)
		msg := new(MessengerMock)
		router := newTestServer(new(EngineMock), gateway, msg)

		gateway.On("Execute", mock.Anything, "stats").Return("Статистика: ...").Once()
		msg.On("SendMessage", mock.Anything, testAdminID, "Статистика: ...").Return(nil).Once()

		update := Update{
			UpdateID: 3,
			Message: &Message{
				From: &Account{ID: testAdminID},
				Chat: Chat{ID: testAdminID, Type: "private"},
				Text: "stats",
			},
		}
		rr := postUpdate(t, router, testSecret, update)

		assert.Equal(t, http.StatusOK, rr.Code)
		gateway.AssertExpectations(t)
		msg.AssertExpectations(t)
	})

	t.Run("empty reply sends nothing", func(t *testing.T) {
		gateway := new(GatewayMock)
		msg := new(MessengerMock)
		router := newTestServer(new(EngineMock), gateway, msg)

		gateway.On("Execute", mock.Anything, "hello").Return("").Once()

		update := Update{
			UpdateID: 4,
			Message: &Message{
				From: &Account{ID: testAdminID},
				Chat: Chat{ID: testAdminID, Type: "private"},
				Text: "hello",
			},
		}
		rr := postUpdate(t, router, testSecret, update)

		assert.Equal(t, http.StatusOK, rr.Code)
		msg.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non-admin message is ignored", func(t *testing.T) {
		gateway := new(GatewayMock)
		router := newTestServer(new(EngineMock), gateway, new(MessengerMock))

		update := Update{
			UpdateID: 5,
			Message: &Message{
				From: &Account{ID: 999},
				Chat: Chat{ID: 999, Type: "private"},
				Text: "stats",
			},
		}
		rr := postUpdate(t, router, testSecret, update)

		assert.Equal(t, http.StatusOK, rr.Code)
		gateway.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})
}

func TestWebhookHandler_AcksEverything(t *testing.T) {
	t.Run("garbage body still acked", func(t *testing.T) {
		router := newTestServer(new(EngineMock), new(GatewayMock), new(MessengerMock))

		rr := postUpdate(t, router, testSecret, "not a json")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unclassified update still acked", func(t *testing.T) {
		router := newTestServer(new(EngineMock), new(GatewayMock), new(MessengerMock))

		rr := postUpdate(t, router, testSecret, Update{UpdateID: 6})
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
