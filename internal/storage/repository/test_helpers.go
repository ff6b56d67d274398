package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его id
func (f *TestDataFactory) CreateUser(t *testing.T, telegramID int64, username, status string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO users (telegram_id, username, status)
		VALUES ($1, $2, $3) RETURNING id`,
		telegramID, username, status).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateSubscription создает тестовую подписку и возвращает её id
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID int64,
	startDate, endDate time.Time, status string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions (user_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, startDate, endDate, status).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreatePayment создает тестовый платеж по подписке
func (f *TestDataFactory) CreatePayment(t *testing.T, subscriptionID int64, amount float64) {
	_, err := f.storage.DB.Exec(`INSERT INTO payments (subscription_id, operation_uid, amount, currency, method)
		VALUES ($1, $2, $3, 'RUB', 'manual')`,
		subscriptionID, uuid.NewString(), amount)
	require.NoError(t, err)
}

// CountRows возвращает число строк в таблице
func (f *TestDataFactory) CountRows(t *testing.T, table string) int {
	var count int
	err := f.storage.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
	require.NoError(t, err)
	return count
}

// VerifyUserStatus проверяет статус пользователя в БД
func (f *TestDataFactory) VerifyUserStatus(t *testing.T, userID int64, expectedStatus string) {
	var status string
	err := f.storage.DB.QueryRow("SELECT status FROM users WHERE id = $1", userID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status)
}

// VerifyActiveSubscriptions проверяет число активных подписок пользователя
func (f *TestDataFactory) VerifyActiveSubscriptions(t *testing.T, userID int64, expected int) {
	var count int
	err := f.storage.DB.QueryRow(
		"SELECT COUNT(*) FROM subscriptions WHERE user_id = $1 AND status = 'active'", userID).
		Scan(&count)
	require.NoError(t, err)
	require.Equal(t, expected, count)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	// Создаем таблицы
	_, err = storage.DB.Exec(`
        CREATE TABLE users (
            id BIGSERIAL PRIMARY KEY,
            telegram_id BIGINT NOT NULL UNIQUE,
            username TEXT NOT NULL DEFAULT '',
            first_name TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'pending'
                CHECK (status IN ('pending', 'active', 'expired', 'removed')),
            subscription_end_date DATE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE subscriptions (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            start_date DATE NOT NULL,
            end_date DATE NOT NULL,
            status TEXT NOT NULL DEFAULT 'active'
                CHECK (status IN ('active', 'expired')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE UNIQUE INDEX subscriptions_one_active_per_user
            ON subscriptions (user_id) WHERE status = 'active';

        CREATE TABLE payments (
            id BIGSERIAL PRIMARY KEY,
            subscription_id BIGINT NOT NULL REFERENCES subscriptions(id),
            operation_uid UUID NOT NULL,
            amount NUMERIC(12, 2) NOT NULL CHECK (amount >= 0),
            currency TEXT NOT NULL DEFAULT 'RUB',
            method TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE settings (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}
