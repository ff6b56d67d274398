package models

import "time"

// Статусы подписки. У пользователя в любой момент времени не более одной
// подписки в статусе active, это закреплено частичным уникальным индексом.
const (
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

// Subscription представляет один интервал доступа пользователя к группе.
// Даты календарные, без времени суток.
type Subscription struct {
	ID        int64
	UserID    int64
	StartDate time.Time
	EndDate   time.Time
	Status    string // Один из SubscriptionStatus*
	CreatedAt time.Time
}

// RenewalEntry описывает параметры одной операции продления,
// передаваемые хранилищу единой транзакцией.
type RenewalEntry struct {
	TelegramID   int64
	StartDate    time.Time
	EndDate      time.Time
	OperationUID string
	Amount       float64
	Currency     string
	Method       string
}

// RenewalResult возвращается движком после успешного продления.
type RenewalResult struct {
	UserID     int64
	TelegramID int64
	EndDate    time.Time // Новая дата окончания подписки
}

// ExpiringUser описывает пользователя с подпиской, истекающей сегодня.
// Используется только для предупреждений, состояние не меняется.
type ExpiringUser struct {
	UserID   int64
	Username string
	EndDate  time.Time
}

// OverdueUser описывает пользователя с просроченной подпиской,
// подлежащего исключению из группы.
type OverdueUser struct {
	UserID     int64
	TelegramID int64
	Username   string
	EndDate    time.Time
}
