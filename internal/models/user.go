// Package models содержит доменные структуры: пользователей закрытой группы,
// их подписки и платежи, а также типы входящих событий и команд администратора.
package models

import "time"

// Статусы пользователя. Пользователь никогда не удаляется физически,
// статус removed означает исключение из группы.
const (
	UserStatusPending = "pending"
	UserStatusActive  = "active"
	UserStatusExpired = "expired"
	UserStatusRemoved = "removed"
)

// User представляет участника закрытой группы.
// Поля Status и SubscriptionEndDate денормализованы из текущей активной
// подписки и изменяются только движком жизненного цикла.
type User struct {
	ID                  int64      // Внутренний идентификатор (назначается хранилищем)
	TelegramID          int64      // Идентификатор аккаунта на платформе (уникальный, неизменяемый)
	Username            string     // Ник на платформе (может быть пустым)
	FirstName           string     // Отображаемое имя
	Status              string     // Один из UserStatus*
	SubscriptionEndDate *time.Time // Дата окончания текущей подписки, nil если подписки не было
	CreatedAt           time.Time
}
