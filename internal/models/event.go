package models

// Event — закрытое множество типизированных входящих событий.
// Классификатор вебхука превращает сырое обновление платформы ровно
// в один из этих вариантов, всё остальное подтверждается без обработки.
type Event interface {
	isEvent()
}

// Member описывает аккаунт платформы в событии о новых участниках.
type Member struct {
	TelegramID int64
	Username   string
	FirstName  string
	IsBot      bool
}

// NewMembersEvent — в группу добавлены новые участники.
type NewMembersEvent struct {
	Members []Member
}

// MembershipChangedEvent — статус участника в группе изменился.
type MembershipChangedEvent struct {
	Member    Member
	NewStatus string
}

// AdminMessageEvent — текстовое сообщение от администратора.
type AdminMessageEvent struct {
	SenderID int64
	ChatID   int64
	Text     string
}

// ChannelIdentifiedEvent — одноразовое событие автонастройки:
// бот увидел целевую группу и её идентификатор нужно сохранить.
type ChannelIdentifiedEvent struct {
	ChatID int64
}

func (NewMembersEvent) isEvent()        {}
func (MembershipChangedEvent) isEvent() {}
func (AdminMessageEvent) isEvent()      {}
func (ChannelIdentifiedEvent) isEvent() {}
