package webhook

// Update — сырое обновление вебхука платформы. Разбираются только поля,
// нужные классификатору, остальное игнорируется.
type Update struct {
	UpdateID   int64              `json:"update_id"`
	Message    *Message           `json:"message"`
	ChatMember *ChatMemberUpdated `json:"chat_member"`
}

// Message — входящее сообщение.
type Message struct {
	From           *Account  `json:"from"`
	Chat           Chat      `json:"chat"`
	Text           string    `json:"text"`
	NewChatMembers []Account `json:"new_chat_members"`
}

// Account — аккаунт платформы.
type Account struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	IsBot     bool   `json:"is_bot"`
}

// Chat — чат, из которого пришло обновление.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"` // private, group, supergroup
}

// ChatMemberUpdated — изменение статуса участника в группе.
type ChatMemberUpdated struct {
	Chat          Chat       `json:"chat"`
	NewChatMember ChatMember `json:"new_chat_member"`
}

// ChatMember — участник группы со статусом.
type ChatMember struct {
	Status string  `json:"status"`
	User   Account `json:"user"`
}
