package webhook

import "github.com/magabrotheeeer/membership-gatekeeper/internal/models"

func toMember(a Account) models.Member {
	return models.Member{
		TelegramID: a.ID,
		Username:   a.Username,
		FirstName:  a.FirstName,
		IsBot:      a.IsBot,
	}
}

func isGroup(c Chat) bool {
	return c.Type == "group" || c.Type == "supergroup"
}

// Classify превращает сырое обновление в упорядоченный набор типизированных
// событий. Любая групповая активность дополнительно даёт событие
// автонастройки идентификатора группы. Формы, не попавшие ни в один вариант,
// дают пустой список и просто подтверждаются.
func Classify(u Update, adminID int64) []models.Event {
	var events []models.Event

	switch {
	case u.ChatMember != nil:
		if isGroup(u.ChatMember.Chat) {
			events = append(events, models.ChannelIdentifiedEvent{ChatID: u.ChatMember.Chat.ID})
		}
		events = append(events, models.MembershipChangedEvent{
			Member:    toMember(u.ChatMember.NewChatMember.User),
			NewStatus: u.ChatMember.NewChatMember.Status,
		})

	case u.Message != nil && len(u.Message.NewChatMembers) > 0:
		if isGroup(u.Message.Chat) {
			events = append(events, models.ChannelIdentifiedEvent{ChatID: u.Message.Chat.ID})
		}
		ev := models.NewMembersEvent{}
		for _, a := range u.Message.NewChatMembers {
			ev.Members = append(ev.Members, toMember(a))
		}
		events = append(events, ev)

	case u.Message != nil && u.Message.Text != "" && u.Message.From != nil:
		if isGroup(u.Message.Chat) {
			events = append(events, models.ChannelIdentifiedEvent{ChatID: u.Message.Chat.ID})
		}
		// Командный канал — личный чат с администратором; сообщения
		// остальных отправителей игнорируются.
		if u.Message.Chat.Type == "private" && u.Message.From.ID == adminID {
			events = append(events, models.AdminMessageEvent{
				SenderID: u.Message.From.ID,
				ChatID:   u.Message.Chat.ID,
				Text:     u.Message.Text,
			})
		}
	}

	return events
}
