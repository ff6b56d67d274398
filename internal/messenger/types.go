package messenger

// sendMessageRequest — тело запроса sendMessage.
type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// banChatMemberRequest — тело запроса banChatMember.
type banChatMemberRequest struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

// apiResponse — общий конверт ответа Bot API.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}
