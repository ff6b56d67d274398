package models

// Виды административных уведомлений, публикуемых в очередь.
const (
	NoticeNewUser       = "new_user"
	NoticeExpiringToday = "expiring_today"
	NoticeRevoked       = "revoked"
)

// AdminNotice — уведомление для администратора. Публикуется движком или
// ревизией в RabbitMQ и доставляется отдельным воркером, поэтому сбой
// доставки никогда не затрагивает уже зафиксированное состояние.
type AdminNotice struct {
	Kind       string `json:"kind"`
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	Text       string `json:"text"`
}
