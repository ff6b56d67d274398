package models

import "time"

// Payment представляет запись журнала платежей. Журнал только пополняется,
// записи никогда не изменяются и не удаляются.
type Payment struct {
	ID             int64
	SubscriptionID int64
	OperationUID   string // Уникальный идентификатор операции
	Amount         float64
	Currency       string
	Method         string // Способ оплаты, задается оператором
	CreatedAt      time.Time
}

// Stats содержит агрегированный отчет по пользователям и платежам.
// Структура сериализуется в JSON для кеширования.
type Stats struct {
	ActiveCount        int     `json:"active_count"`
	PendingCount       int     `json:"pending_count"`
	ExpiredCount       int     `json:"expired_count"`
	RemovedCount       int     `json:"removed_count"`
	TotalRevenue       float64 `json:"total_revenue"`
	MonthToDateRevenue float64 `json:"month_to_date_revenue"`
	AveragePayment     float64 `json:"average_payment"`
}
