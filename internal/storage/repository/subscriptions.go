package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

// RenewSubscription выполняет продление одной транзакцией: блокирует строку
// пользователя, закрывает прежнюю активную подписку, создаёт новую, пишет
// платёж и обновляет денормализованный статус пользователя. Либо фиксируются
// все четыре записи, либо ни одной: никакой читатель не увидит пользователя
// с нулём или двумя активными подписками.
func (s *Storage) RenewSubscription(ctx context.Context, entry models.RenewalEntry) (*models.RenewalResult, error) {
	const op = "storage.RenewSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// FOR UPDATE сериализует продление с конкурирующей ревизией того же
	// пользователя.
	var userID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE telegram_id = $1 FOR UPDATE`,
		entry.TelegramID).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'expired' WHERE user_id = $1 AND status = 'active'`,
		userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var subscriptionID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO subscriptions (user_id, start_date, end_date, status)
		 VALUES ($1, $2, $3, 'active')
		 RETURNING id`,
		userID, entry.StartDate, entry.EndDate).Scan(&subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO payments (subscription_id, operation_uid, amount, currency, method)
		 VALUES ($1, $2, $3, $4, $5)`,
		subscriptionID, entry.OperationUID, entry.Amount, entry.Currency, entry.Method); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET status = 'active', subscription_end_date = $1 WHERE id = $2`,
		entry.EndDate, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.RenewalResult{
		UserID:     userID,
		TelegramID: entry.TelegramID,
		EndDate:    entry.EndDate,
	}, nil
}

// CountStats собирает агрегированный отчёт по пользователям и платежам.
// COALESCE гарантирует нули на пустом журнале платежей.
func (s *Storage) CountStats(ctx context.Context) (*models.Stats, error) {
	const op = "storage.CountStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stats := &models.Stats{}

	query := `SELECT
			      COUNT(*) FILTER (WHERE status = 'active'),
			      COUNT(*) FILTER (WHERE status = 'pending'),
			      COUNT(*) FILTER (WHERE status = 'expired'),
			      COUNT(*) FILTER (WHERE status = 'removed')
			  FROM users`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&stats.ActiveCount,
		&stats.PendingCount, &stats.ExpiredCount, &stats.RemovedCount); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `SELECT
			     COALESCE(SUM(amount), 0),
			     COALESCE(SUM(amount) FILTER (WHERE created_at >= date_trunc('month', CURRENT_DATE)), 0),
			     COALESCE(AVG(amount), 0)
			 FROM payments`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&stats.TotalRevenue,
		&stats.MonthToDateRevenue, &stats.AveragePayment); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}
