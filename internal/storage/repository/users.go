package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/membership-gatekeeper/internal/models"
)

// CreateUser сохраняет впервые увиденного участника. Вставка идемпотентна:
// если telegram_id уже существует, возвращается id существующей записи
// и created=false, без ошибки.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, bool, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (telegram_id, username, first_name, status)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (telegram_id) DO NOTHING
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		user.TelegramID, user.Username, user.FirstName, models.UserStatusPending).Scan(&newID)
	if err == nil {
		return newID, true, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	// Конфликт по telegram_id: возвращаем существующую запись.
	query = `SELECT id FROM users WHERE telegram_id = $1`
	if err := s.DB.QueryRowContext(ctx, query, user.TelegramID).Scan(&newID); err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return newID, false, nil
}

// GetUserByTelegramID возвращает пользователя по идентификатору платформы.
func (s *Storage) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	const op = "storage.GetUserByTelegramID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, telegram_id, username, first_name, status,
			      subscription_end_date, created_at
			  FROM users
			  WHERE telegram_id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, telegramID)

	var endDate sql.NullTime
	if err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName,
		&u.Status, &endDate, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if endDate.Valid {
		u.SubscriptionEndDate = &endDate.Time
	}
	return u, nil
}

// FindUsersExpiringToday находит пользователей, чья активная подписка
// заканчивается сегодня. Только чтение, состояние не меняется.
func (s *Storage) FindUsersExpiringToday(ctx context.Context) ([]*models.ExpiringUser, error) {
	const op = "storage.FindUsersExpiringToday"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.id, u.username, sub.end_date
			  FROM users u
			  JOIN subscriptions sub ON sub.user_id = u.id AND sub.status = 'active'
			  WHERE u.status = 'active'
			    AND sub.end_date = CURRENT_DATE`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiringUser
	for rows.Next() {
		var eu models.ExpiringUser
		if err = rows.Scan(&eu.UserID, &eu.Username, &eu.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &eu)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindOverdueUsers находит пользователей, чья активная подписка просрочена
// более чем на gracePeriodDays. Кандидаты выводятся из текущего состояния,
// поэтому повторный запуск после ревизии возвращает пустой список.
func (s *Storage) FindOverdueUsers(ctx context.Context, gracePeriodDays int) ([]*models.OverdueUser, error) {
	const op = "storage.FindOverdueUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.id, u.telegram_id, u.username, sub.end_date
			  FROM users u
			  JOIN subscriptions sub ON sub.user_id = u.id AND sub.status = 'active'
			  WHERE u.status = 'active'
			    AND sub.end_date < CURRENT_DATE - $1::int`
	rows, err := s.DB.QueryContext(ctx, query, gracePeriodDays)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.OverdueUser
	for rows.Next() {
		var ou models.OverdueUser
		if err = rows.Scan(&ou.UserID, &ou.TelegramID, &ou.Username, &ou.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &ou)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RevokeUser переводит пользователя и его активную подписку в закрытое
// состояние. Сравнение со статусом active делает операцию идемпотентной:
// повторный или конкурирующий вызов не находит строки и возвращает false.
func (s *Storage) RevokeUser(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.RevokeUser"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET status = 'removed' WHERE id = $1 AND status = 'active'`, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE subscriptions SET status = 'expired' WHERE user_id = $1 AND status = 'active'`,
		userID); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}
