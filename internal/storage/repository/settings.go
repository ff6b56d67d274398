package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

// Ключи таблицы settings.
const SettingGroupChatID = "group_chat_id"

// GetGroupChatID возвращает сохранённый идентификатор целевой группы.
// Если группа ещё не обнаружена, возвращает ErrSettingMissing.
func (s *Storage) GetGroupChatID(ctx context.Context) (int64, error) {
	const op = "storage.GetGroupChatID"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT value FROM settings WHERE key = $1`
	var value string
	if err := s.DB.QueryRowContext(ctx, query, SettingGroupChatID).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("%s: %w", op, ErrSettingMissing)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	chatID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return chatID, nil
}

// SaveGroupChatID сохраняет идентификатор целевой группы. Запись переживает
// перезапуск, поэтому автонастройка не теряется и исключение участников
// продолжает работать.
func (s *Storage) SaveGroupChatID(ctx context.Context, chatID int64) error {
	const op = "storage.SaveGroupChatID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO settings (key, value)
			  VALUES ($1, $2)
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.DB.ExecContext(ctx, query,
		SettingGroupChatID, strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
