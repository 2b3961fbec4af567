package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gotd/td/session"
	"go.uber.org/zap"
)

// TelegramSessionStorage хранит MTProto-сессию бота в таблице telegram_session,
// чтобы не авторизовываться заново при каждом запуске клиента.
type TelegramSessionStorage struct {
	DB     *sql.DB
	BotID  int64
	Logger *zap.Logger
}

func (s *TelegramSessionStorage) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// LoadSession загружает текст сессии из БД.
func (s *TelegramSessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	if s == nil || s.DB == nil {
		return nil, session.ErrNotFound
	}

	var data string
	err := s.DB.QueryRowContext(ctx, "SELECT data_json FROM telegram_session WHERE bot_id = $1", s.BotID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		s.logger().Error("ошибка чтения сессии", zap.Int64("bot_id", s.BotID), zap.Error(err))
		return nil, err
	}
	return []byte(data), nil
}

// StoreSession сохраняет текст сессии в БД.
func (s *TelegramSessionStorage) StoreSession(ctx context.Context, data []byte) error {
	if s == nil || s.DB == nil {
		return session.ErrNotFound
	}
	// На одного бота всегда одна запись
	_, err := s.DB.ExecContext(
		ctx,
		"INSERT INTO telegram_session (bot_id, data_json) VALUES ($1, $2) "+
			"ON CONFLICT (bot_id) DO UPDATE SET data_json = EXCLUDED.data_json, date_time = NOW()",
		s.BotID,
		string(data),
	)
	if err != nil {
		s.logger().Error("ошибка сохранения сессии", zap.Int64("bot_id", s.BotID), zap.Error(err))
		return err
	}
	return nil
}
