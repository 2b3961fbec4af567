package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ytg_go/models"

	"github.com/lib/pq"
)

const channelColumns = `id, name, youtube_url, telegram_url, requested_times, created_at`

// FindBySourceURLs возвращает все подтверждённые каналы, чей youtube_url входит в набор.
// Порядок стабилен (по id), чтобы отчёт для одинакового набора подписок не менялся.
func (db *DB) FindBySourceURLs(ctx context.Context, urls []string) ([]models.Channel, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	rows, err := db.Conn.QueryContext(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE youtube_url = ANY($1) ORDER BY id`,
		pq.Array(urls),
	)
	if err != nil {
		return nil, fmt.Errorf("select channels: %w", err)
	}
	defer rows.Close()

	var list []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.SourceURL, &ch.DestinationURL, &ch.RequestCount, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		list = append(list, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// FindBySourceURL ищет один подтверждённый канал.
func (db *DB) FindBySourceURL(ctx context.Context, url string) (*models.Channel, error) {
	var ch models.Channel
	err := db.Conn.QueryRowContext(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE youtube_url = $1`, url,
	).Scan(&ch.ID, &ch.Name, &ch.SourceURL, &ch.DestinationURL, &ch.RequestCount, &ch.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// CreateIfAbsent вставляет канал, если youtube_url ещё не занят.
// Конфликт уникальности не ошибка: значит, канал уже добавил параллельный поиск,
// и в этом случае возвращается false.
func (db *DB) CreateIfAbsent(ctx context.Context, ch models.Channel) (bool, error) {
	var id int
	err := db.Conn.QueryRowContext(ctx, `
		INSERT INTO channels (name, youtube_url, telegram_url, requested_times)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (youtube_url) DO NOTHING
		RETURNING id
	`, ch.Name, ch.SourceURL, ch.DestinationURL, ch.RequestCount).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert channel: %w", err)
	}
	return true, nil
}
