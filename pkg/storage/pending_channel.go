package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ytg_go/models"
)

const pendingColumns = `id, name, youtube_url, telegram_url, requested_times, submitted_by, created_at`

func scanPending(row interface{ Scan(...any) error }) (*models.PendingChannel, error) {
	var p models.PendingChannel
	if err := row.Scan(&p.ID, &p.Name, &p.SourceURL, &p.DestinationURL, &p.RequestCount, &p.SubmittedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePending сохраняет заявку. false — заявка на этот youtube_url уже есть.
func (db *DB) CreatePending(ctx context.Context, p models.PendingChannel) (bool, error) {
	var id int
	err := db.Conn.QueryRowContext(ctx, `
		INSERT INTO pending_channels (name, youtube_url, telegram_url, requested_times, submitted_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (youtube_url) DO NOTHING
		RETURNING id
	`, p.Name, p.SourceURL, p.DestinationURL, p.RequestCount, p.SubmittedBy).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert pending channel: %w", err)
	}
	return true, nil
}

// FindPendingBySourceURL возвращает заявку или ErrNotFound.
func (db *DB) FindPendingBySourceURL(ctx context.Context, url string) (*models.PendingChannel, error) {
	p, err := scanPending(db.Conn.QueryRowContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_channels WHERE youtube_url = $1`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePending удаляет заявку. Возвращает true, если что-то было удалено.
func (db *DB) DeletePending(ctx context.Context, url string) (bool, error) {
	res, err := db.Conn.ExecContext(ctx, `DELETE FROM pending_channels WHERE youtube_url = $1`, url)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListPending возвращает заявки в порядке поступления.
func (db *DB) ListPending(ctx context.Context) ([]models.PendingChannel, error) {
	rows, err := db.Conn.QueryContext(ctx, `SELECT `+pendingColumns+` FROM pending_channels ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.PendingChannel
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ApprovePending переносит заявку в channels и удаляет её в одной транзакции.
// Если канал с таким youtube_url уже существует, заявка остаётся на месте,
// а created = false: модератор решит, отклонить ли её.
func (db *DB) ApprovePending(ctx context.Context, url string) (*models.PendingChannel, bool, error) {
	tx, err := db.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	p, err := scanPending(tx.QueryRowContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_channels WHERE youtube_url = $1 FOR UPDATE`, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("select pending channel: %w", err)
	}

	ch := p.Channel()
	var id int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO channels (name, youtube_url, telegram_url, requested_times)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (youtube_url) DO NOTHING
		RETURNING id
	`, ch.Name, ch.SourceURL, ch.DestinationURL, ch.RequestCount).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, false, tx.Commit()
	}
	if err != nil {
		return nil, false, fmt.Errorf("promote pending channel: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_channels WHERE id = $1`, p.ID); err != nil {
		return nil, false, fmt.Errorf("delete pending channel: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return p, true, nil
}
