package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gotd/td/session"
)

// TestTelegramSessionStorageMissing проверяет, что отсутствие сессии отдаётся как session.ErrNotFound.
func TestTelegramSessionStorageMissing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT data_json FROM telegram_session").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"data_json"}))

	s := &TelegramSessionStorage{DB: db.Conn, BotID: 5}
	if _, err := s.LoadSession(context.Background()); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("ожидалась session.ErrNotFound, получено %v", err)
	}
}

// TestTelegramSessionStorageRoundTrip проверяет сохранение и загрузку.
func TestTelegramSessionStorageRoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO telegram_session").
		WithArgs(int64(5), `{"a":1}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT data_json FROM telegram_session").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"data_json"}).AddRow(`{"a":1}`))

	s := &TelegramSessionStorage{DB: db.Conn, BotID: 5}
	if err := s.StoreSession(context.Background(), []byte(`{"a":1}`)); err != nil {
		t.Fatalf("ошибка сохранения: %v", err)
	}
	data, err := s.LoadSession(context.Background())
	if err != nil || string(data) != `{"a":1}` {
		t.Fatalf("неверные данные сессии: %q, %v", data, err)
	}
}
