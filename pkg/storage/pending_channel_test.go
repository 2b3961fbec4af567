package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"ytg_go/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var pendingRowColumns = []string{"id", "name", "youtube_url", "telegram_url", "requested_times", "submitted_by", "created_at"}

const pendingURL = "https://www.youtube.com/channel/UC1"

// TestCreatePendingConflict проверяет, что повторная заявка не создаётся.
func TestCreatePendingConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO pending_channels").
		WithArgs("Имя", pendingURL, "https://t.me/x", 0, int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	created, err := db.CreatePending(context.Background(), models.PendingChannel{
		Name: "Имя", SourceURL: pendingURL, DestinationURL: "https://t.me/x", SubmittedBy: 42,
	})
	if err != nil || created {
		t.Fatalf("ожидалось created=false без ошибки, получено %v, %v", created, err)
	}
}

// TestDeletePending проверяет подсчёт удалённых строк.
func TestDeletePending(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM pending_channels WHERE youtube_url").
		WithArgs(pendingURL).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM pending_channels WHERE youtube_url").
		WithArgs(pendingURL).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := db.DeletePending(context.Background(), pendingURL)
	if err != nil || !deleted {
		t.Fatalf("первое удаление должно пройти: %v, %v", deleted, err)
	}
	deleted, err = db.DeletePending(context.Background(), pendingURL)
	if err != nil || deleted {
		t.Fatalf("второе удаление ничего не должно найти: %v, %v", deleted, err)
	}
}

// TestApprovePendingPromotes проверяет перенос заявки в channels в транзакции.
func TestApprovePendingPromotes(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM pending_channels WHERE youtube_url = (.+) FOR UPDATE").
		WithArgs(pendingURL).
		WillReturnRows(sqlmock.NewRows(pendingRowColumns).
			AddRow(3, "Имя", pendingURL, "https://t.me/x", 0, int64(42), time.Now()))
	mock.ExpectQuery("INSERT INTO channels").
		WithArgs("Имя", pendingURL, "https://t.me/x", 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectExec("DELETE FROM pending_channels WHERE id").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, created, err := db.ApprovePending(context.Background(), pendingURL)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if !created || p.Name != "Имя" {
		t.Fatalf("заявка должна быть перенесена: %+v, %v", p, created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("не все ожидания выполнены: %v", err)
	}
}

// TestApprovePendingAlreadyExists проверяет, что при существующем канале заявка не удаляется.
func TestApprovePendingAlreadyExists(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM pending_channels").
		WithArgs(pendingURL).
		WillReturnRows(sqlmock.NewRows(pendingRowColumns).
			AddRow(3, "Имя", pendingURL, "https://t.me/x", 0, int64(42), time.Now()))
	mock.ExpectQuery("INSERT INTO channels").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	_, created, err := db.ApprovePending(context.Background(), pendingURL)
	if err != nil || created {
		t.Fatalf("ожидалось created=false без ошибки, получено %v, %v", created, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("не все ожидания выполнены: %v", err)
	}
}

// TestApprovePendingMissing проверяет ErrNotFound при отсутствии заявки.
func TestApprovePendingMissing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM pending_channels").
		WithArgs(pendingURL).
		WillReturnRows(sqlmock.NewRows(pendingRowColumns))
	mock.ExpectRollback()

	_, _, err := db.ApprovePending(context.Background(), pendingURL)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидалась ErrNotFound, получено %v", err)
	}
}

// TestListPending проверяет порядок и разбор заявок.
func TestListPending(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM pending_channels ORDER BY id").
		WillReturnRows(sqlmock.NewRows(pendingRowColumns).
			AddRow(1, "A", "u1", "https://t.me/a", 0, int64(1), now).
			AddRow(2, "B", "u2", "https://t.me/b", 0, int64(2), now))

	list, err := db.ListPending(context.Background())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(list) != 2 || list[0].SourceURL != "u1" || list[1].SubmittedBy != 2 {
		t.Fatalf("неверный список заявок: %+v", list)
	}
}
