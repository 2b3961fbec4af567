package storage

import (
	"database/sql"
	"errors"

	_ "github.com/lib/pq"
)

// ErrNotFound сообщает, что запись с указанным youtube_url отсутствует.
// Вызывающий код не должен знать про sql.ErrNoRows.
var ErrNotFound = errors.New("record not found")

type DB struct {
	Conn *sql.DB
}

func NewDB(conn *sql.DB) *DB {
	return &DB{Conn: conn}
}

// Open подключается к Postgres и проверяет соединение.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return NewDB(conn), nil
}

func (db *DB) Close() error {
	return db.Conn.Close()
}
