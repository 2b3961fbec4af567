package models

import "time"

// Channel — подтверждённое соответствие YouTube-канала и Telegram-канала.
// source_url уникален во всей базе и служит естественным ключом.
type Channel struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	SourceURL      string    `json:"youtube_url"`
	DestinationURL string    `json:"telegram_url"`
	RequestCount   int       `json:"requested_times"` // Зарезервировано, логика не увеличивает счётчик
	CreatedAt      time.Time `json:"created_at"`
}
