package models

import "time"

// PendingChannel — предложенная пользователем связка, ожидающая модерации.
type PendingChannel struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	SourceURL      string    `json:"youtube_url"`
	DestinationURL string    `json:"telegram_url"`
	RequestCount   int       `json:"requested_times"`
	SubmittedBy    int64     `json:"submitted_by"` // ID пользователя Telegram, отправившего заявку
	CreatedAt      time.Time `json:"created_at"`
}

// Channel превращает заявку в подтверждённую запись при одобрении.
func (p PendingChannel) Channel() Channel {
	return Channel{
		Name:           p.Name,
		SourceURL:      p.SourceURL,
		DestinationURL: p.DestinationURL,
		RequestCount:   p.RequestCount,
	}
}
