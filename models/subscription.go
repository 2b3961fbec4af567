package models

// Subscription — одна подписка пользователя на YouTube. В базе не хранится.
type Subscription struct {
	Title     string `json:"title"`
	ChannelID string `json:"channel_id"`
}
