package lemnos

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Response — общий конверт ответа /channels. Пустой items означает «не найдено».
type Response struct {
	Items []Item `json:"items"`
}

// Item — канал в ответе. Заполнены только разделы, запрошенные через part.
type Item struct {
	ID        string      `json:"id"`
	About     *About      `json:"about,omitempty"`
	Community []Community `json:"community,omitempty"`
}

// About — раздел «О канале» со ссылками на соцсети.
type About struct {
	Description string   `json:"description"`
	Links       LinkList `json:"links"`
}

// Community — пост сообщества; нужен только ради названия канала.
type Community struct {
	ChannelName string `json:"channelName"`
}

// Link — одна ссылка из раздела «О канале».
type Link struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Favicon any    `json:"favicon,omitempty"`
}

// LinkList — список ссылок. Сервис иногда отдаёт вместо массива другой тип;
// такой ответ не роняет весь разбор, а помечается как Malformed.
type LinkList struct {
	Items     []Link
	Malformed bool
}

func (l *LinkList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = LinkList{}
		return nil
	}
	if len(data) == 0 || data[0] != '[' {
		*l = LinkList{Malformed: true}
		return nil
	}
	var items []Link
	if err := json.Unmarshal(data, &items); err != nil {
		*l = LinkList{Malformed: true}
		return nil
	}
	*l = LinkList{Items: items}
	return nil
}
