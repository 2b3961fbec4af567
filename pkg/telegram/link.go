package telegram

import (
	"strings"

	"ytg_go/pkg/lemnos"

	"go.uber.org/zap"
)

// LinkMarker — признак ссылки на Telegram в списке ссылок канала.
const LinkMarker = "t.me/"

// ExtractDestinationLink возвращает первую ссылку на Telegram в порядке списка.
// Пустая строка — ссылок нет, список пуст или сервис прислал не массив.
func ExtractDestinationLink(links lemnos.LinkList) string {
	if links.Malformed {
		zap.L().Warn("ожидался массив ссылок, получено другое значение")
		return ""
	}
	for _, link := range links.Items {
		if link.URL != "" && strings.Contains(link.URL, LinkMarker) {
			return link.URL
		}
	}
	return ""
}

// NormalizeLink приводит ввод пользователя (@name, t.me/name, https://t.me/name)
// к виду https://t.me/name. ok = false, если это не ссылка на Telegram.
func NormalizeLink(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "@") && len(s) > 1 && !strings.ContainsAny(s, " /") {
		return "https://" + LinkMarker + s[1:], true
	}
	idx := strings.Index(s, LinkMarker)
	if idx < 0 || idx+len(LinkMarker) == len(s) {
		return "", false
	}
	prefix := s[:idx]
	if prefix != "" && prefix != "https://" && prefix != "http://" && prefix != "www." &&
		prefix != "https://www." && prefix != "http://www." {
		return "", false
	}
	return "https://" + s[idx:], true
}

// ChannelSegment — последний сегмент пути ссылки, то есть собственный идентификатор канала.
func ChannelSegment(link string) string {
	link = strings.TrimRight(link, "/")
	if i := strings.LastIndex(link, "/"); i >= 0 {
		return link[i+1:]
	}
	return link
}
