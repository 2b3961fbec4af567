package youtube

import (
	"regexp"
	"strings"
)

// BaseURL — адрес YouTube, от которого строятся канонические ссылки на каналы.
const BaseURL = "https://www.youtube.com"

var (
	handlePattern  = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/@([^/?#]+)`)
	channelPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/channel/([^/?#]+)`)
)

// ChannelURL строит каноническую ссылку на канал по его идентификатору.
func ChannelURL(channelID string) string {
	return BaseURL + "/channel/" + channelID
}

// ParseHandle извлекает handle из ссылки вида youtube.com/@name.
func ParseHandle(rawURL string) (string, bool) {
	m := handlePattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseChannelID извлекает идентификатор канала из ссылки вида youtube.com/channel/UC...
func ParseChannelID(rawURL string) (string, bool) {
	m := channelPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", false
	}
	return m[1], true
}
