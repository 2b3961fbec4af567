package bot

import (
	"strings"

	"ytg_go/pkg/youtube"
)

// Данные кнопок. В решениях модератора передаётся id канала, а не ссылка:
// Telegram ограничивает callback_data 64 байтами.
const (
	actionFindChannels = "find_channels"
	actionLinkChannel  = "link_channel"
	actionApprove      = "approve"
	actionReject       = "reject"
)

// decisionData кодирует решение по заявке.
func decisionData(action, sourceURL string) string {
	id, ok := youtube.ParseChannelID(sourceURL)
	if !ok {
		id = sourceURL
	}
	return action + ":" + id
}

// parseDecision возвращает действие и каноническую ссылку на канал.
func parseDecision(data string) (action, sourceURL string, ok bool) {
	action, id, found := strings.Cut(data, ":")
	if !found || id == "" || (action != actionApprove && action != actionReject) {
		return "", "", false
	}
	return action, youtube.ChannelURL(id), true
}
