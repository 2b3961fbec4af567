package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ytg_go/internal/common"
	"ytg_go/internal/metrics"
	"ytg_go/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// API — часть клиента Bot API, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// NewAPI подключается к Bot API. Таймаут клиента больше таймаута long polling.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	client := &http.Client{Timeout: time.Duration(pollTimeout+30) * time.Second}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return api, nil
}

// Messenger отправляет отчёты пользователям и уведомления модератору.
type Messenger struct {
	api             API
	moderatorChatID int64
	pagePause       time.Duration
	logger          *zap.Logger
}

func NewMessenger(api API, moderatorChatID int64, pagePause time.Duration, logger *zap.Logger) *Messenger {
	return &Messenger{api: api, moderatorChatID: moderatorChatID, pagePause: pagePause, logger: logger}
}

// SendText отправляет простой текст без разметки.
func (m *Messenger) SendText(_ context.Context, chatID int64, text string) error {
	_, err := m.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		m.logger.Warn("не удалось отправить сообщение", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return err
}

// SendPages отправляет страницы отчёта по порядку, по сообщению на страницу.
// Ошибка одной страницы записывается в лог, остальные всё равно отправляются.
func (m *Messenger) SendPages(ctx context.Context, chatID int64, label string, pages []string) {
	log := m.logger.With(zap.Int64("chat_id", chatID), zap.String("label", label))
	for i, page := range pages {
		if i > 0 {
			if err := common.Pause(ctx, m.pagePause); err != nil {
				log.Warn("отправка отчёта прервана", zap.Int("sent", i), zap.Int("total", len(pages)))
				return
			}
		}
		msg := tgbotapi.NewMessage(chatID, page)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		if _, err := m.api.Send(msg); err != nil {
			metrics.Deliveries.WithLabelValues("failed").Inc()
			log.Error("не удалось отправить страницу отчёта", zap.Int("page", i+1), zap.Error(err))
			continue
		}
		metrics.Deliveries.WithLabelValues("sent").Inc()
	}
}

// NotifyDiscovered сообщает модератору о канале, найденном автоматически.
func (m *Messenger) NotifyDiscovered(ctx context.Context, ch models.Channel) error {
	return m.SendText(ctx, m.moderatorChatID, fmt.Sprintf(formatDiscovered, ch.SourceURL, ch.DestinationURL))
}

// NotifySubmission присылает модератору заявку с кнопками решения.
func (m *Messenger) NotifySubmission(_ context.Context, p models.PendingChannel) error {
	msg := tgbotapi.NewMessage(m.moderatorChatID, fmt.Sprintf(formatSubmission, p.SourceURL, p.DestinationURL, p.Name))
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonApprove, decisionData(actionApprove, p.SourceURL))),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonReject, decisionData(actionReject, p.SourceURL))),
	)
	_, err := m.api.Send(msg)
	return err
}
