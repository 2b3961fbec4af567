package bot

import (
	"context"

	"ytg_go/internal/chatstate"
	"ytg_go/pkg/submission"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		_ = b.machine.Reset(ctx, chatID)
		b.sendStart(chatID)
	case "find_channels":
		b.sendAuthLink(ctx, chatID)
	case "link_channel":
		b.startLinking(ctx, chatID)
	case "faq":
		reply := tgbotapi.NewMessage(chatID, textFAQ)
		reply.ParseMode = tgbotapi.ModeMarkdown
		b.send(reply)
	default:
		b.logger.Debug("неизвестная команда", zap.String("command", msg.Command()), zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Debug("не удалось ответить на нажатие", zap.Error(err))
	}
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID := q.Message.Chat.ID

	switch q.Data {
	case actionFindChannels:
		b.sendAuthLink(ctx, chatID)
		return
	case actionLinkChannel:
		b.startLinking(ctx, chatID)
		return
	}

	action, sourceURL, ok := parseDecision(q.Data)
	if !ok {
		b.logger.Warn("неизвестные данные кнопки", zap.String("data", q.Data))
		return
	}
	if chatID != b.moderatorChatID {
		b.logger.Warn("решение по заявке не из чата модератора", zap.Int64("chat_id", chatID))
		_ = b.messenger.SendText(ctx, chatID, textModeratorOnly)
		return
	}

	decide := b.submissions.Approve
	if action == actionReject {
		decide = b.submissions.Reject
	}
	out, err := decide(ctx, sourceURL)
	if err != nil {
		b.logger.Error("ошибка решения по заявке", zap.String("action", action), zap.String("youtube_url", sourceURL), zap.Error(err))
		_ = b.messenger.SendText(ctx, chatID, textRequestFailed)
		return
	}
	_ = b.messenger.SendText(ctx, chatID, out.Message)
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	step, err := b.machine.Handle(ctx, chatID, msg.Text)
	if err != nil {
		b.logger.Error("не удалось прочитать состояние диалога", zap.Int64("chat_id", chatID), zap.Error(err))
		_ = b.messenger.SendText(ctx, chatID, textRequestFailed)
		return
	}

	switch step.Kind {
	case chatstate.StepAskTelegram:
		_ = b.messenger.SendText(ctx, chatID, textAskTelegramURL)
	case chatstate.StepSubmit:
		var from int64
		if msg.From != nil {
			from = msg.From.ID
		}
		out, err := b.submissions.Submit(ctx, submission.Request{
			YouTubeURL:  step.YouTubeURL,
			TelegramURL: step.TelegramURL,
			SubmittedBy: from,
		})
		if err != nil {
			b.logger.Error("ошибка обработки заявки", zap.Int64("chat_id", chatID), zap.Error(err))
			_ = b.messenger.SendText(ctx, chatID, textRequestFailed)
			return
		}
		_ = b.messenger.SendText(ctx, chatID, out.Message)
	}
}

func (b *Bot) sendStart(chatID int64) {
	reply := tgbotapi.NewMessage(chatID, textStart)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonFindChannels, actionFindChannels)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(buttonLinkChannel, actionLinkChannel)),
	)
	b.send(reply)
}

func (b *Bot) sendAuthLink(ctx context.Context, chatID int64) {
	url, err := b.auth.AuthURL(ctx, chatID)
	if err != nil {
		b.logger.Error("не удалось выдать ссылку авторизации", zap.Int64("chat_id", chatID), zap.Error(err))
		_ = b.messenger.SendText(ctx, chatID, textRequestFailed)
		return
	}
	reply := tgbotapi.NewMessage(chatID, textFindChannels)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(buttonAuthorize, url)),
	)
	b.send(reply)
}

func (b *Bot) startLinking(ctx context.Context, chatID int64) {
	if err := b.machine.StartLinking(ctx, chatID); err != nil {
		b.logger.Error("не удалось начать диалог привязки", zap.Int64("chat_id", chatID), zap.Error(err))
		_ = b.messenger.SendText(ctx, chatID, textRequestFailed)
		return
	}
	_ = b.messenger.SendText(ctx, chatID, textAskYouTubeURL)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("не удалось отправить сообщение", zap.Int64("chat_id", msg.ChatID), zap.Error(err))
	}
}
