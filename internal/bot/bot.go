// Package bot — Telegram-бот: меню, поиск каналов по подпискам, заявки на привязку
// и решения модератора.
package bot

import (
	"context"
	"time"

	"ytg_go/internal/chatstate"
	"ytg_go/internal/common"
	"ytg_go/pkg/submission"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	// pollTimeout: таймаут long polling в секундах.
	pollTimeout = 60
	retryDelay  = 3 * time.Second
)

// AuthLinker выдаёт ссылку авторизации Google для чата.
type AuthLinker interface {
	AuthURL(ctx context.Context, chatID int64) (string, error)
}

// Submissions — работа с заявками.
type Submissions interface {
	Submit(ctx context.Context, req submission.Request) (*submission.Outcome, error)
	Approve(ctx context.Context, sourceURL string) (*submission.Outcome, error)
	Reject(ctx context.Context, sourceURL string) (*submission.Outcome, error)
}

type Bot struct {
	api             API
	messenger       *Messenger
	machine         *chatstate.Machine
	auth            AuthLinker
	submissions     Submissions
	moderatorChatID int64
	logger          *zap.Logger
}

func New(api API, messenger *Messenger, machine *chatstate.Machine, auth AuthLinker,
	submissions Submissions, moderatorChatID int64, logger *zap.Logger) *Bot {
	return &Bot{
		api:             api,
		messenger:       messenger,
		machine:         machine,
		auth:            auth,
		submissions:     submissions,
		moderatorChatID: moderatorChatID,
		logger:          logger,
	}
}

// SetCommands публикует команды меню.
func (b *Bot) SetCommands() error {
	_, err := b.api.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Запуск бота и показ главного меню"},
		tgbotapi.BotCommand{Command: "find_channels", Description: "Найти YouTube-каналы в Telegram"},
		tgbotapi.BotCommand{Command: "link_channel", Description: "Связать YouTube-канал с Telegram-каналом"},
		tgbotapi.BotCommand{Command: "faq", Description: "Ответы на вопросы"},
	))
	return err
}

// Run читает обновления до отмены ctx. Обновления разных чатов обрабатываются
// параллельно, одного чата по очереди; перед выходом Run дожидается их завершения.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.SetCommands(); err != nil {
		b.logger.Warn("не удалось установить команды бота", zap.Error(err))
	}

	d := newDispatcher(func(u tgbotapi.Update) { b.HandleUpdate(ctx, u) })
	defer d.Wait()

	offset := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		cfg := tgbotapi.NewUpdate(offset)
		cfg.Timeout = pollTimeout
		updates, err := b.api.GetUpdates(cfg)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Debug("не удалось получить обновления", zap.Error(err))
			if common.Pause(ctx, retryDelay) != nil {
				return nil
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID < offset {
				continue
			}
			offset = update.UpdateID + 1
			d.Dispatch(update)
		}
	}
}

// HandleUpdate разбирает одно обновление.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("паника при обработке обновления", zap.Int("update_id", u.UpdateID), zap.Any("panic", r))
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.Chat != nil:
		if u.Message.IsCommand() {
			b.handleCommand(ctx, u.Message)
			return
		}
		if u.Message.Text != "" {
			b.handleText(ctx, u.Message)
		}
	}
}
