// Package submission ведёт заявки пользователей на привязку YouTube-канала к Telegram-каналу:
// приём в очередь модерации, одобрение и отклонение.
package submission

import (
	"context"
	"errors"
	"fmt"

	"ytg_go/internal/metrics"
	"ytg_go/models"
	"ytg_go/pkg/storage"
	"ytg_go/pkg/telegram"
	"ytg_go/pkg/youtube"

	"go.uber.org/zap"
)

// Status — итог операции. Все статусы кроме ошибок инфраструктуры показываются пользователю.
type Status int

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
	StatusAlreadyExists
	StatusAlreadyPending
	StatusNotFound
	StatusInvalidSource
	StatusSourceNotFound
	StatusInvalidDestination
	StatusDestinationNotFound
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusAlreadyExists:
		return "already_exists"
	case StatusAlreadyPending:
		return "already_pending"
	case StatusNotFound:
		return "not_found"
	case StatusInvalidSource:
		return "invalid_source"
	case StatusSourceNotFound:
		return "source_not_found"
	case StatusInvalidDestination:
		return "invalid_destination"
	case StatusDestinationNotFound:
		return "destination_not_found"
	default:
		return "unknown"
	}
}

// Outcome — статус и текст для пользователя или модератора.
type Outcome struct {
	Status  Status
	Message string
	Channel *models.PendingChannel
}

// Request — заявка из чата.
type Request struct {
	YouTubeURL  string
	TelegramURL string
	SubmittedBy int64
}

// Store — операции хранилища, нужные заявкам.
type Store interface {
	FindBySourceURL(ctx context.Context, url string) (*models.Channel, error)
	FindPendingBySourceURL(ctx context.Context, url string) (*models.PendingChannel, error)
	CreatePending(ctx context.Context, p models.PendingChannel) (bool, error)
	DeletePending(ctx context.Context, url string) (bool, error)
	ApprovePending(ctx context.Context, url string) (*models.PendingChannel, bool, error)
	ListPending(ctx context.Context) ([]models.PendingChannel, error)
}

// Lookup — мягкие запросы к сервису метаданных: пустая строка означает «не найдено».
type Lookup interface {
	LookupByHandle(ctx context.Context, handle string) string
	LookupName(ctx context.Context, channelID string) string
}

// DestinationVerifier проверяет существование Telegram-канала.
type DestinationVerifier interface {
	Verify(ctx context.Context, link string) (*telegram.ChannelInfo, error)
}

// Notifier сообщает модератору о новой заявке.
type Notifier interface {
	NotifySubmission(ctx context.Context, p models.PendingChannel) error
}

type Workflow struct {
	store    Store
	lookup   Lookup
	verifier DestinationVerifier
	notifier Notifier
	logger   *zap.Logger
}

type Option func(*Workflow)

// WithVerifier включает проверку Telegram-канала через MTProto.
func WithVerifier(v DestinationVerifier) Option {
	return func(w *Workflow) { w.verifier = v }
}

func WithNotifier(n Notifier) Option {
	return func(w *Workflow) { w.notifier = n }
}

func New(store Store, lookup Lookup, logger *zap.Logger, opts ...Option) *Workflow {
	w := &Workflow{store: store, lookup: lookup, logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func outcome(s Status, msg string) *Outcome {
	metrics.Submissions.WithLabelValues(s.String()).Inc()
	return &Outcome{Status: s, Message: msg}
}

// Submit ставит связку в очередь модерации. Заявка отклоняется, если канал уже
// привязан или уже ждёт модерации.
func (w *Workflow) Submit(ctx context.Context, req Request) (*Outcome, error) {
	destination, ok := telegram.NormalizeLink(req.TelegramURL)
	if !ok {
		return outcome(StatusInvalidDestination,
			"Ссылка на Telegram-канал должна вести на t.me. Пожалуйста, проверьте URL и попробуйте снова."), nil
	}

	youtubeURL := req.YouTubeURL
	if handle, ok := youtube.ParseHandle(youtubeURL); ok {
		youtubeURL = w.lookup.LookupByHandle(ctx, handle)
		if youtubeURL == "" {
			return outcome(StatusSourceNotFound,
				"Не удалось преобразовать username в стандартный URL. Пожалуйста, проверьте URL и попробуйте снова."), nil
		}
	}
	channelID, ok := youtube.ParseChannelID(youtubeURL)
	if !ok {
		return outcome(StatusInvalidSource,
			"Не удалось извлечь идентификатор канала из URL. Пожалуйста, проверьте URL и попробуйте снова."), nil
	}
	sourceURL := youtube.ChannelURL(channelID)

	_, err := w.store.FindBySourceURL(ctx, sourceURL)
	switch {
	case err == nil:
		return outcome(StatusAlreadyExists, "Этот YouTube-канал уже привязан к Telegram-каналу."), nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("check channel: %w", err)
	}
	_, err = w.store.FindPendingBySourceURL(ctx, sourceURL)
	switch {
	case err == nil:
		return outcome(StatusAlreadyPending, "Заявка на этот канал уже ожидает модерации."), nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("check pending: %w", err)
	}

	if w.verifier != nil {
		info, err := w.verifier.Verify(ctx, destination)
		switch {
		case errors.Is(err, telegram.ErrChannelNotFound):
			return outcome(StatusDestinationNotFound,
				"Telegram-канал не найден. Пожалуйста, проверьте ссылку и попробуйте снова."), nil
		case err != nil:
			// Проверка недоступна: заявку всё равно увидит модератор
			w.logger.Warn("не удалось проверить Telegram-канал", zap.String("telegram_url", destination), zap.Error(err))
		default:
			w.logger.Debug("Telegram-канал подтверждён", zap.String("telegram_url", destination), zap.String("title", info.Title))
		}
	}

	name := w.lookup.LookupName(ctx, channelID)
	if name == "" {
		return outcome(StatusSourceNotFound,
			"Не удалось найти канал на YouTube. Пожалуйста, проверьте URL и попробуйте снова."), nil
	}

	p := models.PendingChannel{
		Name:           name,
		SourceURL:      sourceURL,
		DestinationURL: destination,
		SubmittedBy:    req.SubmittedBy,
	}
	created, err := w.store.CreatePending(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create pending: %w", err)
	}
	if !created {
		return outcome(StatusAlreadyPending, "Заявка на этот канал уже ожидает модерации."), nil
	}

	w.logger.Info("новая заявка на привязку",
		zap.String("youtube_url", sourceURL), zap.String("telegram_url", destination), zap.Int64("submitted_by", req.SubmittedBy))
	if w.notifier != nil {
		if err := w.notifier.NotifySubmission(ctx, p); err != nil {
			w.logger.Warn("не удалось уведомить модератора о заявке", zap.String("youtube_url", sourceURL), zap.Error(err))
		}
	}
	out := outcome(StatusPending, "Спасибо! Информация отправлена на модерацию.")
	out.Channel = &p
	return out, nil
}

// Approve переносит заявку в подтверждённые каналы. Если канал уже есть,
// заявка остаётся, и модератор может её отклонить.
func (w *Workflow) Approve(ctx context.Context, sourceURL string) (*Outcome, error) {
	p, promoted, err := w.store.ApprovePending(ctx, sourceURL)
	if errors.Is(err, storage.ErrNotFound) {
		return outcome(StatusNotFound, "Не удалось найти канал для одобрения."), nil
	}
	if err != nil {
		return nil, fmt.Errorf("approve pending: %w", err)
	}
	if !promoted {
		return outcome(StatusAlreadyExists, fmt.Sprintf("Канал с URL %q уже существует.", sourceURL)), nil
	}
	w.logger.Info("заявка одобрена", zap.String("youtube_url", sourceURL))
	out := outcome(StatusApproved, fmt.Sprintf("Канал %q успешно добавлен.", p.Name))
	out.Channel = p
	return out, nil
}

// Reject удаляет заявку без переноса.
func (w *Workflow) Reject(ctx context.Context, sourceURL string) (*Outcome, error) {
	deleted, err := w.store.DeletePending(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("delete pending: %w", err)
	}
	if !deleted {
		return outcome(StatusNotFound, "Не удалось найти канал для удаления."), nil
	}
	w.logger.Info("заявка отклонена", zap.String("youtube_url", sourceURL))
	return outcome(StatusRejected, fmt.Sprintf("Канал с URL %q успешно удалён.", sourceURL)), nil
}

func (w *Workflow) ListPending(ctx context.Context) ([]models.PendingChannel, error) {
	return w.store.ListPending(ctx)
}
