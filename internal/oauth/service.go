// Package oauth связывает чат с авторизацией Google: выдаёт ссылку на согласие,
// принимает редирект и в фоне ищет Telegram-каналы по подпискам пользователя.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ytg_go/internal/chatlock"
	"ytg_go/models"
	"ytg_go/pkg/report"
	"ytg_go/pkg/resolver"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrBusy — для этого чата поиск уже идёт.
var ErrBusy = errors.New("search already running for chat")

// Tokens — одноразовые токены state.
type Tokens interface {
	IssueToken(ctx context.Context, chatID int64) (string, error)
	ConsumeToken(ctx context.Context, token string) (int64, error)
}

// Provider — источник подписок пользователя.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	ListSubscriptions(ctx context.Context, token *oauth2.Token) ([]models.Subscription, error)
}

type Resolver interface {
	Resolve(ctx context.Context, subs []models.Subscription) (*resolver.Result, error)
}

// Delivery отправляет результаты в чат.
type Delivery interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPages(ctx context.Context, chatID int64, label string, pages []string)
}

type Service struct {
	tokens    Tokens
	provider  Provider
	resolver  Resolver
	delivery  Delivery
	formatter report.Formatter
	guard     *chatlock.Guard
	logger    *zap.Logger

	// Корневой контекст фоновых поисков: не зависит от HTTP-запроса.
	baseCtx context.Context
	wg      sync.WaitGroup
}

func NewService(ctx context.Context, tokens Tokens, provider Provider, res Resolver, delivery Delivery,
	formatter report.Formatter, guard *chatlock.Guard, logger *zap.Logger) *Service {
	return &Service{
		tokens:    tokens,
		provider:  provider,
		resolver:  res,
		delivery:  delivery,
		formatter: formatter,
		guard:     guard,
		logger:    logger,
		baseCtx:   ctx,
	}
}

// AuthURL выдаёт ссылку на согласие Google, привязанную к чату через токен state.
func (s *Service) AuthURL(ctx context.Context, chatID int64) (string, error) {
	state, err := s.tokens.IssueToken(ctx, chatID)
	if err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(state), nil
}

// Complete обменивает код на токен и запускает поиск в фоне. Возвращает чат,
// которому уйдёт отчёт.
func (s *Service) Complete(ctx context.Context, state, code string) (int64, error) {
	chatID, err := s.tokens.ConsumeToken(ctx, state)
	if err != nil {
		return 0, fmt.Errorf("state: %w", err)
	}
	token, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return chatID, fmt.Errorf("exchange code: %w", err)
	}
	if err := s.guard.Lock(chatID); err != nil {
		_ = s.delivery.SendText(ctx, chatID, "Поиск уже выполняется. Дождитесь результата.")
		return chatID, ErrBusy
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.guard.Unlock(chatID)
		s.search(s.baseCtx, chatID, token)
	}()
	return chatID, nil
}

// Wait дожидается завершения фоновых поисков.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) search(ctx context.Context, chatID int64, token *oauth2.Token) {
	log := s.logger.With(zap.Int64("chat_id", chatID))
	_ = s.delivery.SendText(ctx, chatID, "Авторизация прошла успешно. Ищем каналы, это займёт около минуты.")

	subs, err := s.provider.ListSubscriptions(ctx, token)
	if err != nil {
		log.Error("не удалось получить подписки", zap.Error(err))
		_ = s.delivery.SendText(ctx, chatID, "Не удалось получить список подписок. Попробуйте позже.")
		return
	}
	log.Info("получены подписки", zap.Int("count", len(subs)))

	res, err := s.resolver.Resolve(ctx, subs)
	if err != nil {
		log.Error("ошибка сопоставления подписок", zap.Error(err))
		_ = s.delivery.SendText(ctx, chatID, "Произошла ошибка при поиске каналов. Попробуйте позже.")
		return
	}

	r := s.formatter.Format(res.Matched, res.Unmatched)
	s.delivery.SendPages(ctx, chatID, report.FoundHeader, r.Found)
	s.delivery.SendPages(ctx, chatID, report.NotFoundHeader, r.NotFound)
}
