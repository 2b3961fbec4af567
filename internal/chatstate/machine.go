// Package chatstate ведёт пошаговый диалог привязки канала и хранит токены OAuth,
// по которым ответ Google сопоставляется с чатом.
package chatstate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle                State = ""
	StateAwaitingYouTubeURL  State = "awaiting_youtube_url"
	StateAwaitingTelegramURL State = "awaiting_telegram_url"
)

// Session — состояние диалога одного чата.
type Session struct {
	State      State  `json:"state"`
	YouTubeURL string `json:"youtube_url,omitempty"`
}

// StepKind — что боту сделать с очередным сообщением.
type StepKind int

const (
	// StepIgnored: сообщение вне диалога.
	StepIgnored StepKind = iota
	// StepAskTelegram: ссылка на YouTube принята, нужна ссылка на Telegram.
	StepAskTelegram
	// StepSubmit: обе ссылки собраны, диалог завершён.
	StepSubmit
)

type Step struct {
	Kind        StepKind
	YouTubeURL  string
	TelegramURL string
}

// Machine ведёт диалоги чатов. Переходы (чтение и запись состояния)
// выполняются под mu, поэтому два сообщения не перепишут друг друга.
type Machine struct {
	mu    sync.Mutex
	store Store
}

func NewMachine(store Store) *Machine {
	return &Machine{store: store}
}

// StartLinking переводит чат в ожидание ссылки на YouTube, сбрасывая прежний диалог.
func (m *Machine) StartLinking(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Put(ctx, chatID, Session{State: StateAwaitingYouTubeURL})
}

// Reset возвращает чат в исходное состояние.
func (m *Machine) Reset(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(ctx, chatID)
}

// Handle продвигает диалог на одно сообщение.
func (m *Machine) Handle(ctx context.Context, chatID int64, text string) (Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.Get(ctx, chatID)
	if err != nil {
		return Step{}, err
	}
	text = strings.TrimSpace(text)

	switch s.State {
	case StateAwaitingYouTubeURL:
		next := Session{State: StateAwaitingTelegramURL, YouTubeURL: text}
		if err := m.store.Put(ctx, chatID, next); err != nil {
			return Step{}, err
		}
		return Step{Kind: StepAskTelegram, YouTubeURL: text}, nil
	case StateAwaitingTelegramURL:
		if err := m.store.Delete(ctx, chatID); err != nil {
			return Step{}, err
		}
		return Step{Kind: StepSubmit, YouTubeURL: s.YouTubeURL, TelegramURL: text}, nil
	default:
		return Step{Kind: StepIgnored}, nil
	}
}

// IssueToken выдаёт одноразовый токен state для ссылки авторизации.
func (m *Machine) IssueToken(ctx context.Context, chatID int64) (string, error) {
	token := uuid.NewString()
	if err := m.store.PutToken(ctx, token, chatID); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return token, nil
}

// ConsumeToken возвращает чат по токену; повторное использование даёт ErrTokenNotFound.
func (m *Machine) ConsumeToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrTokenNotFound
	}
	return m.store.TakeToken(ctx, token)
}
