package chatstate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrTokenNotFound — токена нет, он истёк или уже использован.
var ErrTokenNotFound = errors.New("oauth state token not found")

// Store хранит состояние диалогов и одноразовые токены OAuth.
type Store interface {
	// Get возвращает пустую сессию, если для чата ничего не сохранено.
	Get(ctx context.Context, chatID int64) (Session, error)
	Put(ctx context.Context, chatID int64, s Session) error
	Delete(ctx context.Context, chatID int64) error
	PutToken(ctx context.Context, token string, chatID int64) error
	// TakeToken возвращает чат токена и удаляет токен.
	TakeToken(ctx context.Context, token string) (int64, error)
}

type memEntry struct {
	session Session
	expires time.Time
}

type memToken struct {
	chatID  int64
	expires time.Time
}

// MemoryStore — хранилище в памяти процесса для запуска без Redis.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]memEntry
	tokens   map[string]memToken
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[int64]memEntry),
		tokens:   make(map[string]memToken),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[chatID]
	if !ok || m.now().After(e.expires) {
		delete(m.sessions, chatID)
		return Session{}, nil
	}
	return e.session, nil
}

func (m *MemoryStore) Put(_ context.Context, chatID int64, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[chatID] = memEntry{session: s, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

func (m *MemoryStore) PutToken(_ context.Context, token string, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = memToken{chatID: chatID, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) TakeToken(_ context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	delete(m.tokens, token)
	if !ok || m.now().After(t.expires) {
		return 0, ErrTokenNotFound
	}
	return t.chatID, nil
}

// RedisStore хранит сессии в Redis в виде JSON с TTL, чтобы диалоги переживали перезапуск.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "ytg:"}
}

func (r *RedisStore) sessionKey(chatID int64) string {
	return r.prefix + "chat:" + strconv.FormatInt(chatID, 10)
}

func (r *RedisStore) tokenKey(token string) string {
	return r.prefix + "oauth:" + token
}

func (r *RedisStore) Get(ctx context.Context, chatID int64) (Session, error) {
	raw, err := r.client.Get(ctx, r.sessionKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

func (r *RedisStore) Put(ctx context.Context, chatID int64, s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.sessionKey(chatID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, chatID int64) error {
	return r.client.Del(ctx, r.sessionKey(chatID)).Err()
}

func (r *RedisStore) PutToken(ctx context.Context, token string, chatID int64) error {
	return r.client.Set(ctx, r.tokenKey(token), chatID, r.ttl).Err()
}

func (r *RedisStore) TakeToken(ctx context.Context, token string) (int64, error) {
	chatID, err := r.client.GetDel(ctx, r.tokenKey(token)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("take token: %w", err)
	}
	return chatID, nil
}
