// Package telegram работает со ссылками на Telegram-каналы: поиск ссылки в метаданных
// YouTube и проверка существования канала через MTProto от имени бота.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ytg_go/models"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

var (
	// ErrChannelNotFound: username не занят или принадлежит не каналу.
	ErrChannelNotFound = errors.New("telegram channel not found")
	// ErrUnverifiable: ссылку нельзя проверить (приглашение в закрытый канал).
	ErrUnverifiable = errors.New("telegram link cannot be verified")
)

// verifyTimeout ограничивает одну проверку вместе с подключением к MTProto.
const verifyTimeout = 30 * time.Second

// ChannelInfo — то, что удалось узнать о канале.
type ChannelInfo struct {
	ID       int64
	Title    string
	Username string
}

// VerifierConfig — параметры MTProto-приложения и бота.
type VerifierConfig struct {
	APIID    int
	APIHash  string
	BotToken string
	Proxy    *models.Proxy
}

// Verifier проверяет, что ссылка ведёт на существующий публичный канал.
type Verifier struct {
	cfg     VerifierConfig
	storage session.Storage
	logger  *zap.Logger
	// Одна MTProto-сессия бота на процесс: запуски клиента идут по очереди.
	mu sync.Mutex
}

func NewVerifier(cfg VerifierConfig, storage session.Storage, logger *zap.Logger) *Verifier {
	if storage == nil {
		storage = &session.StorageMemory{}
	}
	return &Verifier{cfg: cfg, storage: storage, logger: logger}
}

// BotIDFromToken извлекает ID бота из токена вида 123456:ABC...
func BotIDFromToken(token string) (int64, error) {
	id, _, ok := strings.Cut(token, ":")
	if !ok {
		return 0, fmt.Errorf("invalid bot token format")
	}
	return strconv.ParseInt(id, 10, 64)
}

// ExtractUsername извлекает username из ссылки на канал.
func ExtractUsername(link string) (string, error) {
	link, ok := NormalizeLink(link)
	if !ok {
		return "", fmt.Errorf("invalid URL format")
	}
	username := strings.TrimPrefix(link, "https://"+LinkMarker)
	username, _, _ = strings.Cut(username, "/")
	username, _, _ = strings.Cut(username, "?")
	if username == "" || strings.HasPrefix(username, "+") || username == "joinchat" {
		return "", ErrUnverifiable
	}
	return username, nil
}

// findBroadcast находит вещательный канал в списке чатов.
func findBroadcast(chats []tg.ChatClass) (*tg.Channel, error) {
	for _, peer := range chats {
		if ch, ok := peer.(*tg.Channel); ok {
			// Группы и обсуждения не подходят
			if ch.Megagroup {
				continue
			}
			if ch.Broadcast {
				return ch, nil
			}
		}
	}
	return nil, ErrChannelNotFound
}

// newClient создаёт MTProto-клиент с хранилищем сессии и, при необходимости, SOCKS5-прокси.
func (v *Verifier) newClient() (*telegram.Client, error) {
	opts := telegram.Options{SessionStorage: v.storage}
	if p := v.cfg.Proxy; p != nil {
		addr := fmt.Sprintf("%s:%d", p.IP, p.Port)
		var auth *proxy.Auth
		if p.Login != "" || p.Password != "" {
			auth = &proxy.Auth{User: p.Login, Password: p.Password}
		}
		d, err := proxy.SOCKS5("tcp", addr, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("proxy dialer: %w", err)
		}
		dc, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("proxy dialer missing context")
		}
		opts.Resolver = dcs.Plain(dcs.PlainOptions{Dial: dc.DialContext})
		v.logger.Info("проверка каналов через прокси", zap.String("addr", addr))
	}
	return telegram.NewClient(v.cfg.APIID, v.cfg.APIHash, opts), nil
}

// Verify разрешает username из ссылки и убеждается, что это публичный канал.
func (v *Verifier) Verify(ctx context.Context, link string) (*ChannelInfo, error) {
	username, err := ExtractUsername(link)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	client, err := v.newClient()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	var info *ChannelInfo
	err = client.Run(ctx, func(ctx context.Context) error {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !status.Authorized {
			if _, err := client.Auth().Bot(ctx, v.cfg.BotToken); err != nil {
				return fmt.Errorf("bot auth: %w", err)
			}
		}

		api := tg.NewClient(client)
		resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
		if err != nil {
			if tgerr.Is(err, "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID") {
				return ErrChannelNotFound
			}
			return err
		}
		ch, err := findBroadcast(resolved.GetChats())
		if err != nil {
			return err
		}
		info = &ChannelInfo{ID: ch.ID, Title: ch.Title, Username: ch.Username}
		return nil
	})
	if err != nil {
		return nil, err
	}
	v.logger.Debug("канал подтверждён", zap.String("username", username), zap.String("title", info.Title))
	return info, nil
}
