// Package lemnos — клиент стороннего API yt.lemnoslife.com, которое отдаёт
// метаданные YouTube-каналов: ссылки из раздела «О канале», id по handle, название.
package lemnos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ytg_go/internal/metrics"
	"ytg_go/pkg/youtube"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL — публичный адрес сервиса.
const DefaultBaseURL = "https://yt.lemnoslife.com/channels"

// ErrNotFound — сервис ответил пустым items.
var ErrNotFound = errors.New("channel not found")

type Config struct {
	BaseURL        string
	Timeout        time.Duration // Таймаут одного HTTP-запроса
	MaxRetries     uint64
	InitialBackoff time.Duration
	RPS            float64 // Ограничение частоты запросов; 0 — без ограничения
	Burst          int
}

func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Timeout:        15 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		RPS:            5,
		Burst:          5,
	}
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		logger:  logger,
	}
}

// LookupLinks возвращает раздел «О канале» или nil. Любая ошибка транспорта
// или разбора логируется и трактуется как «ссылок нет».
func (c *Client) LookupLinks(ctx context.Context, channelID string) *About {
	resp, err := c.fetch(ctx, url.Values{"part": {"about"}, "id": {channelID}})
	if err != nil {
		c.soft("about", channelID, err)
		return nil
	}
	if resp.Items[0].About == nil {
		metrics.Lookups.WithLabelValues("about", "empty").Inc()
		return nil
	}
	metrics.Lookups.WithLabelValues("about", "ok").Inc()
	return resp.Items[0].About
}

// LookupByHandle превращает handle (@name) в каноническую ссылку на канал.
// Пустая строка — канал не найден или сервис недоступен.
func (c *Client) LookupByHandle(ctx context.Context, handle string) string {
	handle = "@" + strings.TrimPrefix(handle, "@")
	resp, err := c.fetch(ctx, url.Values{"part": {"about"}, "handle": {handle}})
	if err != nil {
		c.soft("handle", handle, err)
		return ""
	}
	if resp.Items[0].ID == "" {
		metrics.Lookups.WithLabelValues("handle", "empty").Inc()
		return ""
	}
	metrics.Lookups.WithLabelValues("handle", "ok").Inc()
	return youtube.ChannelURL(resp.Items[0].ID)
}

// LookupName возвращает название канала по первому посту сообщества.
func (c *Client) LookupName(ctx context.Context, channelID string) string {
	resp, err := c.fetch(ctx, url.Values{"part": {"community"}, "id": {channelID}})
	if err != nil {
		c.soft("community", channelID, err)
		return ""
	}
	community := resp.Items[0].Community
	if len(community) == 0 || community[0].ChannelName == "" {
		metrics.Lookups.WithLabelValues("community", "empty").Inc()
		return ""
	}
	metrics.Lookups.WithLabelValues("community", "ok").Inc()
	return community[0].ChannelName
}

func (c *Client) soft(kind, key string, err error) {
	if errors.Is(err, ErrNotFound) {
		metrics.Lookups.WithLabelValues(kind, "not_found").Inc()
		c.logger.Debug("канал не найден в сервисе метаданных", zap.String("kind", kind), zap.String("key", key))
		return
	}
	metrics.Lookups.WithLabelValues(kind, "error").Inc()
	c.logger.Warn("ошибка запроса к сервису метаданных", zap.String("kind", kind), zap.String("key", key), zap.Error(err))
}

// fetch выполняет запрос с ограничением частоты и повторами на временных ошибках.
// Гарантирует непустой Items при nil-ошибке.
func (c *Client) fetch(ctx context.Context, query url.Values) (*Response, error) {
	endpoint := c.cfg.BaseURL + "?" + query.Encode()

	b := backoff.NewExponentialBackOff()
	if c.cfg.InitialBackoff > 0 {
		b.InitialInterval = c.cfg.InitialBackoff
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.cfg.MaxRetries), ctx)

	var out *Response
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.get(ctx, endpoint)
		if err != nil {
			return err
		}
		out = resp
		return nil
	}
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("lemnos: status %d", resp.StatusCode)
	default:
		return nil, backoff.Permanent(fmt.Errorf("lemnos: status %d", resp.StatusCode))
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("lemnos: decode response: %w", err))
	}
	return &out, nil
}
