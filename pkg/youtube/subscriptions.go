// Package youtube получает подписки пользователя через YouTube Data API
// и работает с каноническими ссылками на каналы.
package youtube

import (
	"context"
	"fmt"

	"ytg_go/models"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// pageSize — максимум, который YouTube отдаёт за один запрос подписок.
const pageSize = 50

// Client выдаёт ссылку на авторизацию, обменивает код на токен и читает подписки.
type Client struct {
	oauth    *oauth2.Config
	endpoint string
	logger   *zap.Logger
}

// NewOAuthConfig разбирает credentials.json (раздел "web") из Google Cloud Console.
func NewOAuthConfig(credentialsJSON []byte, redirectURL string) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(credentialsJSON, yt.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	if redirectURL != "" {
		cfg.RedirectURL = redirectURL
	}
	return cfg, nil
}

func NewClient(cfg *oauth2.Config, logger *zap.Logger) *Client {
	return &Client{oauth: cfg, logger: logger}
}

// WithEndpoint переопределяет адрес API (используется в тестах).
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

// AuthCodeURL возвращает ссылку на экран согласия Google.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange обменивает код из редиректа на токен доступа.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return c.oauth.Exchange(ctx, code)
}

// ListSubscriptions читает все страницы подписок пользователя.
func (c *Client) ListSubscriptions(ctx context.Context, token *oauth2.Token) ([]models.Subscription, error) {
	opts := []option.ClientOption{option.WithHTTPClient(c.oauth.Client(ctx, token))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	var subs []models.Subscription
	call := svc.Subscriptions.List([]string{"snippet"}).Mine(true).MaxResults(pageSize)
	err = call.Pages(ctx, func(resp *yt.SubscriptionListResponse) error {
		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil || item.Snippet.ResourceId.ChannelId == "" {
				continue
			}
			subs = append(subs, models.Subscription{
				Title:     item.Snippet.Title,
				ChannelID: item.Snippet.ResourceId.ChannelId,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	c.logger.Info("получены подписки", zap.Int("count", len(subs)))
	return subs, nil
}
