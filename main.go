package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ytg_go/internal/bot"
	"ytg_go/internal/chatlock"
	"ytg_go/internal/chatstate"
	"ytg_go/internal/config"
	"ytg_go/internal/logger"
	"ytg_go/internal/metrics"
	"ytg_go/internal/middleware"
	"ytg_go/internal/moderation"
	"ytg_go/internal/oauth"
	"ytg_go/pkg/lemnos"
	"ytg_go/pkg/report"
	"ytg_go/pkg/resolver"
	"ytg_go/pkg/storage"
	"ytg_go/pkg/submission"
	"ytg_go/pkg/telegram"
	"ytg_go/pkg/youtube"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("сервис остановлен с ошибкой", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация подключения к БД и схемы
	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	states, closeStates, err := newStateStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStates()
	machine := chatstate.NewMachine(states)

	api, err := bot.NewAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	messenger := bot.NewMessenger(api, cfg.ModeratorChatID, cfg.PagePause, log.Named("messenger"))

	lookupCfg := lemnos.DefaultConfig()
	lookupCfg.BaseURL = cfg.LemnosAPIURL
	lookupCfg.Timeout = cfg.LookupTimeout
	lookupCfg.RPS = cfg.LookupRPS
	lookupCfg.MaxRetries = cfg.LookupRetries
	lookup := lemnos.New(lookupCfg, log.Named("lemnos"))

	res := resolver.New(db, lookup, log.Named("resolver"),
		resolver.WithNotifier(messenger), resolver.WithWorkers(cfg.DiscoveryWorkers))

	wfOpts := []submission.Option{submission.WithNotifier(messenger)}
	if cfg.VerifierEnabled() {
		verifier, err := newVerifier(cfg, db, log)
		if err != nil {
			return err
		}
		wfOpts = append(wfOpts, submission.WithVerifier(verifier))
	}
	workflow := submission.New(db, lookup, log.Named("submission"), wfOpts...)

	credentials, err := os.ReadFile(cfg.GoogleCredentialsPath)
	if err != nil {
		return fmt.Errorf("read google credentials: %w", err)
	}
	oauthCfg, err := youtube.NewOAuthConfig(credentials, cfg.OAuthRedirectURL)
	if err != nil {
		return err
	}
	yt := youtube.NewClient(oauthCfg, log.Named("youtube"))

	auth := oauth.NewService(ctx, machine, yt, res, messenger,
		report.New(cfg.PageLimit), chatlock.New(log.Named("chatlock")), log.Named("oauth"))
	defer auth.Wait()

	b := bot.New(api, messenger, machine, auth, workflow, cfg.ModeratorChatID, log.Named("bot"))
	botDone := make(chan error, 1)
	go func() { botDone <- b.Run(ctx) }()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, auth, workflow, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvDone := make(chan error, 1)
	go func() {
		log.Info("запуск HTTP-сервера", zap.String("addr", srv.Addr), zap.Bool("tls", cfg.TLSEnabled()))
		if cfg.TLSEnabled() {
			srvDone <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		srvDone <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("получен сигнал остановки")
	case err := <-srvDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("ошибка остановки HTTP-сервера", zap.Error(err))
	}
	stop()

	// Long polling может висеть до таймаута запроса: долго не ждём
	select {
	case err := <-botDone:
		return err
	case <-time.After(5 * time.Second):
		log.Warn("бот не завершился вовремя")
		return nil
	}
}

// setupRouter регистрирует маршруты OAuth, модерации, проверки здоровья и метрик.
func setupRouter(cfg *config.Config, auth *oauth.Service, workflow *submission.Workflow, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	oauth.SetupRoutes(r, auth, log.Named("oauth"))

	moderationGroup := r.Group("/moderation", middleware.AuthRequired(cfg.ModerationToken))
	moderation.SetupRoutes(moderationGroup, workflow, log.Named("moderation"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	log.Info("маршруты зарегистрированы",
		zap.Strings("routes", []string{"GET /oauth2callback", "GET /moderation/pending",
			"POST /moderation/approve", "POST /moderation/reject", "GET /health", "GET /metrics"}))
	return r
}

// newStateStore выбирает Redis, если задан REDIS_ADDR, иначе хранит диалоги в памяти.
func newStateStore(cfg *config.Config, log *zap.Logger) (chatstate.Store, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("состояние диалогов хранится в памяти")
		return chatstate.NewMemoryStore(cfg.StateTTL), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info("состояние диалогов хранится в Redis", zap.String("addr", cfg.RedisAddr))
	return chatstate.NewRedisStore(client, cfg.StateTTL), func() { _ = client.Close() }, nil
}

func newVerifier(cfg *config.Config, db *storage.DB, log *zap.Logger) (*telegram.Verifier, error) {
	botID, err := telegram.BotIDFromToken(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	sessions := &storage.TelegramSessionStorage{DB: db.Conn, BotID: botID, Logger: log.Named("session")}
	return telegram.NewVerifier(telegram.VerifierConfig{
		APIID:    cfg.TelegramAPIID,
		APIHash:  cfg.TelegramAPIHash,
		BotToken: cfg.BotToken,
		Proxy:    cfg.VerifierProxy,
	}, sessions, log.Named("verifier")), nil
}
