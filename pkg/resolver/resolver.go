// Package resolver сопоставляет подписки пользователя с известными Telegram-каналами
// и дополняет базу новыми каналами, найденными через сервис метаданных.
//
// Согласованность при параллельных поисках обеспечивает уникальный индекс на youtube_url
// и повторное чтение после поиска; блокировок между пользователями нет.
package resolver

import (
	"context"
	"fmt"
	"time"

	"ytg_go/internal/metrics"
	"ytg_go/models"
	"ytg_go/pkg/lemnos"
	"ytg_go/pkg/telegram"
	"ytg_go/pkg/youtube"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers — сколько каналов ищется одновременно.
const DefaultWorkers = 4

// ChannelStore — то, что резолверу нужно от хранилища.
type ChannelStore interface {
	FindBySourceURLs(ctx context.Context, urls []string) ([]models.Channel, error)
	CreateIfAbsent(ctx context.Context, ch models.Channel) (bool, error)
}

// MetadataLookup — мягкий поиск ссылок канала: nil означает «ничего не найдено».
type MetadataLookup interface {
	LookupLinks(ctx context.Context, channelID string) *lemnos.About
}

// DiscoveryNotifier получает каналы, которые добавил именно этот проход.
type DiscoveryNotifier interface {
	NotifyDiscovered(ctx context.Context, ch models.Channel) error
}

// Result — итог сопоставления.
type Result struct {
	Matched   []models.Channel
	Unmatched []models.Subscription
}

type Resolver struct {
	store    ChannelStore
	lookup   MetadataLookup
	notifier DiscoveryNotifier
	workers  int
	logger   *zap.Logger
}

type Option func(*Resolver)

// WithNotifier включает уведомления о новых каналах.
func WithNotifier(n DiscoveryNotifier) Option {
	return func(r *Resolver) { r.notifier = n }
}

// WithWorkers задаёт число одновременных запросов к сервису метаданных.
func WithWorkers(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.workers = n
		}
	}
}

func New(store ChannelStore, lookup MetadataLookup, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{store: store, lookup: lookup, workers: DefaultWorkers, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve делит подписки на найденные и ненайденные, по пути пытаясь найти
// Telegram-ссылку для каждого неизвестного канала. Ошибки поиска по отдельному
// каналу не прерывают проход; ошибкой возвращается только сбой чтения из хранилища.
func (r *Resolver) Resolve(ctx context.Context, subs []models.Subscription) (*Result, error) {
	started := time.Now()
	log := r.logger.With(zap.String("run_id", uuid.NewString()))

	urls := make([]string, 0, len(subs))
	seen := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		u := youtube.ChannelURL(sub.ChannelID)
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	// Первый проход: что уже есть в базе
	known, err := r.store.FindBySourceURLs(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("first pass: %w", err)
	}
	knownURLs := sourceURLSet(known)

	// Каждый неизвестный канал ищется не больше одного раза за проход
	var unknown []models.Subscription
	queued := make(map[string]struct{})
	for _, sub := range subs {
		u := youtube.ChannelURL(sub.ChannelID)
		if _, ok := knownURLs[u]; ok {
			continue
		}
		if _, ok := queued[u]; ok {
			continue
		}
		queued[u] = struct{}{}
		unknown = append(unknown, sub)
	}
	log.Info("первый проход завершён",
		zap.Int("subscriptions", len(subs)), zap.Int("known", len(known)), zap.Int("unknown", len(unknown)))

	r.discover(ctx, log, unknown)

	// Второй проход: всё, что добавили мы и параллельные поиски
	final, err := r.store.FindBySourceURLs(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("second pass: %w", err)
	}
	finalURLs := sourceURLSet(final)

	res := &Result{Matched: final}
	for _, sub := range subs {
		if _, ok := finalURLs[youtube.ChannelURL(sub.ChannelID)]; !ok {
			res.Unmatched = append(res.Unmatched, sub)
		}
	}

	metrics.Resolutions.Observe(time.Since(started).Seconds())
	log.Info("сопоставление завершено",
		zap.Int("matched", len(res.Matched)), zap.Int("unmatched", len(res.Unmatched)),
		zap.Duration("took", time.Since(started)))
	return res, nil
}

// discover ищет ссылки для неизвестных каналов. Горутины никогда не возвращают
// ошибку, поэтому сбой одного канала не отменяет остальные.
func (r *Resolver) discover(ctx context.Context, log *zap.Logger, unknown []models.Subscription) {
	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, sub := range unknown {
		g.Go(func() error {
			r.discoverOne(ctx, log, sub)
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Resolver) discoverOne(ctx context.Context, log *zap.Logger, sub models.Subscription) {
	sourceURL := youtube.ChannelURL(sub.ChannelID)

	about := r.lookup.LookupLinks(ctx, sub.ChannelID)
	if about == nil {
		return
	}
	link := telegram.ExtractDestinationLink(about.Links)
	if link == "" {
		return
	}

	ch := models.Channel{
		Name:           sub.Title,
		SourceURL:      sourceURL,
		DestinationURL: link,
		RequestCount:   0,
	}
	created, err := r.store.CreateIfAbsent(ctx, ch)
	if err != nil {
		log.Error("не удалось сохранить найденный канал", zap.String("youtube_url", sourceURL), zap.Error(err))
		return
	}
	if !created {
		// Канал уже добавил параллельный поиск
		log.Debug("канал уже существует", zap.String("youtube_url", sourceURL))
		return
	}

	metrics.Discovered.Inc()
	log.Info("найден новый канал", zap.String("youtube_url", sourceURL), zap.String("telegram_url", link))
	if r.notifier != nil {
		if err := r.notifier.NotifyDiscovered(ctx, ch); err != nil {
			log.Warn("не удалось уведомить модератора", zap.String("youtube_url", sourceURL), zap.Error(err))
		}
	}
}

func sourceURLSet(list []models.Channel) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, ch := range list {
		set[ch.SourceURL] = struct{}{}
	}
	return set
}
