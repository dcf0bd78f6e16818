package app

import (
	"context"
	"feedloader/internal/adapter/fetcher"
	"feedloader/internal/adapter/parser"
	"feedloader/internal/cache"
	"feedloader/internal/config"
	"feedloader/internal/domain"
	"feedloader/internal/engine"
	"feedloader/internal/metrics"
	"feedloader/internal/migrations"
	"feedloader/internal/usecase"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// Loader собирает движки лент из конфигурации: общий HTTP-клиент с таймаутом,
// выбранное хранилище кэша и метрики.
type Loader struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	fetcher *fetcher.TimeoutFetcher
	cache   cache.Store
	pool    *pgxpool.Pool
}

// NewLoader подключает хранилище кэша, указанное в cfg.Cache.Backend.
// reg может быть nil, тогда метрики не собираются.
func NewLoader(ctx context.Context, cfg *config.Config, log *slog.Logger, reg prometheus.Registerer) (*Loader, error) {
	l := &Loader{
		cfg:     cfg,
		log:     log.With(slog.String("component", "loader")),
		fetcher: fetcher.NewTimeoutFetcher(&http.Client{}, cfg.Engine.Timeout(), log),
	}
	if reg != nil {
		l.metrics = metrics.New(reg)
	}
	store, err := l.openCache(ctx)
	if err != nil {
		return nil, err
	}
	l.cache = store
	return l, nil
}

func (l *Loader) openCache(ctx context.Context) (cache.Store, error) {
	c := l.cfg.Cache
	switch c.Backend {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		return cache.NewMemoryStore(c.MemorySize)
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", c.Redis.Addr, err)
		}
		l.log.Info("Redis cache connected", slog.String("addr", c.Redis.Addr))
		return cache.NewRedisStore(client, c.Redis.Prefix, c.Redis.TTLDuration()), nil
	case config.CachePostgres:
		pool, err := pgxpool.New(ctx, l.cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping failed: %w", err)
		}
		if err := migrations.Apply(ctx, l.log, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		l.pool = pool
		return cache.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}

func (l *Loader) decoder(feed config.FeedConfig) *parser.PageDecoder {
	return parser.NewPageDecoder(feed.ItemsField, l.cfg.Engine.PageSize)
}

// Retriever выбирает стратегию выборки для ленты. Cache-first требует
// настроенного хранилища; без него лента читается напрямую.
func (l *Loader) Retriever(feed config.FeedConfig) engine.Retriever {
	if feed.CacheFirst && l.cache != nil {
		return usecase.NewCacheFirstRetriever(l.cache, l.fetcher, l.decoder(feed), l.metrics, l.log)
	}
	return usecase.NewDirectRetriever(l.fetcher, l.decoder(feed))
}

// Refresher возвращает прогреватель кэша для cache-first ленты.
func (l *Loader) Refresher(feed config.FeedConfig) (*usecase.CacheFirstRetriever, error) {
	if !feed.CacheFirst {
		return nil, fmt.Errorf("feed %s is not cache-first", feed.Name)
	}
	if l.cache == nil {
		return nil, fmt.Errorf("feed %s: cache backend is %q", feed.Name, l.cfg.Cache.Backend)
	}
	return usecase.NewCacheFirstRetriever(l.cache, l.fetcher, l.decoder(feed), l.metrics, l.log), nil
}

// Options переводит конфигурацию ленты в параметры движка.
func (l *Loader) Options(feed config.FeedConfig) engine.Options {
	return engine.Options{
		URL:        feed.URL,
		StartPage:  feed.StartPage,
		Total:      feed.Total,
		Kind:       domain.Kind(feed.Kind),
		CountField: feed.CountField,
		PageSize:   l.cfg.Engine.PageSize,
		Lookahead:  l.cfg.Engine.Lookahead,
	}
}

// Mount создает движок для ленты, пишущий в sink.
func (l *Loader) Mount(ctx context.Context, feed config.FeedConfig, renderer engine.Renderer, sink engine.Sink) (*engine.Engine, error) {
	e, err := engine.New(ctx, l.Options(feed), l.Retriever(feed), renderer, sink, l.metrics, l.log.With(slog.String("feed", feed.Name)))
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", feed.Name, err)
	}
	return e, nil
}

// Result - итог загрузки ленты до конца.
type Result struct {
	Feed  string
	Pages int
	State engine.State
	Err   error
}

// Drain монтирует движок и повторяет событие приближения к концу, пока лента
// не исчерпана или не загружено maxPages страниц (0 - без ограничения).
func (l *Loader) Drain(ctx context.Context, feed config.FeedConfig, maxPages int, renderer engine.Renderer, sink engine.Sink) (Result, error) {
	e, err := l.Mount(ctx, feed, renderer, sink)
	if err != nil {
		return Result{Feed: feed.Name}, err
	}
	defer e.Close()
	res := Result{Feed: feed.Name}
	granted := e.Mount(engine.Viewport{})
	for granted {
		res.Pages++
		e.Wait()
		if e.Exhausted() || (maxPages > 0 && res.Pages >= maxPages) || ctx.Err() != nil {
			break
		}
		granted = e.Approach()
	}
	e.Wait()
	res.State = e.State()
	res.Err = e.Err()
	l.log.Info("Feed drained",
		slog.String("feed", feed.Name),
		slog.Int("pages", res.Pages),
		slog.String("state", res.State.String()),
	)
	return res, nil
}

// Close освобождает хранилище кэша и пул соединений.
func (l *Loader) Close() error {
	var err error
	if l.cache != nil {
		err = l.cache.Close()
	}
	if l.pool != nil {
		l.pool.Close()
	}
	return err
}
