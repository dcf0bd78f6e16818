package usecase

import (
	"context"
	"errors"
	"feedloader/internal/adapter/fetcher"
	"feedloader/internal/cache"
	"feedloader/internal/domain"
	"fmt"
	"log/slog"
)

// DirectRetriever всегда идёт в сеть. Используется для быстро меняющихся лент.
type DirectRetriever struct {
	fetcher PageFetcher
	decoder PageDecoder
}

func NewDirectRetriever(fetcher PageFetcher, decoder PageDecoder) *DirectRetriever {
	return &DirectRetriever{fetcher: fetcher, decoder: decoder}
}

// Retrieve загружает и декодирует страницу. Ошибка загрузки возвращается без изменений.
func (r *DirectRetriever) Retrieve(ctx context.Context, url string) (*domain.Page, error) {
	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	page, err := r.decoder.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return page, nil
}

// CacheFirstRetriever сначала ищет страницу в кэше по точному URL и идёт в сеть
// только при промахе. Инвалидации нет: запись живёт, пока её не вытеснит хранилище.
type CacheFirstRetriever struct {
	cache    PageCache
	fetcher  PageFetcher
	decoder  PageDecoder
	recorder CacheRecorder
	log      *slog.Logger
}

func NewCacheFirstRetriever(
	cache PageCache,
	fetcher PageFetcher,
	decoder PageDecoder,
	recorder CacheRecorder,
	log *slog.Logger,
) *CacheFirstRetriever {
	return &CacheFirstRetriever{
		cache:    cache,
		fetcher:  fetcher,
		decoder:  decoder,
		recorder: recorder,
		log:      log.With(slog.String("component", "cache-first")),
	}
}

// Retrieve возвращает закэшированную страницу или загружает её и сохраняет сырое тело.
// При ошибке загрузки, декодирования или success == false запись не создаётся. Ошибки хранилища
// не прерывают выборку: чтение считается промахом, запись только логируется.
func (r *CacheFirstRetriever) Retrieve(ctx context.Context, url string) (*domain.Page, error) {
	log := r.log.With(slog.String("url", url))

	cached, err := r.cache.Get(ctx, url)
	switch {
	case err == nil:
		page, decodeErr := r.decoder.Decode(cached)
		if decodeErr == nil {
			r.record(true)
			log.Debug("Serving page from cache")
			return page, nil
		}
		log.Warn("Cached page is not decodable, refetching", slog.Any("error", decodeErr))
	case errors.Is(err, cache.ErrMiss):
	default:
		log.Warn("Cache read failed, falling back to network", slog.Any("error", err))
	}
	r.record(false)
	return r.fetchAndStore(ctx, url, log)
}

// Refresh загружает страницу в обход кэша и перезаписывает запись.
// Используется прогревом кэша; страница с success == false считается ошибкой сервера.
func (r *CacheFirstRetriever) Refresh(ctx context.Context, url string) error {
	page, err := r.fetchAndStore(ctx, url, r.log.With(slog.String("url", url)))
	if err != nil {
		return err
	}
	if !page.Success {
		return &fetcher.ServerError{URL: url}
	}
	return nil
}

func (r *CacheFirstRetriever) fetchAndStore(ctx context.Context, url string, log *slog.Logger) (*domain.Page, error) {
	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	page, err := r.decoder.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	if !page.Success {
		return page, nil
	}
	if err := r.cache.Set(ctx, url, body); err != nil {
		log.Warn("Cache write failed", slog.Any("error", err))
	}
	return page, nil
}

func (r *CacheFirstRetriever) record(hit bool) {
	if r.recorder != nil {
		r.recorder.RecordCacheLookup(hit)
	}
}
