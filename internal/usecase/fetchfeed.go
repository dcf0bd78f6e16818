package usecase

import (
	"context"
	"feedloader/internal/domain"
)

// PageFetcher загружает сырое тело страницы ленты по URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// PageDecoder преобразует сырое тело ответа в доменную страницу.
type PageDecoder interface {
	Decode(body []byte) (*domain.Page, error)
}

// PageCache - хранилище сырых тел страниц, ключ - точный URL запроса.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CacheRecorder учитывает попадания и промахи кэша.
type CacheRecorder interface {
	RecordCacheLookup(hit bool)
}
