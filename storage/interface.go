package storage

import (
	"context"
	"feedloader/internal/domain"
)

// Storage определяет интерфейс хранилища записей эталонного эндпоинта страниц.
type Storage interface {
	SavePosts(ctx context.Context, posts []domain.Post) (int, error)
	GetPage(ctx context.Context, feed string, page, size int) ([]domain.Post, bool, error)
	Close()
}
