package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"feedloader/internal/domain"
	"fmt"
)

// ErrUnknownFeed возвращается, если лента не описана в конфигурации.
var ErrUnknownFeed = errors.New("unknown feed")

// PostStorage определяет интерфейс чтения записей постранично.
// Используется эталонным эндпоинтом страниц.
type PostStorage interface {
	GetPage(ctx context.Context, feed string, page, size int) ([]domain.Post, bool, error)
}

// PageResponse - страница в форме, которую потребляет движок ленты.
type PageResponse struct {
	Last  bool          `json:"last"`
	Items []domain.Item `json:"items"`
}

// PageGetterUseCase отдает сохраненные записи страницами фиксированного размера.
type PageGetterUseCase struct {
	storage  PostStorage
	pageSize int
	feeds    map[string]struct{}
}

// NewPageGetterUseCase создает UseCase для известных лент feeds.
func NewPageGetterUseCase(s PostStorage, pageSize int, feeds []string) *PageGetterUseCase {
	known := make(map[string]struct{}, len(feeds))
	for _, f := range feeds {
		known[f] = struct{}{}
	}
	return &PageGetterUseCase{storage: s, pageSize: pageSize, feeds: known}
}

// GetPage возвращает страницу page ленты feed.
func (us *PageGetterUseCase) GetPage(ctx context.Context, feed string, page int) (*PageResponse, error) {
	if _, ok := us.feeds[feed]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeed, feed)
	}
	if page < 1 {
		page = 1
	}
	posts, last, err := us.storage.GetPage(ctx, feed, page, us.pageSize)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(posts))
	for _, p := range posts {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal post %d: %w", p.ID, err)
		}
		items = append(items, domain.Item(raw))
	}
	return &PageResponse{Last: last, Items: items}, nil
}
