// Package cache содержит хранилища сырых тел страниц для режима cache-first.
// Ключ - точный URL запроса вместе с query-строкой. Политика вытеснения
// целиком на стороне хранилища.
package cache

import (
	"context"
	"errors"
)

// ErrMiss возвращается, если записи с таким ключом нет.
var ErrMiss = errors.New("cache miss")

// Store определяет общий интерфейс хранилища кэша.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
