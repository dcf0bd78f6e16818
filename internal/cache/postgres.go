package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxPool - подмножество *pgxpool.Pool, которое нужно хранилищу.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore хранит тела страниц в таблице page_cache.
// Схема создаётся миграциями пакета migrations.
type PostgresStore struct {
	pool pgxPool
}

func NewPostgresStore(pool pgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "cache.postgres.Get"
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM page_cache WHERE url = $1`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return body, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	const op = "cache.postgres.Set"
	_, err := s.pool.Exec(ctx, `
	INSERT INTO page_cache (url, body, stored_at)
	VALUES ($1, $2, now())
	ON CONFLICT (url) DO UPDATE SET body = EXCLUDED.body, stored_at = EXCLUDED.stored_at;
	`, key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close ничего не делает: пулом владеет вызывающая сторона.
func (s *PostgresStore) Close() error { return nil }
