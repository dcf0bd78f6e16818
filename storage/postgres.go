package storage

import (
	"context"
	"feedloader/internal/domain"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool - подмножество *pgxpool.Pool, которое использует хранилище.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type PostgresPostDB struct {
	pool Pool
	log  *slog.Logger
}

func NewPostgresPostDB(pool Pool, log *slog.Logger) *PostgresPostDB {
	log.Info("Initializing Postgres post storage")
	return &PostgresPostDB{
		pool: pool,
		log:  log.With(slog.String("component", "storage")),
	}
}

func (db *PostgresPostDB) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// SavePosts сохраняет записи в одной транзакции, пропуская уже известные ссылки.
func (db *PostgresPostDB) SavePosts(ctx context.Context, posts []domain.Post) (saved int, err error) {
	if len(posts) == 0 {
		return 0, nil
	}
	const op = "storage.postgres.SavePosts"
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		db.log.Error("Failed to begin transaction", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				db.log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	query := `
	INSERT INTO posts (feed, title, content, link, pub_date)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (link) DO NOTHING;
	`
	for _, post := range posts {
		tag, execErr := tx.Exec(ctx, query, post.Feed, post.Title, post.Content, post.Link, post.PubDate)
		if execErr != nil {
			err = execErr
			db.log.Error("Failed to insert post", slog.String("op", op), slog.String("link", post.Link), slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to insert post %s: %w", op, post.Link, err)
		}
		saved += int(tag.RowsAffected())
	}
	if err = tx.Commit(ctx); err != nil {
		db.log.Error("Failed to commit transaction", slog.String("op", op), slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return saved, nil
}

// GetPage возвращает страницу page (с 1) ленты feed, новые записи первыми.
// Второе значение сообщает, что после этой страницы записей нет.
func (db *PostgresPostDB) GetPage(ctx context.Context, feed string, page, size int) ([]domain.Post, bool, error) {
	const op = "storage.postgres.GetPage"
	log := db.log.With(
		slog.String("op", op),
		slog.String("feed", feed),
		slog.Int("page", page),
		slog.Int("size", size),
	)
	query := `
	SELECT id, feed, title, content, link, pub_date
	FROM posts
	WHERE feed = $1
	ORDER BY pub_date DESC, id DESC
	LIMIT $2 OFFSET $3;
	`
	rows, err := db.pool.Query(ctx, query, feed, size+1, (page-1)*size)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Post, error) {
		var post domain.Post
		err := row.Scan(
			&post.ID,
			&post.Feed,
			&post.Title,
			&post.Content,
			&post.Link,
			&post.PubDate,
		)
		return post, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, false, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	last := len(posts) <= size
	if !last {
		posts = posts[:size]
	}
	log.Debug("Retrieved page", slog.Int("count", len(posts)), slog.Bool("last", last))
	return posts, last, nil
}
