package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Migration struct {
	ID    string
	UpSQL string
}

// Pool - подмножество *pgxpool.Pool, нужное для миграций.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var allMigrations = []Migration{
	{
		ID: "20250301120000_create_posts_table",
		UpSQL: `
		CREATE TABLE posts(
		id serial PRIMARY KEY,
		feed TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		link TEXT UNIQUE NOT NULL,
		pub_date TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX posts_feed_pub_date_idx ON posts (feed, pub_date DESC, id DESC);`,
	},
	{
		ID: "20250301120100_create_page_cache_table",
		UpSQL: `
		CREATE TABLE page_cache(
		url TEXT PRIMARY KEY,
		body BYTEA NOT NULL,
		stored_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
}

// Apply применяет все недостающие миграции к базе данных в одной транзакции.
func Apply(ctx context.Context, log *slog.Logger, pool Pool) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Starting database migrations check...")
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
	id TEXT PRIMARY KEY
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := pool.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration id: %w", err)
	}
	appliedMigrations := make(map[string]bool, len(applied))
	for _, id := range applied {
		appliedMigrations[id] = true
	}
	pending := make([]Migration, 0, len(allMigrations))
	for _, m := range allMigrations {
		if !appliedMigrations[m.ID] {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		log.Info("Database is up to date, no new migrations found.")
		return nil
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ID < pending[j].ID
	})
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, m := range pending {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	log.Info("Database migrations applied successfully", slog.Int("count", len(pending)))
	return nil
}
