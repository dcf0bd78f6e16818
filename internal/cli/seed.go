package cli

import (
	"context"
	"encoding/json"
	"feedloader/internal/domain"
	"feedloader/internal/migrations"
	"feedloader/storage"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

type postSaver interface {
	SavePosts(ctx context.Context, posts []domain.Post) (int, error)
}

func newSeedCommand(opts *options) *cobra.Command {
	var feed string
	cmd := &cobra.Command{
		Use:   "seed --feed NAME FILE",
		Short: "Import posts into the page server database",
		Long: `Read a JSON array of posts and store them for the page server.
Posts already known by link are skipped. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := opts.cfg.Feed(feed); !ok {
				return fmt.Errorf("feed %q is not configured", feed)
			}
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			ctx := cmd.Context()
			pool, err := pgxpool.New(ctx, opts.cfg.Database.DSN())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := pool.Ping(ctx); err != nil {
				pool.Close()
				return fmt.Errorf("database ping failed: %w", err)
			}
			if err := migrations.Apply(ctx, opts.log, pool); err != nil {
				pool.Close()
				return fmt.Errorf("migrations failed: %w", err)
			}
			db := storage.NewPostgresPostDB(pool, opts.log)
			defer db.Close()

			saved, total, err := seedPosts(ctx, db, in, feed)
			if err != nil {
				return err
			}
			opts.log.Info("Posts imported",
				slog.String("component", "cli"),
				slog.String("feed", feed),
				slog.Int("saved", saved),
				slog.Int("skipped", total-saved),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d posts saved to %s\n", saved, total, feed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&feed, "feed", "f", "", "feed the posts belong to")
	_ = cmd.MarkFlagRequired("feed")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

// seedPosts декодирует записи из r, проставляет им ленту feed и сохраняет.
// Записи без даты публикации получают текущее время.
func seedPosts(ctx context.Context, db postSaver, r io.Reader, feed string) (saved, total int, err error) {
	var posts []domain.Post
	if err := json.NewDecoder(r).Decode(&posts); err != nil {
		return 0, 0, fmt.Errorf("decode posts: %w", err)
	}
	now := time.Now().UTC()
	for i := range posts {
		if posts[i].Link == "" {
			return 0, 0, fmt.Errorf("post %d has no link", i)
		}
		posts[i].Feed = feed
		if posts[i].PubDate.IsZero() {
			posts[i].PubDate = now
		}
	}
	saved, err = db.SavePosts(ctx, posts)
	if err != nil {
		return 0, len(posts), err
	}
	return saved, len(posts), nil
}
