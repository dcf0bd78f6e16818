package storage

import (
	"context"
	"errors"
	"feedloader/internal/domain"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectPage = `SELECT id, feed, title, content, link, pub_date\s+FROM posts\s+WHERE feed = \$1`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postRows(n int, now time.Time) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "feed", "title", "content", "link", "pub_date"})
	for i := 1; i <= n; i++ {
		rows.AddRow(i, "stories", "title", "content", "https://example.com/"+string(rune('a'+i)), now.Add(-time.Duration(i)*time.Minute))
	}
	return rows
}

func TestPostgresPostDB_GetPage(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		page      int
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantLen   int
		wantLast  bool
		wantErr   bool
	}{
		{
			name: "more pages follow",
			page: 1,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(selectPage).
					WithArgs("stories", 4, 0).
					WillReturnRows(postRows(4, now))
			},
			wantLen:  3,
			wantLast: false,
		},
		{
			name: "exactly one page left",
			page: 2,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(selectPage).
					WithArgs("stories", 4, 3).
					WillReturnRows(postRows(3, now))
			},
			wantLen:  3,
			wantLast: true,
		},
		{
			name: "past the end",
			page: 5,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(selectPage).
					WithArgs("stories", 4, 12).
					WillReturnRows(postRows(0, now))
			},
			wantLen:  0,
			wantLast: true,
		},
		{
			name: "database error",
			page: 1,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(selectPage).
					WithArgs("stories", 4, 0).
					WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.mockSetup(mock)

			db := NewPostgresPostDB(mock, discardLogger())
			posts, last, err := db.GetPage(context.Background(), "stories", tt.page, 3)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "storage.postgres.GetPage")
			} else {
				require.NoError(t, err)
				assert.Len(t, posts, tt.wantLen)
				assert.Equal(t, tt.wantLast, last)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresPostDB_SavePosts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	pub := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	posts := []domain.Post{
		{Feed: "stories", Title: "one", Content: "c1", Link: "https://example.com/1", PubDate: pub},
		{Feed: "stories", Title: "two", Content: "c2", Link: "https://example.com/2", PubDate: pub},
	}
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs("stories", "one", "c1", "https://example.com/1", pub).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs("stories", "two", "c2", "https://example.com/2", pub).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	db := NewPostgresPostDB(mock, discardLogger())
	saved, err := db.SavePosts(context.Background(), posts)

	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostDB_SavePosts_RollsBackOnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	post := domain.Post{Feed: "stories", Title: "one", Link: "https://example.com/1"}
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs(post.Feed, post.Title, post.Content, post.Link, post.PubDate).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	db := NewPostgresPostDB(mock, discardLogger())
	saved, err := db.SavePosts(context.Background(), []domain.Post{post})

	require.Error(t, err)
	assert.Equal(t, 0, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPostDB_SavePosts_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewPostgresPostDB(mock, discardLogger())
	saved, err := db.SavePosts(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
