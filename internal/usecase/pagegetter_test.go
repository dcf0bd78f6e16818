package usecase

import (
	"context"
	"errors"
	"feedloader/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPostStorage struct {
	posts   []domain.Post
	last    bool
	err     error
	gotFeed string
	gotPage int
	gotSize int
}

func (s *stubPostStorage) GetPage(_ context.Context, feed string, page, size int) ([]domain.Post, bool, error) {
	s.gotFeed, s.gotPage, s.gotSize = feed, page, size
	return s.posts, s.last, s.err
}

func TestPageGetterUseCase_GetPage(t *testing.T) {
	pub := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	storage := &stubPostStorage{
		posts: []domain.Post{{ID: 7, Feed: "stories", Title: "Hello", Link: "https://example.com/7", PubDate: pub}},
		last:  true,
	}
	us := NewPageGetterUseCase(storage, 5, []string{"stories"})

	resp, err := us.GetPage(context.Background(), "stories", 0)

	require.NoError(t, err)
	assert.Equal(t, "stories", storage.gotFeed)
	assert.Equal(t, 1, storage.gotPage)
	assert.Equal(t, 5, storage.gotSize)
	assert.True(t, resp.Last)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "7", resp.Items[0].Field("id"))
	assert.Equal(t, "Hello", resp.Items[0].Field("title"))
}

func TestPageGetterUseCase_EmptyPageHasNonNilItems(t *testing.T) {
	us := NewPageGetterUseCase(&stubPostStorage{last: true}, 10, []string{"stories"})

	resp, err := us.GetPage(context.Background(), "stories", 3)

	require.NoError(t, err)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestPageGetterUseCase_Errors(t *testing.T) {
	storageErr := errors.New("database error")
	us := NewPageGetterUseCase(&stubPostStorage{err: storageErr}, 10, []string{"stories"})

	_, err := us.GetPage(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, ErrUnknownFeed)

	_, err = us.GetPage(context.Background(), "stories", 1)
	assert.ErrorIs(t, err, storageErr)
}
