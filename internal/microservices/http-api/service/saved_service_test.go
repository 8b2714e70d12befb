package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/apperr"
	"bookhub/internal/logger"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
)

func seedCatalog(t *testing.T, store *repository.Store) *models.Author {
	t.Helper()
	ctx := context.Background()
	author := &models.Author{Name: "Smith"}
	require.NoError(t, store.Authors.Create(ctx, author))
	for _, b := range []models.Book{
		{ID: 1, Title: "Dragon's Lair", Genre: "fantasy"},
		{ID: 2, Title: "Cat Tales", Genre: "fantasy"},
		{ID: 3, Title: "The Last DRAGON", Genre: "drama"},
	} {
		b.AuthorID, b.Image, b.Score = author.ID, "x.png", "7"
		require.NoError(t, store.Books.Create(ctx, &b))
	}
	return author
}

func TestSavedService(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	user := &models.User{Login: "reader", Email: "r@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(ctx, user))
	ident := &auth.Identity{UserID: user.ID, Login: user.Login, Role: user.Role}
	svc := NewSavedService(store, logger.Discard())

	t.Run("SaveTwiceKeepsOne", func(t *testing.T) {
		require.NoError(t, svc.Save(ctx, ident, 2))
		require.NoError(t, svc.Save(ctx, ident, 2))
		require.NoError(t, svc.Save(ctx, ident, 1))

		list, err := svc.ListSaved(ctx, ident)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, int64(2), list[0].ID)
		assert.Equal(t, int64(1), list[1].ID)
		require.NotNil(t, list[0].Author)
		assert.Equal(t, "Smith", list[0].Author.Name)
	})

	t.Run("UnsaveAbsentIsNoop", func(t *testing.T) {
		require.NoError(t, svc.Unsave(ctx, ident, 99))
		require.NoError(t, svc.Unsave(ctx, ident, 2))
		list, err := svc.ListSaved(ctx, ident)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(1), list[0].ID)
	})

	t.Run("DeletedBooksAreSkipped", func(t *testing.T) {
		require.NoError(t, svc.Save(ctx, ident, 3))
		require.NoError(t, store.Books.Delete(ctx, 1))
		list, err := svc.ListSaved(ctx, ident)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, int64(3), list[0].ID)
	})

	t.Run("Errors", func(t *testing.T) {
		assert.ErrorIs(t, svc.Save(ctx, nil, 1), apperr.ErrUnauthenticated)
		assert.ErrorIs(t, svc.Save(ctx, ident, 0), apperr.ErrValidation)
		assert.ErrorIs(t, svc.Unsave(ctx, nil, 1), apperr.ErrUnauthenticated)

		_, err := svc.ListSaved(ctx, &auth.Identity{UserID: "vanished"})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestSearchService(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	seedCatalog(t, store)
	svc := NewSearchService(store, logger.Discard())

	empty, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	hits, err := svc.Search(ctx, "drag")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Dragon's Lair", hits[0].Title)
	assert.Equal(t, "The Last DRAGON", hits[1].Title)
	require.NotNil(t, hits[0].Author)
	assert.Equal(t, "Smith", hits[0].Author.Name)

	none, err := svc.Search(ctx, "zebra")
	require.NoError(t, err)
	assert.Empty(t, none)
}
