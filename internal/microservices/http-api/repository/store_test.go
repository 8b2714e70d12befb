package repository

import (
	"context"
	"os"
	"sync"
	"testing"

	"bookhub/database"
	"bookhub/internal/apperr"
	"bookhub/internal/logger"
	"bookhub/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore exercises the contract every Store implementation honours.
// It expects empty tables.
func testStore(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	// users
	u := &models.User{Login: "reader", Email: "reader@example.com", PasswordHash: "x", Role: models.RoleReader}
	require.NoError(t, s.Users.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	dup := &models.User{Login: "reader", Email: "other@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, s.Users.Create(ctx, dup), apperr.ErrConflict)

	got, err := s.Users.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	got, err = s.Users.FindByLogin(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", got.Email)

	exists, err := s.Users.ExistsByEmailOrLogin(ctx, "nobody@example.com", "reader")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.Users.ExistsByEmailOrLogin(ctx, "nobody@example.com", "nobody")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Users.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// authors and collections
	smith := &models.Author{Name: "Smith"}
	require.NoError(t, s.Authors.Create(ctx, smith))
	assert.ErrorIs(t, s.Authors.Create(ctx, &models.Author{Name: "Smith"}), apperr.ErrConflict)
	found, err := s.Authors.FindByName(ctx, "Smith")
	require.NoError(t, err)
	assert.Equal(t, smith.ID, found.ID)
	_, err = s.Authors.FindByName(ctx, "smith")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	saga := &models.Collection{Title: "Saga"}
	require.NoError(t, s.Collections.Create(ctx, saga))
	assert.ErrorIs(t, s.Collections.Create(ctx, &models.Collection{Title: "Saga"}), apperr.ErrConflict)

	authors, err := s.Authors.FindByIDs(ctx, []string{smith.ID, "junk"})
	require.NoError(t, err)
	require.Len(t, authors, 1)
	colls, err := s.Collections.FindByIDs(ctx, []string{saga.ID})
	require.NoError(t, err)
	require.Len(t, colls, 1)

	// books
	collID := saga.ID
	b1 := &models.Book{ID: 1, Title: "Dragon Tales", AuthorID: smith.ID, CollectionID: &collID, Genre: "fantasy", Image: "a.png", Score: "10", Tags: []string{"x"}, IsPopular: true}
	b2 := &models.Book{ID: 2, Title: "Dragonfly", AuthorID: smith.ID, Genre: "fantasy", Image: "b.png", Score: "7"}
	b3 := &models.Book{ID: 3, Title: "100%_Real", AuthorID: smith.ID, Genre: "drama", Image: "c.png", Score: "5"}
	for _, b := range []*models.Book{b3, b1, b2} {
		require.NoError(t, s.Books.Create(ctx, b))
	}

	clash := &models.Book{ID: 1, Title: "Other", AuthorID: smith.ID, Image: "z.png", Score: "1"}
	assert.ErrorIs(t, s.Books.Create(ctx, clash), apperr.ErrConflict)
	kept, err := s.Books.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dragon Tales", kept.Title)
	assert.Equal(t, []string{"x"}, []string(kept.Tags))

	all, err := s.Books.List(ctx, BookFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, bookIDs(all))

	popular, err := s.Books.List(ctx, BookFilter{Flag: models.FlagPopular})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, bookIDs(popular))

	limited, err := s.Books.List(ctx, BookFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	hits, err := s.Books.SearchByTitle(ctx, "DRAG")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, bookIDs(hits))
	hits, err = s.Books.SearchByTitle(ctx, "%_")
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, bookIDs(hits))
	hits, err = s.Books.SearchByTitle(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, hits)

	similar, err := s.Books.FindSimilar(ctx, "fantasy", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, bookIDs(similar))

	byAuthor, err := s.Books.ListByAuthor(ctx, smith.ID)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 3)
	byColl, err := s.Books.ListByCollection(ctx, saga.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, bookIDs(byColl))

	some, err := s.Books.FindByIDs(ctx, []int64{3, 1, 99})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, bookIDs(some))

	kept.Title = "Dragon Tales II"
	kept.CollectionID = nil
	require.NoError(t, s.Books.Save(ctx, kept))
	reread, err := s.Books.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dragon Tales II", reread.Title)
	assert.Nil(t, reread.CollectionID)

	missing := &models.Book{ID: 42, Title: "Nope", AuthorID: smith.ID, Image: "n.png", Score: "1"}
	assert.ErrorIs(t, s.Books.Save(ctx, missing), apperr.ErrNotFound)

	// saved set
	require.NoError(t, s.Saved.Add(ctx, u.ID, 2))
	require.NoError(t, s.Saved.Add(ctx, u.ID, 1))
	require.NoError(t, s.Saved.Add(ctx, u.ID, 2))
	ids, err := s.Saved.ListBookIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, ids)

	require.NoError(t, s.Saved.Remove(ctx, u.ID, 2))
	require.NoError(t, s.Saved.Remove(ctx, u.ID, 77))
	ids, err = s.Saved.ListBookIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	// delete leaves saved entries in place
	require.NoError(t, s.Books.Delete(ctx, 1))
	assert.ErrorIs(t, s.Books.Delete(ctx, 1), apperr.ErrNotFound)
	_, err = s.Books.FindByID(ctx, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	ids, err = s.Saved.ListBookIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

// testConcurrentSave checks that racing adds of one book leave a single entry.
func testConcurrentSave(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	u := &models.User{Login: "racer", Email: "racer@example.com", PasswordHash: "x"}
	require.NoError(t, s.Users.Create(ctx, u))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Saved.Add(ctx, u.ID, 5))
		}()
	}
	wg.Wait()

	ids, err := s.Saved.ListBookIDs(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, ids)
}

func bookIDs(books []models.Book) []int64 {
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
	testConcurrentSave(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	b := &models.Book{ID: 1, Title: "Original", Tags: []string{"a"}}
	require.NoError(t, s.Books.Create(ctx, b))

	b.Tags[0] = "mutated"
	got, err := s.Books.FindByID(ctx, 1)
	require.NoError(t, err)
	got.Title = "changed"

	again, err := s.Books.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
	assert.Equal(t, []string{"a"}, []string(again.Tags))
}

func TestGormStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skipf("TEST_DATABASE_URL not set")
	}
	db, err := database.ConnectDB(context.Background(), dsn, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	reset := func() {
		require.NoError(t, db.Exec("TRUNCATE saved_books, books, collections, authors, users").Error)
	}
	reset()
	testStore(t, NewGormStore(db))
	reset()
	testConcurrentSave(t, NewGormStore(db))
	reset()
}
