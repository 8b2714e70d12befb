package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"bookhub/internal/apperr"
	"bookhub/internal/logger"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/validation"
)

var (
	admin  = &auth.Identity{UserID: "admin-1", Login: "admin", Role: models.RoleAdmin}
	reader = &auth.Identity{UserID: "reader-1", Login: "reader", Role: models.RoleReader}
)

// CatalogServiceTestSuite runs the catalog service against a fresh memory store per test
type CatalogServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *repository.Store
	svc    CatalogService
	author *models.Author
}

func (s *CatalogServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repository.NewMemoryStore()
	s.svc = NewCatalogService(s.store, validation.New(), logger.Discard())

	s.author = &models.Author{Name: "Ursula"}
	s.Require().NoError(s.store.Authors.Create(s.ctx, s.author))
}

func (s *CatalogServiceTestSuite) newBook(id int64, title string) dto.CreateBookRequest {
	return dto.CreateBookRequest{ID: id, Title: title, Author: s.author.ID, Image: "cover.png", Score: "8.5", Genre: "fantasy"}
}

func (s *CatalogServiceTestSuite) TestCreateBook_RequiresAdmin() {
	_, err := s.svc.CreateBook(s.ctx, reader, s.newBook(1, "Test Book"))
	s.ErrorIs(err, apperr.ErrForbidden)

	_, err = s.svc.CreateBook(s.ctx, nil, s.newBook(1, "Test Book"))
	s.ErrorIs(err, apperr.ErrUnauthenticated)

	_, err = s.store.Books.FindByID(s.ctx, 1)
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *CatalogServiceTestSuite) TestCreateBook_ResolvesAuthor() {
	view, err := s.svc.CreateBook(s.ctx, admin, s.newBook(1, "Test Book"))
	s.Require().NoError(err)
	s.Equal(int64(1), view.ID)
	s.Require().NotNil(view.Author)
	s.Equal("Ursula", view.Author.Name)
	s.Nil(view.Collection)
	s.Equal([]string{}, view.Tags)
}

func (s *CatalogServiceTestSuite) TestCreateBook_UnknownAuthor() {
	in := s.newBook(1, "Test Book")
	in.Author = "00000000-0000-0000-0000-000000000000"
	_, err := s.svc.CreateBook(s.ctx, admin, in)
	s.ErrorIs(err, apperr.ErrNotFound)
	s.Equal("author not found", err.Error())

	_, err = s.store.Books.FindByID(s.ctx, 1)
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *CatalogServiceTestSuite) TestCreateBook_UnknownCollection() {
	in := s.newBook(1, "Test Book")
	in.Collection = "00000000-0000-0000-0000-000000000000"
	_, err := s.svc.CreateBook(s.ctx, admin, in)
	s.ErrorIs(err, apperr.ErrNotFound)
	s.Equal("collection", err.(*apperr.Error).Entity)
}

func (s *CatalogServiceTestSuite) TestCreateBook_Validation() {
	in := dto.CreateBookRequest{ID: 0, Title: "ab"}
	_, err := s.svc.CreateBook(s.ctx, admin, in)
	s.Require().ErrorIs(err, apperr.ErrValidation)

	fields := apperr.Fields(err)
	s.Equal("is required", fields["id"])
	s.Equal("must be at least 3 characters", fields["title"])
	s.Equal("is required", fields["author"])
	s.Equal("is required", fields["image"])
	s.Equal("is required", fields["score"])

	all, err := s.store.Books.List(s.ctx, repository.BookFilter{})
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *CatalogServiceTestSuite) TestCreateBook_DuplicateID() {
	_, err := s.svc.CreateBook(s.ctx, admin, s.newBook(7, "Original"))
	s.Require().NoError(err)

	_, err = s.svc.CreateBook(s.ctx, admin, s.newBook(7, "Impostor"))
	s.ErrorIs(err, apperr.ErrConflict)

	got, err := s.store.Books.FindByID(s.ctx, 7)
	s.Require().NoError(err)
	s.Equal("Original", got.Title)
}

func (s *CatalogServiceTestSuite) TestCreateBook_DuplicateIDCreatesNoAuthor() {
	_, err := s.svc.CreateBook(s.ctx, admin, s.newBook(7, "Original"))
	s.Require().NoError(err)

	in := s.newBook(7, "Impostor")
	in.Author, in.AuthorName = "", "Nobody New"
	_, err = s.svc.CreateBook(s.ctx, admin, in)
	s.ErrorIs(err, apperr.ErrConflict)

	_, err = s.store.Authors.FindByName(s.ctx, "Nobody New")
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *CatalogServiceTestSuite) TestCreateBook_LazyAuthorAndCollection() {
	in := dto.CreateBookRequest{
		ID: 3, Title: "Dragon's Lair", AuthorName: "  Smith ", CollectionTitle: "Lairs",
		Image: "d.png", Score: "9", Tags: []string{" a ", "", "b"},
	}
	view, err := s.svc.CreateBook(s.ctx, admin, in)
	s.Require().NoError(err)
	s.Require().NotNil(view.Author)
	s.Equal("Smith", view.Author.Name)
	s.Require().NotNil(view.Collection)
	s.Equal("Lairs", view.Collection.Title)
	s.Equal([]string{"a", "b"}, view.Tags)

	// reuses the existing rows the second time
	in.ID = 4
	again, err := s.svc.CreateBook(s.ctx, admin, in)
	s.Require().NoError(err)
	s.Equal(view.Author.ID, again.Author.ID)
	s.Equal(view.Collection.ID, again.Collection.ID)
}

func (s *CatalogServiceTestSuite) TestListBooks_Flag() {
	in := s.newBook(1, "Trending One")
	in.IsTrending = true
	_, err := s.svc.CreateBook(s.ctx, admin, in)
	s.Require().NoError(err)
	_, err = s.svc.CreateBook(s.ctx, admin, s.newBook(2, "Plain Two"))
	s.Require().NoError(err)

	trending, err := s.svc.ListBooks(s.ctx, repository.BookFilter{Flag: models.FlagTrending})
	s.Require().NoError(err)
	s.Require().Len(trending, 1)
	s.Equal(int64(1), trending[0].ID)

	all, err := s.svc.ListBooks(s.ctx, repository.BookFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)

	_, err = s.svc.ListBooks(s.ctx, repository.BookFilter{Flag: "isBogus"})
	s.ErrorIs(err, apperr.ErrValidation)
}

func (s *CatalogServiceTestSuite) TestGetBook_Similar() {
	for i := int64(1); i <= 7; i++ {
		_, err := s.svc.CreateBook(s.ctx, admin, s.newBook(i, "Fantasy Vol"))
		s.Require().NoError(err)
	}
	other := s.newBook(8, "Drama Only")
	other.Genre = "drama"
	_, err := s.svc.CreateBook(s.ctx, admin, other)
	s.Require().NoError(err)

	detail, err := s.svc.GetBook(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(int64(1), detail.ID)
	s.Require().NotNil(detail.Author)
	s.Len(detail.Similar, 5)
	for _, b := range detail.Similar {
		s.NotEqual(int64(1), b.ID)
		s.Equal("fantasy", b.Genre)
	}

	lonely, err := s.svc.GetBook(s.ctx, 8)
	s.Require().NoError(err)
	s.Empty(lonely.Similar)

	_, err = s.svc.GetBook(s.ctx, 99)
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *CatalogServiceTestSuite) TestGetBook_NoGenreNoSimilar() {
	a := s.newBook(1, "No Genre A")
	a.Genre = ""
	b := s.newBook(2, "No Genre B")
	b.Genre = ""
	for _, in := range []dto.CreateBookRequest{a, b} {
		_, err := s.svc.CreateBook(s.ctx, admin, in)
		s.Require().NoError(err)
	}

	detail, err := s.svc.GetBook(s.ctx, 1)
	s.Require().NoError(err)
	s.NotNil(detail.Similar)
	s.Empty(detail.Similar)
}

func (s *CatalogServiceTestSuite) TestUpdateBook_FalsyMerge() {
	_, err := s.svc.CreateBook(s.ctx, admin, s.newBook(1, "Old Title"))
	s.Require().NoError(err)

	view, err := s.svc.UpdateBook(s.ctx, admin, 1, dto.UpdateBookRequest{Title: ""})
	s.Require().NoError(err)
	s.Equal("Old Title", view.Title)

	view, err = s.svc.UpdateBook(s.ctx, admin, 1, dto.UpdateBookRequest{Title: "New", Score: "9.9"})
	s.Require().NoError(err)
	s.Equal("New", view.Title)
	s.Equal("9.9", view.Score)
	s.Equal("fantasy", view.Genre)
}

func (s *CatalogServiceTestSuite) TestUpdateBook_Errors() {
	_, err := s.svc.CreateBook(s.ctx, admin, s.newBook(1, "Old Title"))
	s.Require().NoError(err)

	_, err = s.svc.UpdateBook(s.ctx, reader, 1, dto.UpdateBookRequest{Title: "Hack"})
	s.ErrorIs(err, apperr.ErrForbidden)

	_, err = s.svc.UpdateBook(s.ctx, admin, 42, dto.UpdateBookRequest{Title: "Ghost"})
	s.ErrorIs(err, apperr.ErrNotFound)

	_, err = s.svc.UpdateBook(s.ctx, admin, 1, dto.UpdateBookRequest{Author: "nope"})
	s.ErrorIs(err, apperr.ErrNotFound)

	_, err = s.svc.UpdateBook(s.ctx, admin, 1, dto.UpdateBookRequest{Title: "ab"})
	s.ErrorIs(err, apperr.ErrValidation)

	got, err := s.store.Books.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Old Title", got.Title)
}

func (s *CatalogServiceTestSuite) TestReplaceBook() {
	in := s.newBook(1, "Before")
	in.CollectionTitle = "Series"
	in.IsPopular = true
	_, err := s.svc.CreateBook(s.ctx, admin, in)
	s.Require().NoError(err)

	view, err := s.svc.ReplaceBook(s.ctx, admin, 1, dto.ReplaceBookRequest{
		Title: "After", AuthorName: "Brand New", Image: "n.png", Score: "6",
	})
	s.Require().NoError(err)
	s.Equal("After", view.Title)
	s.Equal("Brand New", view.Author.Name)
	s.Nil(view.Collection)
	s.False(view.IsPopular)
	s.Empty(view.Genre)

	_, err = s.svc.ReplaceBook(s.ctx, reader, 1, dto.ReplaceBookRequest{Title: "Nope", AuthorName: "x", Image: "i", Score: "1"})
	s.ErrorIs(err, apperr.ErrForbidden)
	_, err = s.svc.ReplaceBook(s.ctx, admin, 2, dto.ReplaceBookRequest{Title: "Nope", AuthorName: "x", Image: "i", Score: "1"})
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *CatalogServiceTestSuite) TestDeleteBook() {
	_, err := s.svc.CreateBook(s.ctx, admin, s.newBook(1, "Doomed"))
	s.Require().NoError(err)

	s.ErrorIs(s.svc.DeleteBook(s.ctx, reader, 1), apperr.ErrForbidden)
	s.NoError(s.svc.DeleteBook(s.ctx, admin, 1))
	s.ErrorIs(s.svc.DeleteBook(s.ctx, admin, 1), apperr.ErrNotFound)
}

func (s *CatalogServiceTestSuite) TestAuthorAndCollectionPages() {
	in := s.newBook(1, "In Series")
	in.CollectionTitle = "Saga"
	_, err := s.svc.CreateBook(s.ctx, admin, in)
	s.Require().NoError(err)
	_, err = s.svc.CreateBook(s.ctx, admin, s.newBook(2, "Standalone"))
	s.Require().NoError(err)

	page, err := s.svc.GetAuthor(s.ctx, s.author.ID)
	s.Require().NoError(err)
	s.Equal("Ursula", page.Author.Name)
	s.Len(page.Books, 2)

	coll, err := s.store.Collections.FindByTitle(s.ctx, "Saga")
	s.Require().NoError(err)
	cpage, err := s.svc.GetCollection(s.ctx, coll.ID)
	s.Require().NoError(err)
	s.Require().Len(cpage.Books, 1)
	s.Equal(int64(1), cpage.Books[0].ID)

	_, err = s.svc.GetAuthor(s.ctx, "missing")
	s.ErrorIs(err, apperr.ErrNotFound)
	_, err = s.svc.GetCollection(s.ctx, "missing")
	s.ErrorIs(err, apperr.ErrNotFound)

	authors, err := s.svc.ListAuthors(s.ctx)
	s.Require().NoError(err)
	s.Len(authors, 1)
	collections, err := s.svc.ListCollections(s.ctx)
	s.Require().NoError(err)
	s.Len(collections, 1)
}

func (s *CatalogServiceTestSuite) TestUpsertRejectsBlank() {
	_, err := s.svc.UpsertAuthorByName(s.ctx, "   ")
	s.ErrorIs(err, apperr.ErrValidation)
	_, err = s.svc.UpsertCollectionByTitle(s.ctx, "")
	s.ErrorIs(err, apperr.ErrValidation)
}

func TestCatalogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}

// racingAuthors makes the first two FindByName calls both miss before either
// caller gets to Create, forcing the insert race.
type racingAuthors struct {
	repository.AuthorRepository
	mu      sync.Mutex
	pending int
	release chan struct{}
}

func (r *racingAuthors) FindByName(ctx context.Context, name string) (*models.Author, error) {
	a, err := r.AuthorRepository.FindByName(ctx, name)

	r.mu.Lock()
	wait := r.pending > 0
	if wait {
		r.pending--
		if r.pending == 0 {
			close(r.release)
		}
	}
	r.mu.Unlock()

	if wait {
		<-r.release
	}
	return a, err
}

func TestCreateBook_ConcurrentLazyAuthor(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	racing := &racingAuthors{AuthorRepository: store.Authors, pending: 2, release: make(chan struct{})}
	store.Authors = racing
	svc := NewCatalogService(store, validation.New(), logger.Discard())

	var wg sync.WaitGroup
	views := make([]*dto.BookView, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := dto.CreateBookRequest{ID: int64(i + 1), Title: "Smith Book", AuthorName: "Smith", Image: "s.png", Score: "5"}
			views[i], errs[i] = svc.CreateBook(ctx, admin, in)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, views[0].Author.ID, views[1].Author.ID)

	authors, err := store.Authors.List(ctx)
	require.NoError(t, err)
	assert.Len(t, authors, 1)
}
