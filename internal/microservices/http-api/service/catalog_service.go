package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"bookhub/internal/apperr"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/validation"
)

// similarLimit caps the "similar books" strip on a book page.
const similarLimit = 5

type CatalogService interface {
	CreateBook(ctx context.Context, id *auth.Identity, in dto.CreateBookRequest) (*dto.BookView, error)
	ListBooks(ctx context.Context, filter repository.BookFilter) ([]dto.BookView, error)
	GetBook(ctx context.Context, id int64) (*dto.BookDetail, error)
	UpdateBook(ctx context.Context, ident *auth.Identity, id int64, in dto.UpdateBookRequest) (*dto.BookView, error)
	ReplaceBook(ctx context.Context, ident *auth.Identity, id int64, in dto.ReplaceBookRequest) (*dto.BookView, error)
	DeleteBook(ctx context.Context, ident *auth.Identity, id int64) error

	// lazy find-or-create used by the admin forms
	UpsertAuthorByName(ctx context.Context, name string) (*models.Author, error)
	UpsertCollectionByTitle(ctx context.Context, title string) (*models.Collection, error)

	GetAuthor(ctx context.Context, id string) (*dto.AuthorPage, error)
	GetCollection(ctx context.Context, id string) (*dto.CollectionPage, error)
	ListAuthors(ctx context.Context) ([]dto.AuthorView, error)
	ListCollections(ctx context.Context) ([]dto.CollectionView, error)
}

type catalogService struct {
	store    *repository.Store
	resolver resolver
	validate *validation.Validator
	log      *logrus.Logger
}

func NewCatalogService(store *repository.Store, v *validation.Validator, log *logrus.Logger) CatalogService {
	return &catalogService{
		store:    store,
		resolver: newResolver(store),
		validate: v,
		log:      log,
	}
}

func (s *catalogService) CreateBook(ctx context.Context, ident *auth.Identity, in dto.CreateBookRequest) (*dto.BookView, error) {
	if err := auth.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	// explicit references must already exist
	var authorID string
	if in.AuthorName == "" {
		a, err := s.store.Authors.FindByID(ctx, in.Author)
		if err != nil {
			return nil, err
		}
		authorID = a.ID
	}
	var collectionID *string
	if in.Collection != "" {
		c, err := s.store.Collections.FindByID(ctx, in.Collection)
		if err != nil {
			return nil, err
		}
		collectionID = &c.ID
	}

	// reject a taken id before creating any author or collection for it
	if _, err := s.store.Books.FindByID(ctx, in.ID); err == nil {
		return nil, apperr.Conflict("book", "book with this id already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, s.fault(err)
	}

	if in.AuthorName != "" {
		a, err := s.UpsertAuthorByName(ctx, in.AuthorName)
		if err != nil {
			return nil, err
		}
		authorID = a.ID
	}
	if collectionID == nil && strings.TrimSpace(in.CollectionTitle) != "" {
		c, err := s.UpsertCollectionByTitle(ctx, in.CollectionTitle)
		if err != nil {
			return nil, err
		}
		collectionID = &c.ID
	}

	book := in.ToModel()
	book.AuthorID = authorID
	book.CollectionID = collectionID
	if err := s.store.Books.Create(ctx, &book); err != nil {
		return nil, s.fault(err)
	}

	s.log.WithFields(logrus.Fields{"book_id": book.ID, "user_id": ident.UserID}).Info("book created")
	return s.resolver.view(ctx, book)
}

func (s *catalogService) ListBooks(ctx context.Context, filter repository.BookFilter) ([]dto.BookView, error) {
	if filter.Flag != "" && !filter.Flag.Valid() {
		return nil, apperr.Validation(map[string]string{"flag": "must be one of: isNewUpdate isBeingRead isTrending isPopular"})
	}
	books, err := s.store.Books.List(ctx, filter)
	if err != nil {
		return nil, s.fault(err)
	}
	return s.resolver.views(ctx, books)
}

func (s *catalogService) GetBook(ctx context.Context, id int64) (*dto.BookDetail, error) {
	book, err := s.store.Books.FindByID(ctx, id)
	if err != nil {
		return nil, s.fault(err)
	}

	// no genre means nothing to compare against
	similar := []models.Book{}
	if book.Genre != "" {
		similar, err = s.store.Books.FindSimilar(ctx, book.Genre, book.ID, similarLimit)
		if err != nil {
			return nil, s.fault(err)
		}
	}

	views, err := s.resolver.views(ctx, append([]models.Book{*book}, similar...))
	if err != nil {
		return nil, s.fault(err)
	}
	return &dto.BookDetail{BookView: views[0], Similar: views[1:]}, nil
}

// UpdateBook merges only the non-empty fields of in; an empty string keeps the stored value.
func (s *catalogService) UpdateBook(ctx context.Context, ident *auth.Identity, id int64, in dto.UpdateBookRequest) (*dto.BookView, error) {
	if err := auth.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	book, err := s.store.Books.FindByID(ctx, id)
	if err != nil {
		return nil, s.fault(err)
	}
	if in.Author != "" {
		a, err := s.store.Authors.FindByID(ctx, in.Author)
		if err != nil {
			return nil, s.fault(err)
		}
		book.AuthorID = a.ID
	}
	in.ApplyTo(book)

	if err := s.store.Books.Save(ctx, book); err != nil {
		return nil, s.fault(err)
	}
	return s.resolver.view(ctx, *book)
}

// ReplaceBook overwrites every editable field, creating the named author and collection when missing.
func (s *catalogService) ReplaceBook(ctx context.Context, ident *auth.Identity, id int64, in dto.ReplaceBookRequest) (*dto.BookView, error) {
	if err := auth.RequireAdmin(ident); err != nil {
		return nil, err
	}
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	book, err := s.store.Books.FindByID(ctx, id)
	if err != nil {
		return nil, s.fault(err)
	}

	author, err := s.UpsertAuthorByName(ctx, in.AuthorName)
	if err != nil {
		return nil, err
	}
	book.AuthorID = author.ID

	book.CollectionID = nil
	if strings.TrimSpace(in.CollectionTitle) != "" {
		c, err := s.UpsertCollectionByTitle(ctx, in.CollectionTitle)
		if err != nil {
			return nil, err
		}
		book.CollectionID = &c.ID
	}
	in.ApplyTo(book)

	if err := s.store.Books.Save(ctx, book); err != nil {
		return nil, s.fault(err)
	}
	s.log.WithFields(logrus.Fields{"book_id": book.ID, "user_id": ident.UserID}).Info("book replaced")
	return s.resolver.view(ctx, *book)
}

// DeleteBook leaves saved-list entries pointing at the book in place.
func (s *catalogService) DeleteBook(ctx context.Context, ident *auth.Identity, id int64) error {
	if err := auth.RequireAdmin(ident); err != nil {
		return err
	}
	if err := s.store.Books.Delete(ctx, id); err != nil {
		return s.fault(err)
	}
	s.log.WithFields(logrus.Fields{"book_id": id, "user_id": ident.UserID}).Info("book deleted")
	return nil
}

// UpsertAuthorByName returns the author with this exact (trimmed) name, creating it if needed.
// A concurrent creator winning the insert is resolved by reading its row back.
func (s *catalogService) UpsertAuthorByName(ctx context.Context, name string) (*models.Author, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation(map[string]string{"authorName": "is required"})
	}

	a, err := s.store.Authors.FindByName(ctx, name)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, s.fault(err)
	}

	a = &models.Author{Name: name}
	if err := s.store.Authors.Create(ctx, a); err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, s.fault(err)
		}
		existing, err := s.store.Authors.FindByName(ctx, name)
		if err != nil {
			return nil, s.fault(err)
		}
		return existing, nil
	}
	s.log.WithField("author", name).Info("created author")
	return a, nil
}

// UpsertCollectionByTitle is the collection counterpart of UpsertAuthorByName.
func (s *catalogService) UpsertCollectionByTitle(ctx context.Context, title string) (*models.Collection, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation(map[string]string{"collectionTitle": "is required"})
	}

	c, err := s.store.Collections.FindByTitle(ctx, title)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, s.fault(err)
	}

	c = &models.Collection{Title: title}
	if err := s.store.Collections.Create(ctx, c); err != nil {
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, s.fault(err)
		}
		existing, err := s.store.Collections.FindByTitle(ctx, title)
		if err != nil {
			return nil, s.fault(err)
		}
		return existing, nil
	}
	s.log.WithField("collection", title).Info("created collection")
	return c, nil
}

func (s *catalogService) GetAuthor(ctx context.Context, id string) (*dto.AuthorPage, error) {
	a, err := s.store.Authors.FindByID(ctx, id)
	if err != nil {
		return nil, s.fault(err)
	}
	books, err := s.store.Books.ListByAuthor(ctx, a.ID)
	if err != nil {
		return nil, s.fault(err)
	}
	views, err := s.resolver.views(ctx, books)
	if err != nil {
		return nil, s.fault(err)
	}
	return &dto.AuthorPage{Author: dto.FromAuthor(*a), Books: views}, nil
}

func (s *catalogService) GetCollection(ctx context.Context, id string) (*dto.CollectionPage, error) {
	c, err := s.store.Collections.FindByID(ctx, id)
	if err != nil {
		return nil, s.fault(err)
	}
	books, err := s.store.Books.ListByCollection(ctx, c.ID)
	if err != nil {
		return nil, s.fault(err)
	}
	views, err := s.resolver.views(ctx, books)
	if err != nil {
		return nil, s.fault(err)
	}
	return &dto.CollectionPage{Collection: dto.FromCollection(*c), Books: views}, nil
}

func (s *catalogService) ListAuthors(ctx context.Context) ([]dto.AuthorView, error) {
	list, err := s.store.Authors.List(ctx)
	if err != nil {
		return nil, s.fault(err)
	}
	out := make([]dto.AuthorView, 0, len(list))
	for _, a := range list {
		out = append(out, dto.FromAuthor(a))
	}
	return out, nil
}

func (s *catalogService) ListCollections(ctx context.Context) ([]dto.CollectionView, error) {
	list, err := s.store.Collections.List(ctx)
	if err != nil {
		return nil, s.fault(err)
	}
	out := make([]dto.CollectionView, 0, len(list))
	for _, c := range list {
		out = append(out, dto.FromCollection(c))
	}
	return out, nil
}

// fault logs store failures and passes the error through unchanged.
func (s *catalogService) fault(err error) error {
	return logFault(s.log, err)
}

func logFault(log *logrus.Logger, err error) error {
	if err != nil && apperr.CodeOf(err) == apperr.CodeInternal {
		log.WithError(err).Error("store failure")
	}
	return err
}
