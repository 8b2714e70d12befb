package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"bookhub/internal/apperr"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
)

// SavedService manages the caller's saved-books set.
type SavedService interface {
	Save(ctx context.Context, ident *auth.Identity, bookID int64) error
	Unsave(ctx context.Context, ident *auth.Identity, bookID int64) error
	ListSaved(ctx context.Context, ident *auth.Identity) ([]dto.BookView, error)
}

type savedService struct {
	users    repository.UserRepository
	books    repository.BookRepository
	saved    repository.SavedBookRepository
	resolver resolver
	log      *logrus.Logger
}

func NewSavedService(store *repository.Store, log *logrus.Logger) SavedService {
	return &savedService{
		users:    store.Users,
		books:    store.Books,
		saved:    store.Saved,
		resolver: newResolver(store),
		log:      log,
	}
}

func requireUser(ident *auth.Identity) error {
	if ident == nil || ident.UserID == "" {
		return apperr.ErrUnauthenticated
	}
	return nil
}

func validBookID(id int64) error {
	if id <= 0 {
		return apperr.Validation(map[string]string{"id": "must be greater than 0"})
	}
	return nil
}

// Save adds bookID to the set; saving twice keeps one entry. The book is not looked up.
func (s *savedService) Save(ctx context.Context, ident *auth.Identity, bookID int64) error {
	if err := requireUser(ident); err != nil {
		return err
	}
	if err := validBookID(bookID); err != nil {
		return err
	}
	return logFault(s.log, s.saved.Add(ctx, ident.UserID, bookID))
}

// Unsave removes bookID from the set; removing an absent id is a no-op.
func (s *savedService) Unsave(ctx context.Context, ident *auth.Identity, bookID int64) error {
	if err := requireUser(ident); err != nil {
		return err
	}
	return logFault(s.log, s.saved.Remove(ctx, ident.UserID, bookID))
}

// ListSaved returns the saved books in save order. Ids of deleted books are skipped.
func (s *savedService) ListSaved(ctx context.Context, ident *auth.Identity) ([]dto.BookView, error) {
	if err := requireUser(ident); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, ident.UserID); err != nil {
		return nil, logFault(s.log, err)
	}

	ids, err := s.saved.ListBookIDs(ctx, ident.UserID)
	if err != nil {
		return nil, logFault(s.log, err)
	}
	found, err := s.books.FindByIDs(ctx, ids)
	if err != nil {
		return nil, logFault(s.log, err)
	}

	byID := make(map[int64]models.Book, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	ordered := make([]models.Book, 0, len(found))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return s.resolver.views(ctx, ordered)
}
