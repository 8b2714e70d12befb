package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/repository"
)

type SearchService interface {
	// Search matches q case-insensitively anywhere in the title. An empty q matches nothing.
	Search(ctx context.Context, q string) ([]dto.BookView, error)
}

type searchService struct {
	books    repository.BookRepository
	resolver resolver
	log      *logrus.Logger
}

func NewSearchService(store *repository.Store, log *logrus.Logger) SearchService {
	return &searchService{books: store.Books, resolver: newResolver(store), log: log}
}

func (s *searchService) Search(ctx context.Context, q string) ([]dto.BookView, error) {
	if q == "" {
		return []dto.BookView{}, nil
	}
	books, err := s.books.SearchByTitle(ctx, q)
	if err != nil {
		return nil, logFault(s.log, err)
	}
	return s.resolver.views(ctx, books)
}
