package service

import (
	"context"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
)

// resolver turns stored books into views with author and collection attached.
// References are loaded in one batch per entity, not per book.
type resolver struct {
	authors     repository.AuthorRepository
	collections repository.CollectionRepository
}

func newResolver(store *repository.Store) resolver {
	return resolver{authors: store.Authors, collections: store.Collections}
}

func (r resolver) views(ctx context.Context, books []models.Book) ([]dto.BookView, error) {
	out := make([]dto.BookView, 0, len(books))
	if len(books) == 0 {
		return out, nil
	}

	authorIDs := make([]string, 0, len(books))
	collectionIDs := make([]string, 0)
	seenA := map[string]bool{}
	seenC := map[string]bool{}
	for _, b := range books {
		if b.AuthorID != "" && !seenA[b.AuthorID] {
			seenA[b.AuthorID] = true
			authorIDs = append(authorIDs, b.AuthorID)
		}
		if b.CollectionID != nil && !seenC[*b.CollectionID] {
			seenC[*b.CollectionID] = true
			collectionIDs = append(collectionIDs, *b.CollectionID)
		}
	}

	authors, err := r.authors.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	byAuthor := make(map[string]dto.AuthorView, len(authors))
	for _, a := range authors {
		byAuthor[a.ID] = dto.FromAuthor(a)
	}

	byCollection := map[string]dto.CollectionView{}
	if len(collectionIDs) > 0 {
		collections, err := r.collections.FindByIDs(ctx, collectionIDs)
		if err != nil {
			return nil, err
		}
		for _, c := range collections {
			byCollection[c.ID] = dto.FromCollection(c)
		}
	}

	for _, b := range books {
		var author *dto.AuthorView
		if a, ok := byAuthor[b.AuthorID]; ok {
			author = &a
		}
		var collection *dto.CollectionView
		if b.CollectionID != nil {
			if c, ok := byCollection[*b.CollectionID]; ok {
				collection = &c
			}
		}
		out = append(out, dto.NewBookView(b, author, collection))
	}
	return out, nil
}

func (r resolver) view(ctx context.Context, b models.Book) (*dto.BookView, error) {
	list, err := r.views(ctx, []models.Book{b})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}
