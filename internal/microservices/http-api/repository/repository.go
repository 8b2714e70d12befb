package repository

import (
	"context"

	"bookhub/internal/microservices/http-api/models"
)

// Every repository returns apperr NotFound on a lookup miss, apperr Conflict on a
// unique-key violation, and apperr Internal for anything else the driver reports.
// Returned records are copies owned by the caller.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	// ExistsByEmailOrLogin reports whether either key is already taken.
	ExistsByEmailOrLogin(ctx context.Context, email, login string) (bool, error)
}

type AuthorRepository interface {
	Create(ctx context.Context, a *models.Author) error
	FindByID(ctx context.Context, id string) (*models.Author, error)
	FindByName(ctx context.Context, name string) (*models.Author, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Author, error)
	List(ctx context.Context) ([]models.Author, error)
}

type CollectionRepository interface {
	Create(ctx context.Context, c *models.Collection) error
	FindByID(ctx context.Context, id string) (*models.Collection, error)
	FindByTitle(ctx context.Context, title string) (*models.Collection, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Collection, error)
	List(ctx context.Context) ([]models.Collection, error)
}

// BookFilter narrows List. Zero value lists every book.
type BookFilter struct {
	Flag  models.BookFlag
	Limit int
}

type BookRepository interface {
	// Create fails with Conflict when the id is taken; the stored record is untouched.
	Create(ctx context.Context, b *models.Book) error
	FindByID(ctx context.Context, id int64) (*models.Book, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Book, error)
	List(ctx context.Context, filter BookFilter) ([]models.Book, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Book, error)
	ListByCollection(ctx context.Context, collectionID string) ([]models.Book, error)
	// SearchByTitle is a case-insensitive substring match on title.
	SearchByTitle(ctx context.Context, query string) ([]models.Book, error)
	// FindSimilar returns up to limit books of the given genre other than excludeID.
	FindSimilar(ctx context.Context, genre string, excludeID int64, limit int) ([]models.Book, error)
	Save(ctx context.Context, b *models.Book) error
	Delete(ctx context.Context, id int64) error
}

// SavedBookRepository stores each user's saved set with atomic add and remove.
type SavedBookRepository interface {
	// Add is a no-op when the book is already saved.
	Add(ctx context.Context, userID string, bookID int64) error
	// Remove is a no-op when the book is not saved.
	Remove(ctx context.Context, userID string, bookID int64) error
	// ListBookIDs returns ids in the order they were saved.
	ListBookIDs(ctx context.Context, userID string) ([]int64, error)
}

// Store bundles the repositories over one backing database.
type Store struct {
	Users       UserRepository
	Authors     AuthorRepository
	Collections CollectionRepository
	Books       BookRepository
	Saved       SavedBookRepository
}
