package repository

import (
	"context"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type savedBookRepository struct {
	db *gorm.DB
}

func NewSavedBookRepository(db *gorm.DB) SavedBookRepository {
	return &savedBookRepository{db: db}
}

// Add inserts with ON CONFLICT DO NOTHING, so two devices saving the same book
// at once both succeed and leave a single row.
func (r *savedBookRepository) Add(ctx context.Context, userID string, bookID int64) error {
	entry := &models.SavedBook{UserID: userID, BookID: bookID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
	return translate(err, "saved book", "add")
}

// Remove is a single DELETE; zero affected rows is not an error.
func (r *savedBookRepository) Remove(ctx context.Context, userID string, bookID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&models.SavedBook{}).Error
	return translate(err, "saved book", "remove")
}

func (r *savedBookRepository) ListBookIDs(ctx context.Context, userID string) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&models.SavedBook{}).
		Where("user_id = ?", userID).
		Order("saved_at asc, book_id asc").
		Pluck("book_id", &ids).Error; err != nil {
		return nil, translate(err, "saved book", "list")
	}
	return ids, nil
}

// NewGormStore wires every GORM repository over db.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:       NewUserRepository(db),
		Authors:     NewAuthorRepository(db),
		Collections: NewCollectionRepository(db),
		Books:       NewBookRepository(db),
		Saved:       NewSavedBookRepository(db),
	}
}
