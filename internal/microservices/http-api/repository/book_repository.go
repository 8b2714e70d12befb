package repository

import (
	"context"
	"strings"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *models.Book) error {
	// plain INSERT: a taken id surfaces as a unique violation rather than an overwrite
	return translate(r.db.WithContext(ctx).Create(b).Error, "book", "create")
}

func (r *bookRepository) FindByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err, "book", "find")
	}
	return &b, nil
}

func (r *bookRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.Book
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id asc").Find(&list).Error; err != nil {
		return nil, translate(err, "book", "list")
	}
	return list, nil
}

func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	var list []models.Book
	q := r.db.WithContext(ctx).Order("id asc")
	if col := filter.Flag.Column(); col != "" {
		q = q.Where(col+" = ?", true)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, translate(err, "book", "list")
	}
	return list, nil
}

func (r *bookRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Book, error) {
	if !isUUID(authorID) {
		return nil, nil
	}
	var list []models.Book
	if err := r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id asc").Find(&list).Error; err != nil {
		return nil, translate(err, "book", "list")
	}
	return list, nil
}

func (r *bookRepository) ListByCollection(ctx context.Context, collectionID string) ([]models.Book, error) {
	if !isUUID(collectionID) {
		return nil, nil
	}
	var list []models.Book
	if err := r.db.WithContext(ctx).Where("collection_id = ?", collectionID).Order("id asc").Find(&list).Error; err != nil {
		return nil, translate(err, "book", "list")
	}
	return list, nil
}

// likeEscaper makes user input literal inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByTitle performs a case-insensitive substring match on title.
// Example: "drag" -> WHERE title ILIKE '%drag%'
func (r *bookRepository) SearchByTitle(ctx context.Context, query string) ([]models.Book, error) {
	var list []models.Book
	if query == "" {
		return list, nil
	}
	pattern := "%" + likeEscaper.Replace(query) + "%"
	if err := r.db.WithContext(ctx).Where("title ILIKE ?", pattern).Order("id asc").Find(&list).Error; err != nil {
		return nil, translate(err, "book", "search")
	}
	return list, nil
}

func (r *bookRepository) FindSimilar(ctx context.Context, genre string, excludeID int64, limit int) ([]models.Book, error) {
	var list []models.Book
	if err := r.db.WithContext(ctx).
		Where("genre = ? AND id <> ?", genre, excludeID).
		Order("id asc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, translate(err, "book", "list")
	}
	return list, nil
}

func (r *bookRepository) Save(ctx context.Context, b *models.Book) error {
	res := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", b.ID).Select("*").Omit("created_at").Updates(b)
	if res.Error != nil {
		return translate(res.Error, "book", "update")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "book", "update")
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "book", "delete")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "book", "delete")
	}
	return nil
}
