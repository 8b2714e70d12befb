package repository

import (
	"context"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

func (r *authorRepository) Create(ctx context.Context, a *models.Author) error {
	return translate(r.db.WithContext(ctx).Create(a).Error, "author", "create")
}

func (r *authorRepository) FindByID(ctx context.Context, id string) (*models.Author, error) {
	if !isUUID(id) {
		return nil, translate(gorm.ErrRecordNotFound, "author", "find")
	}
	var a models.Author
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err, "author", "find")
	}
	return &a, nil
}

func (r *authorRepository) FindByName(ctx context.Context, name string) (*models.Author, error) {
	var a models.Author
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&a).Error; err != nil {
		return nil, translate(err, "author", "find")
	}
	return &a, nil
}

func (r *authorRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Author, error) {
	ids = onlyUUIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.Author
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate(err, "author", "list")
	}
	return list, nil
}

func (r *authorRepository) List(ctx context.Context) ([]models.Author, error) {
	var list []models.Author
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, translate(err, "author", "list")
	}
	return list, nil
}

func onlyUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}
