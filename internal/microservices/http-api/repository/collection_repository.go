package repository

import (
	"context"

	"bookhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, c *models.Collection) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "collection", "create")
}

func (r *collectionRepository) FindByID(ctx context.Context, id string) (*models.Collection, error) {
	if !isUUID(id) {
		return nil, translate(gorm.ErrRecordNotFound, "collection", "find")
	}
	var c models.Collection
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "collection", "find")
	}
	return &c, nil
}

func (r *collectionRepository) FindByTitle(ctx context.Context, title string) (*models.Collection, error) {
	var c models.Collection
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&c).Error; err != nil {
		return nil, translate(err, "collection", "find")
	}
	return &c, nil
}

func (r *collectionRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Collection, error) {
	ids = onlyUUIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.Collection
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, translate(err, "collection", "list")
	}
	return list, nil
}

func (r *collectionRepository) List(ctx context.Context) ([]models.Collection, error) {
	var list []models.Collection
	if err := r.db.WithContext(ctx).Order("title asc").Find(&list).Error; err != nil {
		return nil, translate(err, "collection", "list")
	}
	return list, nil
}
